package utils

import (
	"github.com/iov-one/custody"
)

const (
	// ActionKey tags a delivered transaction with the path of its message.
	ActionKey = "action"
	// SubmitterKey tags a delivered transaction with the address that
	// submitted it.
	SubmitterKey = "submitter"
)

// ActionTagger appends the message path and the submitter to the tags of
// every successfully delivered transaction, so that clients can search for
// executed requests.
type ActionTagger struct{}

var _ custody.Decorator = ActionTagger{}

// NewActionTagger creates a ActionTagger decorator
func NewActionTagger() ActionTagger {
	return ActionTagger{}
}

func (ActionTagger) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Checker) (*custody.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

func (ActionTagger) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Deliverer) (*custody.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	// Nested handlers may replace the caller, so read it first.
	submitter, hasSubmitter := custody.GetCaller(ctx)

	res, err := next.Deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res.Tags = append(res.Tags, custody.Tag(ActionKey, []byte(msg.Path())))
	if hasSubmitter {
		res.Tags = append(res.Tags, custody.Tag(SubmitterKey, submitter))
	}
	return res, nil
}
