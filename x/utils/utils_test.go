package utils

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/tendermint/tendermint/libs/log"
)

func TestSavepoint(t *testing.T) {
	write := &custodytest.KeyValue{Key: []byte("foo"), Value: []byte("bar")}

	cases := map[string]struct {
		decorator custody.Decorator
		handler   *custodytest.Handler
		wantErr   *errors.Error
		wantValue []byte
	}{
		"success is written": {
			decorator: NewSavepoint().OnDeliver(),
			handler:   &custodytest.Handler{Write: write},
			wantValue: []byte("bar"),
		},
		"failure is rolled back": {
			decorator: NewSavepoint().OnDeliver(),
			handler:   &custodytest.Handler{Write: write, DeliverErr: errors.ErrInsufficientAmount},
			wantErr:   errors.ErrInsufficientAmount,
			wantValue: nil,
		},
		"without savepoint the failure is kept": {
			decorator: NewSavepoint().OnCheck(),
			handler:   &custodytest.Handler{Write: write, DeliverErr: errors.ErrInsufficientAmount},
			wantErr:   errors.ErrInsufficientAmount,
			wantValue: []byte("bar"),
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			h := custodytest.Decorate(tc.handler, tc.decorator)
			_, err := h.Deliver(context.Background(), db, &custodytest.Tx{Msg: &custodytest.Msg{RoutePath: "test/op"}})
			assert.IsErr(t, tc.wantErr, err)

			got, err := db.Get([]byte("foo"))
			assert.Nil(t, err)
			assert.Equal(t, tc.wantValue, got)
		})
	}
}

func TestRecovery(t *testing.T) {
	h := custodytest.Decorate(&custodytest.Handler{Panic: "boom"}, NewRecovery())
	tx := &custodytest.Tx{Msg: &custodytest.Msg{RoutePath: "test/op"}}

	var logs bytes.Buffer
	ctx := custody.WithLogger(context.Background(), log.NewTMLogger(log.NewSyncWriter(&logs)))

	_, err := h.Check(ctx, store.MemStore(), tx)
	assert.IsErr(t, errors.ErrPanic, err)
	_, err = h.Deliver(ctx, store.MemStore(), tx)
	assert.IsErr(t, errors.ErrPanic, err)

	out := logs.String()
	assert.Equal(t, 2, strings.Count(out, "Handler panic"))
	assert.Equal(t, true, strings.Contains(out, "path=test/op"))
	assert.Equal(t, true, strings.Contains(out, "boom"))

	// nothing is logged when the handler returns
	logs.Reset()
	ok := custodytest.Decorate(&custodytest.Handler{}, NewRecovery())
	_, err = ok.Deliver(ctx, store.MemStore(), tx)
	assert.Nil(t, err)
	assert.Equal(t, "", logs.String())
}

func TestActionTagger(t *testing.T) {
	h := custodytest.Decorate(&custodytest.Handler{}, NewActionTagger())
	tx := &custodytest.Tx{Msg: &custodytest.Msg{RoutePath: "safe/exec"}}

	res, err := h.Deliver(context.Background(), store.MemStore(), tx)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res.Tags))
	assert.Equal(t, []byte(ActionKey), res.Tags[0].Key)
	assert.Equal(t, []byte("safe/exec"), res.Tags[0].Value)

	submitter := custodytest.NewAddress(3)
	res, err = h.Deliver(custodytest.Ctx(submitter, 0), store.MemStore(), tx)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(res.Tags))
	assert.Equal(t, []byte(SubmitterKey), res.Tags[1].Key)
	assert.Equal(t, []byte(submitter), res.Tags[1].Value)

	failing := custodytest.Decorate(&custodytest.Handler{DeliverErr: errors.ErrUnauthorized}, NewActionTagger())
	_, err = failing.Deliver(context.Background(), store.MemStore(), tx)
	assert.IsErr(t, errors.ErrUnauthorized, err)
}

func TestLoggingPassesResult(t *testing.T) {
	h := custodytest.Decorate(&custodytest.Handler{
		DeliverResult: custody.DeliverResult{Log: "done"},
	}, NewLogging())
	tx := &custodytest.Tx{Msg: &custodytest.Msg{RoutePath: "safe/exec"}}
	res, err := h.Deliver(custodytest.Ctx(custodytest.NewAddress(1), 100), store.MemStore(), tx)
	assert.Nil(t, err)
	assert.Equal(t, "done", res.Log)
}
