package safe

import (
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/app"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/oracle"
	"github.com/iov-one/custody/x/signers"
	"github.com/iov-one/custody/x/verify"
)

// testStack wires all handlers the way an application does.
type testStack struct {
	t       *testing.T
	db      custody.CacheableKVStore
	codec   *app.Codec
	router  *app.Router
	auth    *Authority
	cash    cash.BaseController
	oracles oracle.Bucket
	groups  signers.Bucket
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	s := &testStack{
		t:       t,
		db:      store.MemStore(),
		codec:   app.NewCodec(),
		router:  app.NewRouter(),
		cash:    cash.NewController(cash.NewBucket()),
		oracles: oracle.NewBucket(),
		groups:  signers.NewBucket(),
	}
	s.codec.Register(
		&cash.SendMsg{},
		&oracle.CreateOracleMsg{},
		&oracle.InitializeMsg{},
		&signers.CreateGroupMsg{},
		&signers.AddSignerMsg{},
		&signers.RemoveSignerMsg{},
		&signers.ChangeThresholdMsg{},
		&CreateSafeMsg{},
		&ExecMsg{},
		&ExecFromModuleMsg{},
		&AddModuleMsg{},
		&RemoveModuleMsg{},
	)

	registry := verify.NewRegistry()
	registry.Register(oracle.ModuleName, oracle.Loader(s.oracles))
	registry.Register(signers.ModuleName, signers.Loader(s.groups))

	s.auth = NewAuthority(NewBucket(), registry, s.cash, s.router, s.codec.Decode)
	cash.RegisterRoutes(s.router, s.cash)
	oracle.RegisterRoutes(s.router, s.oracles)
	signers.RegisterRoutes(s.router, s.groups)
	RegisterRoutes(s.router, s.auth)
	return s
}

// nextSafe returns the address the next created safe will have.
func (s *testStack) nextSafe() custody.Address {
	latest, err := NewBucket().idSeq.Latest(s.db)
	assert.Nil(s.t, err)
	return Condition(orm.EncodeSequence(latest + 1)).Address()
}

// newGroupSafe creates a safe verified by a group of given keys.
func (s *testStack) newGroupSafe(threshold uint32, keys ...*crypto.PrivateKey) (safe, group custody.Address) {
	members := make([]custody.Address, len(keys))
	for i, k := range keys {
		members[i] = k.Address()
	}
	group, err := s.groups.Create(s.db, s.nextSafe(), members, threshold)
	assert.Nil(s.t, err)
	safe, err = s.auth.Bucket().Create(s.db, []custody.Address{group})
	assert.Nil(s.t, err)
	return safe, group
}

func (s *testStack) encode(msg custody.Msg) []byte {
	raw, err := s.codec.Encode(msg)
	assert.Nil(s.t, err)
	return raw
}

func (s *testStack) balance(owner, asset custody.Address) custody.Amount {
	amount, err := s.cash.Balance(s.db, owner, asset)
	assert.Nil(s.t, err)
	return amount
}

func (s *testStack) nonce(safe custody.Address) uint64 {
	n, err := s.auth.Nonce(s.db, safe)
	assert.Nil(s.t, err)
	return n
}

func (s *testStack) exec(caller custody.Address, gasLimit uint64, msg *ExecMsg) (*custody.DeliverResult, error) {
	tx, err := s.codec.Decode(s.encode(msg))
	assert.Nil(s.t, err)
	return s.router.Deliver(custodytest.Ctx(caller, gasLimit), s.db, tx)
}

func sign(t *testing.T, op *verify.Operation, keys ...*crypto.PrivateKey) []byte {
	digest := verify.Hash(op)
	return custodytest.Sign(t, digest[:], keys...)
}

func tagValue(res *custody.DeliverResult, key string) string {
	for _, tag := range res.Tags {
		if string(tag.Key) == key {
			return string(tag.Value)
		}
	}
	return ""
}

func TestExecTwoOfTwo(t *testing.T) {
	s := newTestStack(t)
	a, b := custodytest.NewKey(t, "a"), custodytest.NewKey(t, "b")
	safe, _ := s.newGroupSafe(2, a, b)

	var (
		x         = custodytest.NewAddress(1)
		submitter = custodytest.NewAddress(2)
	)
	assert.Nil(t, s.cash.Issue(s.db, safe, cash.NativeAsset, custody.AmountOf(1000000)))

	op := verify.Operation{
		To:       x,
		Value:    custody.AmountOf(5),
		Kind:     verify.Call,
		Nonce:    1,
		Gas:      100000,
		GasPrice: custody.AmountOf(1),
	}
	msg := &ExecMsg{Safe: safe, Operation: op, Signature: sign(t, &op, a, b)}

	ok, err := s.auth.IsTxValid(s.db, safe, &op, msg.Signature)
	assert.Nil(t, err)
	assert.Equal(t, true, ok)

	res, err := s.exec(submitter, 200000, msg)
	assert.Nil(t, err)

	gasUsed := DefaultConfiguration.Cost(2, 0)
	assert.Equal(t, uint64(1), s.nonce(safe))
	assert.Equal(t, custody.AmountOf(5), s.balance(x, cash.NativeAsset))
	assert.Equal(t, custody.AmountOf(gasUsed), s.balance(submitter, cash.NativeAsset))
	assert.Equal(t, custody.AmountOf(1000000-5-gasUsed), s.balance(safe, cash.NativeAsset))
	assert.Equal(t, "1", tagValue(res, "safe.nonce"))
	assert.Equal(t, custody.AmountOf(gasUsed).String(), tagValue(res, "safe.reimbursement"))

	// replaying the same signed operation
	_, err = s.exec(submitter, 200000, msg)
	assert.IsErr(t, ErrSequence, err)
	assert.Equal(t, uint64(1), s.nonce(safe))
	assert.Equal(t, custody.AmountOf(5), s.balance(x, cash.NativeAsset))

	ok, err = s.auth.IsTxValid(s.db, safe, &op, msg.Signature)
	assert.Nil(t, err)
	assert.Equal(t, false, ok)
}

func TestExecRejected(t *testing.T) {
	a, b := custodytest.NewKey(t, "a"), custodytest.NewKey(t, "b")
	x := custodytest.NewAddress(1)
	submitter := custodytest.NewAddress(2)

	baseOp := verify.Operation{
		To:       x,
		Value:    custody.AmountOf(5),
		Nonce:    1,
		Gas:      100000,
		GasPrice: custody.AmountOf(1),
	}

	cases := map[string]struct {
		op       func() verify.Operation
		signers  []*crypto.PrivateKey
		gasLimit uint64
		funds    uint64
		wantErr  *errors.Error
	}{
		"execution gas below declared": {
			signers:  []*crypto.PrivateKey{a, b},
			gasLimit: 99999,
			funds:    1000000,
			wantErr:  errors.ErrInsufficientGas,
		},
		"declared gas below module minimum": {
			op: func() verify.Operation {
				op := baseOp
				op.Gas = DefaultConfiguration.MinGas(2) - 1
				return op
			},
			signers:  []*crypto.PrivateKey{a, b},
			gasLimit: 100000,
			funds:    1000000,
			wantErr:  errors.ErrInsufficientGas,
		},
		"nonce from the future": {
			op: func() verify.Operation {
				op := baseOp
				op.Nonce = 2
				return op
			},
			signers:  []*crypto.PrivateKey{a, b},
			gasLimit: 100000,
			funds:    1000000,
			wantErr:  ErrSequence,
		},
		"nonce zero": {
			op: func() verify.Operation {
				op := baseOp
				op.Nonce = 0
				return op
			},
			signers:  []*crypto.PrivateKey{a, b},
			gasLimit: 100000,
			funds:    1000000,
			wantErr:  ErrSequence,
		},
		"one signature below threshold": {
			signers:  []*crypto.PrivateKey{a},
			gasLimit: 100000,
			funds:    1000000,
			wantErr:  errors.ErrUnauthorized,
		},
		"signed by outsiders": {
			signers:  []*crypto.PrivateKey{custodytest.NewKey(t, "c"), custodytest.NewKey(t, "d")},
			gasLimit: 100000,
			funds:    1000000,
			wantErr:  errors.ErrUnauthorized,
		},
		"cannot pay the reimbursement": {
			signers:  []*crypto.PrivateKey{a, b},
			gasLimit: 100000,
			funds:    5,
			wantErr:  errors.ErrInsufficientAmount,
		},
		"cannot pay the value": {
			signers:  []*crypto.PrivateKey{a, b},
			gasLimit: 100000,
			funds:    4,
			wantErr:  errors.ErrInsufficientAmount,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			s := newTestStack(t)
			safe, _ := s.newGroupSafe(2, a, b)
			assert.Nil(t, s.cash.Issue(s.db, safe, cash.NativeAsset, custody.AmountOf(tc.funds)))

			op := baseOp
			if tc.op != nil {
				op = tc.op()
			}
			msg := &ExecMsg{Safe: safe, Operation: op, Signature: sign(t, &op, tc.signers...)}
			_, err := s.exec(submitter, tc.gasLimit, msg)
			assert.IsErr(t, tc.wantErr, err)

			// nothing is changed
			assert.Equal(t, uint64(0), s.nonce(safe))
			assert.Equal(t, custody.Amount{}, s.balance(x, cash.NativeAsset))
			assert.Equal(t, custody.Amount{}, s.balance(submitter, cash.NativeAsset))
			assert.Equal(t, custody.AmountOf(tc.funds), s.balance(safe, cash.NativeAsset))
		})
	}
}

func TestExecCountsGasAlreadySpent(t *testing.T) {
	owner := custodytest.NewKey(t, "owner")
	x := custodytest.NewAddress(1)
	submitter := custodytest.NewAddress(2)

	op := verify.Operation{
		To:       x,
		Value:    custody.AmountOf(5),
		Nonce:    1,
		Gas:      30000,
		GasPrice: custody.AmountOf(1),
	}

	cases := map[string]struct {
		spent   uint64
		wantErr *errors.Error
	}{
		"enough gas left": {
			spent:   70000,
			wantErr: nil,
		},
		"limit covers declared gas but what is left does not": {
			spent:   90000,
			wantErr: errors.ErrInsufficientGas,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			s := newTestStack(t)
			safe, _ := s.newGroupSafe(1, owner)
			assert.Nil(t, s.cash.Issue(s.db, safe, cash.NativeAsset, custody.AmountOf(1000000)))

			tx, err := s.codec.Decode(s.encode(&ExecMsg{Safe: safe, Operation: op, Signature: sign(t, &op, owner)}))
			assert.Nil(t, err)

			ctx := custodytest.Ctx(submitter, 100000)
			assert.Nil(t, custody.GetGasMeter(ctx).Consume(tc.spent, "earlier work"))
			_, err = s.router.Check(ctx, s.db, tx)
			assert.IsErr(t, tc.wantErr, err)

			ctx = custodytest.Ctx(submitter, 100000)
			assert.Nil(t, custody.GetGasMeter(ctx).Consume(tc.spent, "earlier work"))
			_, err = s.router.Deliver(ctx, s.db, tx)
			assert.IsErr(t, tc.wantErr, err)

			if tc.wantErr != nil {
				assert.Equal(t, uint64(0), s.nonce(safe))
				assert.Equal(t, custody.Amount{}, s.balance(x, cash.NativeAsset))
			} else {
				assert.Equal(t, uint64(1), s.nonce(safe))
				assert.Equal(t, custody.AmountOf(5), s.balance(x, cash.NativeAsset))
			}
		})
	}
}

func TestExecTokenReimbursement(t *testing.T) {
	s := newTestStack(t)
	owner := custodytest.NewKey(t, "owner")
	token := custodytest.NewAddress(77)
	submitter := custodytest.NewAddress(2)

	orc, err := s.oracles.Create(s.db)
	assert.Nil(t, err)
	assert.Nil(t, s.oracles.Initialize(s.db, orc, owner.Address()))
	safe, err := s.auth.Bucket().Create(s.db, []custody.Address{orc})
	assert.Nil(t, err)
	assert.Nil(t, s.cash.Issue(s.db, safe, token, custody.AmountOf(1000000)))

	// sending a token is a call with a cash message made by the safe
	send := &cash.SendMsg{Asset: token, Destination: custodytest.NewAddress(1), Amount: custody.AmountOf(3)}
	op := verify.Operation{
		To:       custodytest.NewAddress(1),
		Data:     s.encode(send),
		Nonce:    1,
		Token:    token,
		Gas:      50000,
		GasPrice: custody.AmountOf(2),
	}
	res, err := s.exec(submitter, 50000, &ExecMsg{Safe: safe, Operation: op, Signature: sign(t, &op, owner)})
	assert.Nil(t, err)

	// the nested send consumes gas as well
	gasUsed := DefaultConfiguration.Cost(1, len(op.Data)) + 100
	assert.Equal(t, custody.AmountOf(3), s.balance(custodytest.NewAddress(1), token))
	assert.Equal(t, custody.AmountOf(2*gasUsed), s.balance(submitter, token))
	assert.Equal(t, custody.Amount{}, s.balance(submitter, cash.NativeAsset))
	assert.Equal(t, custody.AmountOf(2*gasUsed).String(), tagValue(res, "safe.reimbursement"))
}

func TestExecFromModule(t *testing.T) {
	s := newTestStack(t)
	a, b := custodytest.NewKey(t, "a"), custodytest.NewKey(t, "b")
	safe, group := s.newGroupSafe(2, a, b)
	assert.Nil(t, s.cash.Issue(s.db, safe, cash.NativeAsset, custody.AmountOf(100)))

	// a module that is not a verification module
	module := custodytest.NewAddress(50)
	assert.Nil(t, s.auth.Bucket().AddModule(s.db, safe, module))

	x := custodytest.NewAddress(1)
	msg := &ExecFromModuleMsg{Safe: safe, To: x, Value: custody.AmountOf(10), Kind: verify.Call}
	tx, err := s.codec.Decode(s.encode(msg))
	assert.Nil(t, err)

	for _, stranger := range []custody.Address{custodytest.NewAddress(51), nil} {
		_, err = s.router.Check(custodytest.Ctx(stranger, 1000), s.db, tx)
		assert.IsErr(t, ErrNotAModule, err)
		_, err = s.router.Deliver(custodytest.Ctx(stranger, 1000), s.db, tx)
		assert.IsErr(t, ErrNotAModule, err)
	}

	for _, caller := range []custody.Address{module, group} {
		_, err = s.router.Check(custodytest.Ctx(caller, 1000), s.db, tx)
		assert.Nil(t, err)
		_, err = s.router.Deliver(custodytest.Ctx(caller, 1000), s.db, tx)
		assert.Nil(t, err)
	}
	assert.Equal(t, custody.AmountOf(20), s.balance(x, cash.NativeAsset))
	assert.Equal(t, uint64(0), s.nonce(safe))

	// a failing operation is rolled back
	msg.Value = custody.AmountOf(1000)
	tx, err = s.codec.Decode(s.encode(msg))
	assert.Nil(t, err)
	_, err = s.router.Deliver(custodytest.Ctx(module, 1000), s.db, tx)
	assert.IsErr(t, errors.ErrInsufficientAmount, err)
	assert.Equal(t, custody.AmountOf(80), s.balance(safe, cash.NativeAsset))
}

func TestModulesOnlyByDelegateCall(t *testing.T) {
	s := newTestStack(t)
	owner := custodytest.NewKey(t, "owner")
	submitter := custodytest.NewAddress(2)

	orc, err := s.oracles.Create(s.db)
	assert.Nil(t, err)
	assert.Nil(t, s.oracles.Initialize(s.db, orc, owner.Address()))
	safe, err := s.auth.Bucket().Create(s.db, []custody.Address{orc})
	assert.Nil(t, err)

	extra := custodytest.NewAddress(60)

	// direct calls are rejected, also when made by the safe itself
	tx, err := s.codec.Decode(s.encode(&AddModuleMsg{Module: extra}))
	assert.Nil(t, err)
	_, err = s.router.Deliver(custodytest.Ctx(safe, 1000), s.db, tx)
	assert.IsErr(t, errors.ErrUnauthorized, err)

	nonce := uint64(0)
	delegate := func(msg custody.Msg) error {
		nonce++
		op := verify.Operation{Kind: verify.DelegateCall, Data: s.encode(msg), Nonce: nonce, Gas: 30000}
		_, err := s.exec(submitter, 30000, &ExecMsg{Safe: safe, Operation: op, Signature: sign(t, &op, owner)})
		if err != nil {
			nonce--
		}
		return err
	}

	assert.Nil(t, delegate(&AddModuleMsg{Module: extra}))
	modules, err := s.auth.Modules(s.db, safe)
	assert.Nil(t, err)
	assert.Equal(t, []custody.Address{extra, orc}, modules)

	assert.IsErr(t, errors.ErrDuplicate, delegate(&AddModuleMsg{Module: extra}))
	assert.IsErr(t, errors.ErrNotFound, delegate(&RemoveModuleMsg{Prev: extra, Module: extra}))
	assert.Equal(t, uint64(1), s.nonce(safe))

	// a call does not carry the authority of the safe
	op := verify.Operation{To: safe, Data: s.encode(&RemoveModuleMsg{Prev: orm.Sentinel, Module: extra}), Nonce: 2, Gas: 30000}
	_, err = s.exec(submitter, 30000, &ExecMsg{Safe: safe, Operation: op, Signature: sign(t, &op, owner)})
	assert.IsErr(t, errors.ErrUnauthorized, err)

	assert.Nil(t, delegate(&RemoveModuleMsg{Prev: orm.Sentinel, Module: extra}))
	assert.IsErr(t, ErrLastModule, delegate(&RemoveModuleMsg{Prev: orm.Sentinel, Module: orc}))

	modules, err = s.auth.Modules(s.db, safe)
	assert.Nil(t, err)
	assert.Equal(t, []custody.Address{orc}, modules)
	assert.Equal(t, uint64(2), s.nonce(safe))
}

func TestSafeManagesItsGroup(t *testing.T) {
	s := newTestStack(t)
	a, b, c := custodytest.NewKey(t, "a"), custodytest.NewKey(t, "b"), custodytest.NewKey(t, "c")
	safe, group := s.newGroupSafe(2, a, b)
	submitter := custodytest.NewAddress(2)

	op := verify.Operation{
		To:    group,
		Data:  s.encode(&signers.AddSignerMsg{Group: group, Signer: c.Address()}),
		Nonce: 1,
		Gas:   50000,
	}
	_, err := s.exec(submitter, 50000, &ExecMsg{Safe: safe, Operation: op, Signature: sign(t, &op, a, b)})
	assert.Nil(t, err)

	// the new signer counts towards the threshold
	op = verify.Operation{To: custodytest.NewAddress(1), Nonce: 2, Gas: 50000}
	_, err = s.exec(submitter, 50000, &ExecMsg{Safe: safe, Operation: op, Signature: sign(t, &op, c, a)})
	assert.Nil(t, err)

	// a threshold above the number of signers is rolled back with the nonce
	op = verify.Operation{
		To:    group,
		Data:  s.encode(&signers.ChangeThresholdMsg{Group: group, Threshold: 4}),
		Nonce: 3,
		Gas:   50000,
	}
	_, err = s.exec(submitter, 50000, &ExecMsg{Safe: safe, Operation: op, Signature: sign(t, &op, b, c)})
	assert.IsErr(t, signers.ErrThreshold, err)
	assert.Equal(t, uint64(2), s.nonce(safe))
}

func TestExecCreate(t *testing.T) {
	s := newTestStack(t)
	owner := custodytest.NewKey(t, "owner")
	submitter := custodytest.NewAddress(2)

	orc, err := s.oracles.Create(s.db)
	assert.Nil(t, err)
	assert.Nil(t, s.oracles.Initialize(s.db, orc, owner.Address()))
	safe, err := s.auth.Bucket().Create(s.db, []custody.Address{orc})
	assert.Nil(t, err)
	assert.Nil(t, s.cash.Issue(s.db, safe, cash.NativeAsset, custody.AmountOf(100)))

	op := verify.Operation{
		Kind:  verify.Create,
		Value: custody.AmountOf(10),
		Data:  s.encode(&CreateSafeMsg{Modules: []custody.Address{orc}}),
		Nonce: 1,
		Gas:   50000,
	}
	res, err := s.exec(submitter, 50000, &ExecMsg{Safe: safe, Operation: op, Signature: sign(t, &op, owner)})
	assert.Nil(t, err)

	created := custody.Address(res.Data)
	assert.Equal(t, string(created), tagValue(res, "safe.created"))
	assert.Equal(t, custody.AmountOf(10), s.balance(created, cash.NativeAsset))
	assert.Equal(t, uint64(0), s.nonce(created))

	// only constructors can be used
	op = verify.Operation{
		Kind:  verify.Create,
		Data:  s.encode(&cash.SendMsg{Destination: submitter, Amount: custody.AmountOf(1)}),
		Nonce: 2,
		Gas:   50000,
	}
	_, err = s.exec(submitter, 50000, &ExecMsg{Safe: safe, Operation: op, Signature: sign(t, &op, owner)})
	assert.IsErr(t, errors.ErrMsg, err)
	assert.Equal(t, uint64(1), s.nonce(safe))
}

func TestIsNonceValid(t *testing.T) {
	s := newTestStack(t)
	safe, _ := s.newGroupSafe(1, custodytest.NewKey(t, "a"))

	ok, err := s.auth.IsNonceValid(s.db, safe, 1)
	assert.Nil(t, err)
	assert.Equal(t, true, ok)

	ok, err = s.auth.IsNonceValid(s.db, safe, 0)
	assert.Nil(t, err)
	assert.Equal(t, false, ok)

	_, err = s.auth.IsNonceValid(s.db, custodytest.NewAddress(9), 1)
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestConfiguration(t *testing.T) {
	db := store.MemStore()

	conf, err := LoadConfiguration(db)
	assert.Nil(t, err)
	assert.Equal(t, DefaultConfiguration, *conf)

	opts := custody.Options{"conf": []byte(`{"safe": {"base_cost": 10, "sig_verify_cost": 1}}`)}
	assert.Nil(t, Initializer{}.FromGenesis(opts, db))
	conf, err = LoadConfiguration(db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(12), conf.MinGas(2))

	// no configuration in genesis keeps the default
	assert.Nil(t, Initializer{}.FromGenesis(custody.Options{}, store.MemStore()))

	err = Initializer{}.FromGenesis(custody.Options{"conf": []byte(`{"safe": {}}`)}, store.MemStore())
	assert.IsErr(t, errors.ErrModel, err)
}
