package oracle

import (
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/x/verify"
)

func TestInitializeOnce(t *testing.T) {
	db := store.MemStore()
	b := NewBucket()

	addr, err := b.Create(db)
	assert.Nil(t, err)
	assert.Equal(t, Condition(seqID(1)).Address(), addr)

	o, err := b.Load(db, addr)
	assert.Nil(t, err)
	assert.Equal(t, false, o.Initialized)

	owner := custodytest.NewAddress(1)
	assert.Nil(t, b.Initialize(db, addr, owner))

	err = b.Initialize(db, addr, custodytest.NewAddress(2))
	assert.IsErr(t, errors.ErrAlreadyInitialized, err)

	o, err = b.Load(db, addr)
	assert.Nil(t, err)
	assert.Equal(t, owner, o.Owner)

	_, err = b.Load(db, custodytest.NewAddress(3))
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestModuleVerify(t *testing.T) {
	owner := custodytest.NewKey(t, "owner")
	stranger := custodytest.NewKey(t, "stranger")

	op := &verify.Operation{To: custodytest.NewAddress(1), Value: custody.AmountOf(5), Nonce: 1}
	digest := verify.Hash(op)

	m := NewModule(&Oracle{Owner: owner.Address(), Initialized: true})
	assert.Equal(t, digest, m.TxHash(op))
	assert.Equal(t, 1, m.SignaturesRequired())

	cases := map[string]struct {
		module Module
		sig    []byte
		want   bool
	}{
		"owner signature": {
			module: m,
			sig:    custodytest.Sign(t, digest[:], owner),
			want:   true,
		},
		"stranger signature": {
			module: m,
			sig:    custodytest.Sign(t, digest[:], stranger),
		},
		"two signatures": {
			module: m,
			sig:    custodytest.Sign(t, digest[:], owner, owner),
		},
		"truncated signature": {
			module: m,
			sig:    custodytest.Sign(t, digest[:], owner)[:64],
		},
		"no signature": {
			module: m,
		},
		"uninitialized": {
			module: NewModule(&Oracle{}),
			sig:    custodytest.Sign(t, digest[:], owner),
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.module.Verify(op, tc.sig))
		})
	}

	// signature over another operation
	other := *op
	other.Nonce = 2
	assert.Equal(t, false, m.Verify(&other, custodytest.Sign(t, digest[:], owner)))
}

func TestHandlers(t *testing.T) {
	db := store.MemStore()
	b := NewBucket()
	owner := custodytest.NewAddress(1)
	ctx := custodytest.Ctx(custodytest.NewAddress(7), 1000)

	create := CreateHandler{bucket: b}
	res, err := create.Deliver(ctx, db, &custodytest.Tx{Msg: &CreateOracleMsg{}})
	assert.Nil(t, err)
	addr := custody.Address(res.Data)

	initialize := InitializeHandler{bucket: b}
	tx := &custodytest.Tx{Msg: &InitializeMsg{Oracle: addr, Owner: owner}}
	_, err = initialize.Check(ctx, db, tx)
	assert.Nil(t, err)
	_, err = initialize.Deliver(ctx, db, tx)
	assert.Nil(t, err)

	_, err = initialize.Check(ctx, db, tx)
	assert.IsErr(t, errors.ErrAlreadyInitialized, err)
	_, err = initialize.Deliver(ctx, db, tx)
	assert.IsErr(t, errors.ErrAlreadyInitialized, err)

	res, err = create.Deliver(ctx, db, &custodytest.Tx{Msg: &CreateOracleMsg{Owner: owner}})
	assert.Nil(t, err)
	m, err := Loader(b)(db, res.Data)
	assert.Nil(t, err)
	assert.Equal(t, true, m.(Module).oracle.Initialized)

	m, err = Loader(b)(db, custodytest.NewAddress(9))
	assert.Nil(t, err)
	assert.Nil(t, m)
}

func seqID(n uint64) []byte {
	id := make([]byte, 8)
	id[7] = byte(n)
	return id
}
