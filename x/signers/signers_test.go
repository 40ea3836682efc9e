package signers

import (
	"testing"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/crypto"
	"github.com/iov-one/custody/custodytest"
	"github.com/iov-one/custody/custodytest/assert"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	"github.com/iov-one/custody/store"
	"github.com/iov-one/custody/x/verify"
)

func TestVerify(t *testing.T) {
	var (
		a = custodytest.NewKey(t, "a")
		b = custodytest.NewKey(t, "b")
		c = custodytest.NewKey(t, "c")
		x = custodytest.NewKey(t, "outsider")
	)
	db := store.MemStore()
	bucket := NewBucket()
	safe := custodytest.NewAddress(100)

	group, err := bucket.Create(db, safe, []custody.Address{a.Address(), b.Address(), c.Address()}, 2)
	assert.Nil(t, err)

	m, err := Loader(bucket)(db, group)
	assert.Nil(t, err)
	assert.Equal(t, 2, m.SignaturesRequired())

	op := &verify.Operation{To: custodytest.NewAddress(1), Value: custody.AmountOf(5), Nonce: 1, Gas: 100000}
	digest := m.TxHash(op)
	forged := custodytest.Sign(t, digest[:], a)
	forged[10] ^= 0xff

	cases := map[string]struct {
		blob []byte
		want bool
	}{
		"threshold reached": {
			blob: custodytest.Sign(t, digest[:], a, b),
			want: true,
		},
		"any order": {
			blob: custodytest.Sign(t, digest[:], c, a),
			want: true,
		},
		"all signers": {
			blob: custodytest.Sign(t, digest[:], c, b, a),
			want: true,
		},
		"one below threshold": {
			blob: custodytest.Sign(t, digest[:], b),
		},
		"same signer twice": {
			blob: custodytest.Sign(t, digest[:], a, a),
		},
		"outsider does not count": {
			blob: custodytest.Sign(t, digest[:], a, x),
		},
		"forged signature": {
			blob: append(forged, custodytest.Sign(t, digest[:], b)...),
		},
		"partial signature": {
			blob: custodytest.Sign(t, digest[:], a, b)[:2*crypto.SignatureLength-1],
		},
		"empty blob": {
			blob: nil,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.want, m.Verify(op, tc.blob))
		})
	}

	// signatures of another operation
	other := *op
	other.Gas++
	assert.Equal(t, false, m.Verify(&other, custodytest.Sign(t, digest[:], a, b)))

	notGroup, err := Loader(bucket)(db, safe)
	assert.Nil(t, err)
	assert.Nil(t, notGroup)
}

func TestCreateValidation(t *testing.T) {
	a, b := custodytest.NewAddress(1), custodytest.NewAddress(2)

	cases := map[string]struct {
		msg     CreateGroupMsg
		wantErr *errors.Error
	}{
		"valid": {
			msg: CreateGroupMsg{Signers: []custody.Address{a, b}, Threshold: 2},
		},
		"threshold above signers": {
			msg:     CreateGroupMsg{Signers: []custody.Address{a, b}, Threshold: 3},
			wantErr: ErrThreshold,
		},
		"zero threshold": {
			msg:     CreateGroupMsg{Signers: []custody.Address{a}},
			wantErr: ErrThreshold,
		},
		"duplicate signer": {
			msg:     CreateGroupMsg{Signers: []custody.Address{a, a}, Threshold: 1},
			wantErr: errors.ErrDuplicate,
		},
		"no signers": {
			msg:     CreateGroupMsg{Threshold: 1},
			wantErr: errors.ErrEmpty,
		},
		"bad signer": {
			msg:     CreateGroupMsg{Signers: []custody.Address{{1, 2}}, Threshold: 1},
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			msg := tc.msg
			assert.IsErr(t, tc.wantErr, msg.Validate())
		})
	}

	// the sentinel is never a valid member
	_, err := NewBucket().Create(store.MemStore(), a, []custody.Address{orm.Sentinel}, 1)
	assert.IsErr(t, errors.ErrInput, err)
}

func TestMembership(t *testing.T) {
	var (
		a    = custodytest.NewAddress(1)
		b    = custodytest.NewAddress(2)
		c    = custodytest.NewAddress(3)
		safe = custodytest.NewAddress(100)
	)
	db := store.MemStore()
	bucket := NewBucket()

	group, err := bucket.Create(db, safe, []custody.Address{a, b}, 2)
	assert.Nil(t, err)

	list, err := bucket.ListSigners(db, group)
	assert.Nil(t, err)
	assert.Equal(t, []custody.Address{b, a}, list)

	// threshold 2 of 2 does not allow any removal
	err = bucket.RemoveSigner(db, group, b, a)
	assert.IsErr(t, ErrThreshold, err)

	assert.Nil(t, bucket.AddSigner(db, group, c))
	err = bucket.AddSigner(db, group, c)
	assert.IsErr(t, errors.ErrDuplicate, err)

	// wrong predecessor
	err = bucket.RemoveSigner(db, group, a, b)
	assert.IsErr(t, errors.ErrNotFound, err)
	list, err = bucket.ListSigners(db, group)
	assert.Nil(t, err)
	assert.Equal(t, []custody.Address{c, b, a}, list)

	prev, err := bucket.PrevSigner(db, group, b)
	assert.Nil(t, err)
	assert.Equal(t, c, prev)
	assert.Nil(t, bucket.RemoveSigner(db, group, prev, b))

	ok, err := bucket.IsSigner(db, group, b)
	assert.Nil(t, err)
	assert.Equal(t, false, ok)

	list, err = bucket.ListSigners(db, group)
	assert.Nil(t, err)
	assert.Equal(t, []custody.Address{c, a}, list)

	err = bucket.ChangeThreshold(db, group, 3)
	assert.IsErr(t, ErrThreshold, err)
	assert.Nil(t, bucket.ChangeThreshold(db, group, 1))
	assert.Nil(t, bucket.RemoveSigner(db, group, orm.Sentinel, c))

	g, err := bucket.Load(db, group)
	assert.Nil(t, err)
	assert.Equal(t, uint32(1), g.Threshold)
}

func TestUpdateRequiresOwningSafe(t *testing.T) {
	var (
		a    = custodytest.NewAddress(1)
		b    = custodytest.NewAddress(2)
		safe = custodytest.NewAddress(100)
	)
	db := store.MemStore()
	bucket := NewBucket()

	create := CreateHandler{bucket: bucket}
	res, err := create.Deliver(custodytest.Ctx(safe, 1000), db, &custodytest.Tx{
		Msg: &CreateGroupMsg{Signers: []custody.Address{a}, Threshold: 1},
	})
	assert.Nil(t, err)
	group := custody.Address(res.Data)

	g, err := bucket.Load(db, group)
	assert.Nil(t, err)
	assert.Equal(t, safe, g.Safe)

	h := UpdateHandler{bucket: bucket}
	tx := &custodytest.Tx{Msg: &AddSignerMsg{Group: group, Signer: b}}

	_, err = h.Deliver(custodytest.Ctx(a, 1000), db, tx)
	assert.IsErr(t, errors.ErrUnauthorized, err)
	_, err = h.Deliver(custodytest.Ctx(nil, 1000), db, tx)
	assert.IsErr(t, errors.ErrUnauthorized, err)

	_, err = h.Deliver(custodytest.Ctx(safe, 1000), db, tx)
	assert.Nil(t, err)

	tx = &custodytest.Tx{Msg: &ChangeThresholdMsg{Group: group, Threshold: 2}}
	_, err = h.Deliver(custodytest.Ctx(safe, 1000), db, tx)
	assert.Nil(t, err)

	tx = &custodytest.Tx{Msg: &RemoveSignerMsg{Group: group, Prev: orm.Sentinel, Signer: b}}
	_, err = h.Deliver(custodytest.Ctx(safe, 1000), db, tx)
	assert.IsErr(t, ErrThreshold, err)
}
