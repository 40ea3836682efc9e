package crypto

import (
	"bytes"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/custody/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignRecover(t *testing.T) {
	key, err := GenPrivKey()
	require.NoError(t, err)

	digest := ethcrypto.Keccak256([]byte("withdraw 10"))
	sig, err := key.Sign(digest)
	require.NoError(t, err)
	require.Len(t, sig, SignatureLength)

	signer, err := Recover(digest, sig)
	require.NoError(t, err)
	assert.Equal(t, key.Address(), signer)

	// Ethereum style recovery id.
	legacy := append([]byte(nil), sig...)
	legacy[64] += 27
	signer, err = Recover(digest, legacy)
	require.NoError(t, err)
	assert.Equal(t, key.Address(), signer)

	// A different digest recovers a different address.
	other, err := Recover(ethcrypto.Keccak256([]byte("withdraw 11")), sig)
	if err == nil {
		assert.NotEqual(t, key.Address(), other)
	}
}

func TestRecoverRejectsMalformed(t *testing.T) {
	digest := ethcrypto.Keccak256([]byte("x"))
	_, err := Recover(digest, make([]byte, 64))
	assert.True(t, errors.ErrInput.Is(err))

	bad := make([]byte, SignatureLength)
	bad[64] = 5
	_, err = Recover(digest, bad)
	assert.True(t, errors.ErrInput.Is(err))

	_, err = Recover([]byte("short"), make([]byte, SignatureLength))
	assert.True(t, errors.ErrInput.Is(err))
}

func TestKeySerialization(t *testing.T) {
	key, err := PrivKeyFromSeed([]byte("alice"))
	require.NoError(t, err)
	again, err := PrivKeyFromSeed([]byte("alice"))
	require.NoError(t, err)
	assert.Equal(t, key.Address(), again.Address())

	loaded, err := PrivKeyFromHex(key.Hex())
	require.NoError(t, err)
	assert.True(t, bytes.Equal(key.Bytes(), loaded.Bytes()))
	assert.Len(t, key.Address(), 20)
}

func TestSplitSignatures(t *testing.T) {
	blob := make([]byte, 2*SignatureLength)
	blob[SignatureLength] = 7
	sigs, err := SplitSignatures(blob)
	require.NoError(t, err)
	require.Len(t, sigs, 2)
	assert.Equal(t, byte(7), sigs[1][0])

	_, err = SplitSignatures(blob[:100])
	assert.True(t, errors.ErrInput.Is(err))
	_, err = SplitSignatures(nil)
	assert.True(t, errors.ErrInput.Is(err))
}
