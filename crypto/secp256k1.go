/*
Package crypto provides the secp256k1 keys used to authorize custody
operations.

Signatures are 65 bytes long, R || S || V, and are produced over a 32 byte
digest. The signer address is recovered from the signature itself, so no
public key has to be transmitted next to it.
*/
package crypto

import (
	"crypto/ecdsa"
	"encoding/hex"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// SignatureLength is the size of a recoverable signature.
const SignatureLength = 65

// DigestLength is the size of a message digest that can be signed.
const DigestLength = 32

// PrivateKey is a secp256k1 key that can sign operation digests.
type PrivateKey struct {
	key *ecdsa.PrivateKey
}

// GenPrivKey returns a new random key.
func GenPrivKey() (*PrivateKey, error) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "generate key: %s", err)
	}
	return &PrivateKey{key: key}, nil
}

// PrivKeyFromSeed deterministically derives a key from given seed. Useful
// for tests and development keys only.
func PrivKeyFromSeed(seed []byte) (*PrivateKey, error) {
	return PrivKeyFromBytes(ethcrypto.Keccak256(seed))
}

// PrivKeyFromBytes loads a key from its 32 byte representation.
func PrivKeyFromBytes(raw []byte) (*PrivateKey, error) {
	key, err := ethcrypto.ToECDSA(raw)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "private key: %s", err)
	}
	return &PrivateKey{key: key}, nil
}

// PrivKeyFromHex loads a key from its hex encoded representation.
func PrivKeyFromHex(s string) (*PrivateKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "private key hex: %s", err)
	}
	return PrivKeyFromBytes(raw)
}

// Bytes returns the 32 byte representation of the key.
func (k *PrivateKey) Bytes() []byte {
	return ethcrypto.FromECDSA(k.key)
}

// Hex returns the hex encoded representation of the key.
func (k *PrivateKey) Hex() string {
	return hex.EncodeToString(k.Bytes())
}

// Address returns the address controlled by this key.
func (k *PrivateKey) Address() custody.Address {
	return custody.Address(ethcrypto.PubkeyToAddress(k.key.PublicKey).Bytes())
}

// Sign returns a recoverable signature of given digest.
func (k *PrivateKey) Sign(digest []byte) ([]byte, error) {
	if len(digest) != DigestLength {
		return nil, errors.Wrapf(errors.ErrInput, "digest must be %d bytes", DigestLength)
	}
	sig, err := ethcrypto.Sign(digest, k.key)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "sign: %s", err)
	}
	return sig, nil
}

// Recover returns the address of the key that produced the signature over
// given digest. Both 0/1 and 27/28 recovery ids are accepted.
func Recover(digest, sig []byte) (custody.Address, error) {
	if len(digest) != DigestLength {
		return nil, errors.Wrapf(errors.ErrInput, "digest must be %d bytes", DigestLength)
	}
	if len(sig) != SignatureLength {
		return nil, errors.Wrapf(errors.ErrInput, "signature must be %d bytes", SignatureLength)
	}
	normalized := make([]byte, SignatureLength)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}
	if normalized[64] > 1 {
		return nil, errors.Wrapf(errors.ErrInput, "invalid recovery id %d", sig[64])
	}
	pub, err := ethcrypto.SigToPub(digest, normalized)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "recover: %s", err)
	}
	return custody.Address(ethcrypto.PubkeyToAddress(*pub).Bytes()), nil
}

// SplitSignatures cuts a concatenation of signatures into single
// signatures. It returns ErrInput if the blob is empty or its length is not
// a multiple of SignatureLength.
func SplitSignatures(blob []byte) ([][]byte, error) {
	if len(blob) == 0 || len(blob)%SignatureLength != 0 {
		return nil, errors.Wrapf(errors.ErrInput, "signature blob of %d bytes", len(blob))
	}
	res := make([][]byte, 0, len(blob)/SignatureLength)
	for i := 0; i < len(blob); i += SignatureLength {
		res = append(res, blob[i:i+SignatureLength])
	}
	return res, nil
}
