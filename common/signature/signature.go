// Package signature canonicalizes account addresses into signable
// digests and verifies wallet signatures over them. The encoding must
// match what the Platform contract hashes on-chain: the address as a
// single left-padded 32-byte ABI word, keccak256-hashed, then wrapped
// in the EIP-191 personal-message prefix by the signing wallet.
package signature

import (
	"bytes"
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const sigLen = 65

// ErrInvalidSignature indicates the signature does not recover to the
// claimed address, or is not a well-formed secp256k1 signature at all.
var ErrInvalidSignature = errors.New("signature: invalid signature")

// Digest returns keccak256 over the canonical ABI-word encoding of addr.
// This is the message the wallet personal-signs.
func Digest(addr common.Address) []byte {
	var word [32]byte
	copy(word[12:], addr.Bytes())
	return crypto.Keccak256(word[:])
}

// Sign produces a personal-message signature over Digest(addr) with V
// normalized to 27/28, matching what browser wallets emit. Used only
// for the service's own encryptor identity; end-user keys never enter
// the process.
func Sign(key *ecdsa.PrivateKey, addr common.Address) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash(Digest(addr)), key)
	if err != nil {
		return nil, fmt.Errorf("signature: signing failed: %w", err)
	}
	sig[sigLen-1] += 27
	return sig, nil
}

// Verify recovers the signer of sig over Digest(addr) and asserts it is
// addr itself. Accepts V as 0/1 or 27/28.
func Verify(addr common.Address, sig []byte) error {
	if len(sig) != sigLen {
		return ErrInvalidSignature
	}

	normalized := make([]byte, sigLen)
	copy(normalized, sig)
	if normalized[sigLen-1] >= 27 {
		normalized[sigLen-1] -= 27
	}
	if normalized[sigLen-1] > 1 {
		return ErrInvalidSignature
	}

	pub, err := crypto.SigToPub(accounts.TextHash(Digest(addr)), normalized)
	if err != nil {
		return ErrInvalidSignature
	}

	if !bytes.Equal(crypto.PubkeyToAddress(*pub).Bytes(), addr.Bytes()) {
		return ErrInvalidSignature
	}
	return nil
}
