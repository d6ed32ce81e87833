package oracle

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer is the off-chain shipping authority.
type Signer struct {
	key     *ecdsa.PrivateKey
	chainID uint64
}

func NewSigner(key *ecdsa.PrivateKey, chainID uint64) *Signer {
	return &Signer{key: key, chainID: chainID}
}

// NewSignerFromHex loads a secp256k1 private key given as hex, with or without 0x.
func NewSignerFromHex(hexKey string, chainID uint64) (*Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse signer key: %w", err)
	}
	return NewSigner(key, chainID), nil
}

func (s *Signer) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

// Sign returns a 65-byte [R || S || V] signature with V in {27, 28}.
func (s *Signer) Sign(q Quote) ([]byte, error) {
	sig, err := crypto.Sign(signedHash(q, s.chainID), s.key)
	if err != nil {
		return nil, fmt.Errorf("sign shipping quote: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}
