package oracle

import (
	"fmt"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Recover returns the address that signed q on chainID. V may be 0/1 or 27/28.
func Recover(q Quote, chainID uint64, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("signature length %d: %w", len(sig), model.ErrSignature)
	}
	normalized := make([]byte, crypto.SignatureLength)
	copy(normalized, sig)
	if normalized[crypto.RecoveryIDOffset] >= 27 {
		normalized[crypto.RecoveryIDOffset] -= 27
	}
	if normalized[crypto.RecoveryIDOffset] > 1 {
		return common.Address{}, fmt.Errorf("recovery id %d: %w", sig[crypto.RecoveryIDOffset], model.ErrSignature)
	}

	pub, err := crypto.SigToPub(signedHash(q, chainID), normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("recover signer: %v: %w", err, model.ErrSignature)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Verify fails with model.ErrSignature unless sig over q recovers to expected.
func Verify(q Quote, chainID uint64, sig []byte, expected common.Address) error {
	signer, err := Recover(q, chainID, sig)
	if err != nil {
		return err
	}
	if signer != expected {
		return model.ErrSignature
	}
	return nil
}
