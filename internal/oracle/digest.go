// Package oracle signs and verifies shipping-cost attestations.
package oracle

import (
	"encoding/binary"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// Quote is the attested shipping cost for one buyer and product.
type Quote struct {
	ProductID    model.ProductID
	Buyer        common.Address
	ShippingCost *uint256.Int
	Nonce        uint64
}

// Digest is keccak256(abi.encodePacked(uint256 productId, address buyer,
// uint256 shippingCost, uint256 chainId, uint256 nonce)).
func Digest(q Quote, chainID uint64) common.Hash {
	shipping := new(uint256.Int)
	if q.ShippingCost != nil {
		shipping = q.ShippingCost
	}
	cost := shipping.Bytes32()
	return crypto.Keccak256Hash(
		word(uint64(q.ProductID)),
		q.Buyer.Bytes(),
		cost[:],
		word(chainID),
		word(q.Nonce),
	)
}

// signedHash applies the EIP-191 personal message prefix to the digest.
func signedHash(q Quote, chainID uint64) []byte {
	digest := Digest(q, chainID)
	return accounts.TextHash(digest.Bytes())
}

func word(v uint64) []byte {
	var b [32]byte
	binary.BigEndian.PutUint64(b[24:], v)
	return b[:]
}
