package model

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"
)

// Domain identifies one participating ledger. Zero is never a valid domain.
type Domain uint32

// NativeToken is the zero address, standing for a domain's native currency.
var NativeToken = common.Address{}

func (d Domain) Valid() bool {
	return d != 0
}

func (d Domain) String() string {
	return strconv.FormatUint(uint64(d), 10)
}

// IsZeroAddress reports whether addr is the zero address.
func IsZeroAddress(addr common.Address) bool {
	return addr == common.Address{}
}
