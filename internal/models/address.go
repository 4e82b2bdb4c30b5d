package models

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// AddressKey normalizes an address for storage and lookups. All balance,
// allowance and approval rows key on this form.
func AddressKey(a common.Address) string {
	return strings.ToLower(a.Hex())
}
