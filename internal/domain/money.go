package domain

import (
	"fmt"
	"math/big"
)

// ParseAmount parses a non-negative base-10 integer amount in 18-decimal
// fixed point, as carried on the wire.
func ParseAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("amount is required")
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}
	return v, nil
}

// FormatAmount renders an amount for the wire. A nil amount formats as zero.
func FormatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
