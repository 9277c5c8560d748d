package pricefeed

import (
	"fmt"
	"math/big"

	"blockpay/internal/domain"
)

// Amounts are 18-decimal fixed point throughout the ledger.
const amountDecimals = 18

var ten = big.NewInt(10)

// Convert returns the native-asset quantity equivalent to amountUSD at the
// given oracle price. The price is normalized to 18-decimal precision before
// dividing, so no precision is lost for the usual 8-decimal feeds; the final
// division truncates toward zero.
func Convert(amountUSD *big.Int, price *big.Int, priceDecimals uint8) (*big.Int, error) {
	if amountUSD == nil || amountUSD.Sign() < 0 {
		return nil, fmt.Errorf("usd amount must not be negative")
	}
	if price == nil || price.Sign() <= 0 {
		return nil, fmt.Errorf("oracle price must be positive: %w", domain.ErrOraclePrice)
	}

	normalized := new(big.Int).Set(price)
	switch {
	case priceDecimals < amountDecimals:
		exp := big.NewInt(int64(amountDecimals - priceDecimals))
		normalized.Mul(normalized, new(big.Int).Exp(ten, exp, nil))
	case priceDecimals > amountDecimals:
		exp := big.NewInt(int64(priceDecimals - amountDecimals))
		normalized.Div(normalized, new(big.Int).Exp(ten, exp, nil))
		if normalized.Sign() <= 0 {
			return nil, fmt.Errorf("oracle price underflows 18-decimal precision: %w", domain.ErrOraclePrice)
		}
	}

	// native = usd * 10^18 / normalizedPrice
	scale := new(big.Int).Exp(ten, big.NewInt(amountDecimals), nil)
	native := new(big.Int).Mul(amountUSD, scale)
	return native.Div(native, normalized), nil
}
