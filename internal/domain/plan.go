package domain

import (
	"math/big"
	"time"
)

// PaymentPlan is a named, fixed-USD payment request that anyone can fulfil by
// sending the equivalent native-asset value. Plans are immutable once created
// and are never deleted.
type PaymentPlan struct {
	ID        string
	Name      string
	AmountUSD *big.Int // USD, 18-decimal fixed point
	Creator   string
	CreatedAt time.Time
}
