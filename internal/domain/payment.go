package domain

import (
	"math/big"
	"time"
)

// Payment records a single fulfilment of a plan. The full amount the payer
// sent is recorded, including any overpayment.
type Payment struct {
	ID             string
	PlanID         string
	PayerAddress   string
	PayerFirstName string
	PayerLastName  string
	PayerEmail     string
	AmountPaid     *big.Int // native asset, 18-decimal fixed point
	CreatedAt      time.Time
}
