package domain

import "errors"

var (
	ErrDuplicatePlanID     = errors.New("payment id already exists")
	ErrPlanNotFound        = errors.New("payment plan not found")
	ErrInvalidPlan         = errors.New("invalid payment plan")
	ErrInsufficientPayment = errors.New("insufficient amount sent")
	ErrOraclePrice         = errors.New("invalid oracle price")
	ErrTransferFailed      = errors.New("transfer failed")
)
