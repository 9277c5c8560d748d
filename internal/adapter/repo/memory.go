package repo

import (
	"context"
	"math/big"
	"sync"

	"blockpay/internal/domain"
)

// PlanStoreMem is the in-memory domain.PlanStore, used when no database is
// configured and throughout the tests. The mutex makes check-then-insert a
// single indivisible step for concurrent creators.
type PlanStoreMem struct {
	mu        sync.RWMutex
	plans     map[string]domain.PaymentPlan
	byCreator map[string][]string
}

func NewPlanStoreMem() *PlanStoreMem {
	return &PlanStoreMem{
		plans:     make(map[string]domain.PaymentPlan),
		byCreator: make(map[string][]string),
	}
}

func (s *PlanStoreMem) Create(_ context.Context, plan *domain.PaymentPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.plans[plan.ID]; exists {
		return domain.ErrDuplicatePlanID
	}
	s.plans[plan.ID] = copyPlan(*plan)
	s.byCreator[plan.Creator] = append(s.byCreator[plan.Creator], plan.ID)
	return nil
}

func (s *PlanStoreMem) Get(_ context.Context, id string) (*domain.PaymentPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plan, ok := s.plans[id]
	if !ok {
		return nil, domain.ErrPlanNotFound
	}
	out := copyPlan(plan)
	return &out, nil
}

func (s *PlanStoreMem) ListByCreator(_ context.Context, creator string) ([]domain.PaymentPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byCreator[creator]
	out := make([]domain.PaymentPlan, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyPlan(s.plans[id]))
	}
	return out, nil
}

type payerKey struct {
	planID string
	payer  string
}

// LedgerStoreMem is the in-memory domain.LedgerStore. Payments are indexed by
// plan and by (plan, payer); balances never go negative because the only
// debit, FlushBalance, swaps the whole balance out under the lock.
type LedgerStoreMem struct {
	mu       sync.RWMutex
	byPlan   map[string][]domain.Payment
	byPayer  map[payerKey][]domain.Payment
	balances map[string]*big.Int
}

func NewLedgerStoreMem() *LedgerStoreMem {
	return &LedgerStoreMem{
		byPlan:   make(map[string][]domain.Payment),
		byPayer:  make(map[payerKey][]domain.Payment),
		balances: make(map[string]*big.Int),
	}
}

func (s *LedgerStoreMem) RecordPayment(_ context.Context, payment *domain.Payment, creator string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copyPayment(*payment)
	s.byPlan[stored.PlanID] = append(s.byPlan[stored.PlanID], stored)
	key := payerKey{planID: stored.PlanID, payer: stored.PayerAddress}
	s.byPayer[key] = append(s.byPayer[key], stored)

	balance, ok := s.balances[creator]
	if !ok {
		balance = new(big.Int)
		s.balances[creator] = balance
	}
	balance.Add(balance, stored.AmountPaid)
	return nil
}

func (s *LedgerStoreMem) PaymentsByPlan(_ context.Context, planID string) ([]domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyPayments(s.byPlan[planID]), nil
}

func (s *LedgerStoreMem) PaymentsByPayer(_ context.Context, planID, payer string) ([]domain.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyPayments(s.byPayer[payerKey{planID: planID, payer: payer}]), nil
}

func (s *LedgerStoreMem) Balance(_ context.Context, address string) (*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if balance, ok := s.balances[address]; ok {
		return new(big.Int).Set(balance), nil
	}
	return big.NewInt(0), nil
}

func (s *LedgerStoreMem) FlushBalance(_ context.Context, address string) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance, ok := s.balances[address]
	if !ok || balance.Sign() == 0 {
		return big.NewInt(0), nil
	}
	flushed := new(big.Int).Set(balance)
	balance.SetInt64(0)
	return flushed, nil
}

func (s *LedgerStoreMem) RestoreBalance(_ context.Context, address string, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance, ok := s.balances[address]
	if !ok {
		balance = new(big.Int)
		s.balances[address] = balance
	}
	balance.Add(balance, amount)
	return nil
}

func copyPlan(plan domain.PaymentPlan) domain.PaymentPlan {
	plan.AmountUSD = new(big.Int).Set(plan.AmountUSD)
	return plan
}

func copyPayment(payment domain.Payment) domain.Payment {
	payment.AmountPaid = new(big.Int).Set(payment.AmountPaid)
	return payment
}

func copyPayments(payments []domain.Payment) []domain.Payment {
	out := make([]domain.Payment, 0, len(payments))
	for _, payment := range payments {
		out = append(out, copyPayment(payment))
	}
	return out
}
