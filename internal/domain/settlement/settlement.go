package settlement

import (
	"fmt"
	"time"

	"github.com/dealerlink/backend/internal/domain/policy"
	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a settlement
type Status string

const (
	StatusPending   Status = "PENDING"   // Created, awaiting approval
	StatusApproved  Status = "APPROVED"  // Approved for payment
	StatusPaid      Status = "PAID"      // Paid out (terminal)
	StatusUnpaid    Status = "UNPAID"    // Payment window missed, still payable
	StatusCancelled Status = "CANCELLED" // Cancelled, kept for audit (terminal)
)

// IsValid checks if the status is a valid settlement Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusPaid, StatusUnpaid, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions are allowed
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// CanTransitionTo reports whether the state machine permits moving to next.
// pending -> approved | cancelled
// approved -> paid | unpaid | cancelled
// unpaid -> paid
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusApproved || next == StatusCancelled
	case StatusApproved:
		return next == StatusPaid || next == StatusUnpaid || next == StatusCancelled
	case StatusUnpaid:
		return next == StatusPaid
	}
	return false
}

// Settlement is a single payer->payee commission obligation tied to one order
// and one hierarchy edge. Settlements are never deleted; cancellation is a
// status. Unique per (order, payer, payee).
type Settlement struct {
	shared.BaseAggregateRoot
	OrderID             uuid.UUID         `json:"order_id"`
	OrderNumber         string            `json:"order_number"`
	PolicyID            uuid.UUID         `json:"policy_id"`
	PayerID             uuid.UUID         `json:"payer_id"`
	PayerName           string            `json:"payer_name"`
	PayeeID             uuid.UUID         `json:"payee_id"`
	PayeeName           string            `json:"payee_name"`
	Carrier             string            `json:"carrier"`
	PlanAmount          decimal.Decimal   `json:"plan_amount"`
	PlanBucket          int64             `json:"plan_bucket"`
	ContractPeriod      int               `json:"contract_period"`
	Amount              decimal.Decimal   `json:"amount"`
	RateSource          policy.RateSource `json:"rate_source"`
	Status              Status            `json:"status"`
	ExpectedPaymentDate time.Time         `json:"expected_payment_date"`
	ApprovedAt          *time.Time        `json:"approved_at"`
	PaidAt              *time.Time        `json:"paid_at"`
	CancelledAt         *time.Time        `json:"cancelled_at"`
	CancelReason        string            `json:"cancel_reason"`
}

// NewSettlement creates a pending settlement for one hierarchy edge of an order
func NewSettlement(
	orderID uuid.UUID,
	orderNumber string,
	policyID uuid.UUID,
	payerID uuid.UUID,
	payerName string,
	payeeID uuid.UUID,
	payeeName string,
	carrier string,
	planAmount decimal.Decimal,
	planBucket int64,
	contractPeriod int,
	amount decimal.Decimal,
	rateSource policy.RateSource,
	expectedPaymentDate time.Time,
) (*Settlement, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if policyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_POLICY", "Policy ID cannot be empty")
	}
	if payerID == uuid.Nil || payeeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Payer and payee IDs cannot be empty")
	}
	if payerID == payeeID {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Payer and payee cannot be the same company")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Settlement amount cannot be negative")
	}
	if expectedPaymentDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_DATE", "Expected payment date is required")
	}

	s := &Settlement{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		OrderID:             orderID,
		OrderNumber:         orderNumber,
		PolicyID:            policyID,
		PayerID:             payerID,
		PayerName:           payerName,
		PayeeID:             payeeID,
		PayeeName:           payeeName,
		Carrier:             carrier,
		PlanAmount:          planAmount,
		PlanBucket:          planBucket,
		ContractPeriod:      contractPeriod,
		Amount:              amount,
		RateSource:          rateSource,
		Status:              StatusPending,
		ExpectedPaymentDate: expectedPaymentDate,
	}

	s.AddDomainEvent(NewSettlementCreatedEvent(s))

	return s, nil
}

// transitionError builds the rejection for an illegal transition
func (s *Settlement) transitionError(next Status) error {
	return shared.NewDomainError(shared.ErrCodeInvalidTransition,
		fmt.Sprintf("Settlement cannot move from %s to %s", s.Status, next))
}

// Approve moves the settlement from pending to approved
func (s *Settlement) Approve(actor uuid.UUID) error {
	if !s.Status.CanTransitionTo(StatusApproved) {
		return s.transitionError(StatusApproved)
	}

	now := time.Now()
	s.Status = StatusApproved
	s.ApprovedAt = &now
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewSettlementApprovedEvent(s, actor))

	return nil
}

// MarkPaid records the payout; allowed from approved and unpaid
func (s *Settlement) MarkPaid(actor uuid.UUID) error {
	if !s.Status.CanTransitionTo(StatusPaid) {
		return s.transitionError(StatusPaid)
	}

	now := time.Now()
	s.Status = StatusPaid
	s.PaidAt = &now
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewSettlementPaidEvent(s, actor))

	return nil
}

// MarkUnpaid flags a missed payment window; the settlement stays payable
func (s *Settlement) MarkUnpaid(actor uuid.UUID) error {
	if !s.Status.CanTransitionTo(StatusUnpaid) {
		return s.transitionError(StatusUnpaid)
	}

	s.Status = StatusUnpaid
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewSettlementUnpaidEvent(s, actor))

	return nil
}

// Cancel cancels the settlement, preserving the row for audit. Callers must
// verify the underlying order is cancellable before invoking this.
func (s *Settlement) Cancel(actor uuid.UUID, reason string) error {
	if !s.Status.CanTransitionTo(StatusCancelled) {
		return s.transitionError(StatusCancelled)
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	s.Status = StatusCancelled
	s.CancelledAt = &now
	s.CancelReason = reason
	s.UpdatedAt = now
	s.IncrementVersion()

	s.AddDomainEvent(NewSettlementCancelledEvent(s, actor))

	return nil
}

// TransitionTo dispatches to the matching transition method. Cancellation via
// TransitionTo requires a reason in place of a generic transition.
func (s *Settlement) TransitionTo(next Status, actor uuid.UUID, reason string) error {
	switch next {
	case StatusApproved:
		return s.Approve(actor)
	case StatusPaid:
		return s.MarkPaid(actor)
	case StatusUnpaid:
		return s.MarkUnpaid(actor)
	case StatusCancelled:
		return s.Cancel(actor, reason)
	default:
		return s.transitionError(next)
	}
}

// IsPending returns true while the settlement awaits approval
func (s *Settlement) IsPending() bool {
	return s.Status == StatusPending
}

// IsPaid returns true once the settlement has been paid out
func (s *Settlement) IsPaid() bool {
	return s.Status == StatusPaid
}

// IsCancelled returns true for cancelled settlements
func (s *Settlement) IsCancelled() bool {
	return s.Status == StatusCancelled
}

// IsOverdue reports whether the expected payment date has passed without payment
func (s *Settlement) IsOverdue(now time.Time) bool {
	if s.Status.IsTerminal() {
		return false
	}
	return now.After(s.ExpectedPaymentDate)
}
