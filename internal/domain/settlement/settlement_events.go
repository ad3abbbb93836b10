package settlement

import (
	"time"

	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type names for the settlement aggregate
const (
	EventTypeSettlementCreated   = "SettlementCreated"
	EventTypeSettlementApproved  = "SettlementApproved"
	EventTypeSettlementPaid      = "SettlementPaid"
	EventTypeSettlementUnpaid    = "SettlementUnpaid"
	EventTypeSettlementCancelled = "SettlementCancelled"
	EventTypeOrderFinalApproved  = "OrderFinalApproved"
)

// SettlementCreatedEvent is raised when a settlement row is created for one
// hierarchy edge of an order
type SettlementCreatedEvent struct {
	shared.BaseDomainEvent
	SettlementID uuid.UUID       `json:"settlement_id"`
	OrderID      uuid.UUID       `json:"order_id"`
	OrderNumber  string          `json:"order_number"`
	PolicyID     uuid.UUID       `json:"policy_id"`
	PayerID      uuid.UUID       `json:"payer_id"`
	PayeeID      uuid.UUID       `json:"payee_id"`
	Amount       decimal.Decimal `json:"amount"`
}

// EventType returns the event type name
func (e *SettlementCreatedEvent) EventType() string {
	return EventTypeSettlementCreated
}

// NewSettlementCreatedEvent creates a new SettlementCreatedEvent
func NewSettlementCreatedEvent(s *Settlement) *SettlementCreatedEvent {
	return &SettlementCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSettlementCreated, "Settlement", s.ID),
		SettlementID:    s.ID,
		OrderID:         s.OrderID,
		OrderNumber:     s.OrderNumber,
		PolicyID:        s.PolicyID,
		PayerID:         s.PayerID,
		PayeeID:         s.PayeeID,
		Amount:          s.Amount,
	}
}

// SettlementApprovedEvent is raised when a settlement is approved for payment
type SettlementApprovedEvent struct {
	shared.BaseDomainEvent
	SettlementID uuid.UUID       `json:"settlement_id"`
	OrderID      uuid.UUID       `json:"order_id"`
	PayerID      uuid.UUID       `json:"payer_id"`
	PayeeID      uuid.UUID       `json:"payee_id"`
	Amount       decimal.Decimal `json:"amount"`
	Actor        uuid.UUID       `json:"actor"`
}

// EventType returns the event type name
func (e *SettlementApprovedEvent) EventType() string {
	return EventTypeSettlementApproved
}

// NewSettlementApprovedEvent creates a new SettlementApprovedEvent
func NewSettlementApprovedEvent(s *Settlement, actor uuid.UUID) *SettlementApprovedEvent {
	return &SettlementApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSettlementApproved, "Settlement", s.ID),
		SettlementID:    s.ID,
		OrderID:         s.OrderID,
		PayerID:         s.PayerID,
		PayeeID:         s.PayeeID,
		Amount:          s.Amount,
		Actor:           actor,
	}
}

// SettlementPaidEvent is raised when a settlement is paid out
type SettlementPaidEvent struct {
	shared.BaseDomainEvent
	SettlementID uuid.UUID       `json:"settlement_id"`
	OrderID      uuid.UUID       `json:"order_id"`
	PayeeID      uuid.UUID       `json:"payee_id"`
	Amount       decimal.Decimal `json:"amount"`
	PaidAt       time.Time       `json:"paid_at"`
	Actor        uuid.UUID       `json:"actor"`
}

// EventType returns the event type name
func (e *SettlementPaidEvent) EventType() string {
	return EventTypeSettlementPaid
}

// NewSettlementPaidEvent creates a new SettlementPaidEvent
func NewSettlementPaidEvent(s *Settlement, actor uuid.UUID) *SettlementPaidEvent {
	paidAt := time.Now()
	if s.PaidAt != nil {
		paidAt = *s.PaidAt
	}
	return &SettlementPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSettlementPaid, "Settlement", s.ID),
		SettlementID:    s.ID,
		OrderID:         s.OrderID,
		PayeeID:         s.PayeeID,
		Amount:          s.Amount,
		PaidAt:          paidAt,
		Actor:           actor,
	}
}

// SettlementUnpaidEvent is raised when the payment window is missed
type SettlementUnpaidEvent struct {
	shared.BaseDomainEvent
	SettlementID        uuid.UUID `json:"settlement_id"`
	OrderID             uuid.UUID `json:"order_id"`
	PayeeID             uuid.UUID `json:"payee_id"`
	ExpectedPaymentDate time.Time `json:"expected_payment_date"`
	Actor               uuid.UUID `json:"actor"`
}

// EventType returns the event type name
func (e *SettlementUnpaidEvent) EventType() string {
	return EventTypeSettlementUnpaid
}

// NewSettlementUnpaidEvent creates a new SettlementUnpaidEvent
func NewSettlementUnpaidEvent(s *Settlement, actor uuid.UUID) *SettlementUnpaidEvent {
	return &SettlementUnpaidEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent(EventTypeSettlementUnpaid, "Settlement", s.ID),
		SettlementID:        s.ID,
		OrderID:             s.OrderID,
		PayeeID:             s.PayeeID,
		ExpectedPaymentDate: s.ExpectedPaymentDate,
		Actor:               actor,
	}
}

// SettlementCancelledEvent is raised when a settlement is cancelled
type SettlementCancelledEvent struct {
	shared.BaseDomainEvent
	SettlementID uuid.UUID `json:"settlement_id"`
	OrderID      uuid.UUID `json:"order_id"`
	PayerID      uuid.UUID `json:"payer_id"`
	PayeeID      uuid.UUID `json:"payee_id"`
	Reason       string    `json:"reason"`
	Actor        uuid.UUID `json:"actor"`
}

// EventType returns the event type name
func (e *SettlementCancelledEvent) EventType() string {
	return EventTypeSettlementCancelled
}

// NewSettlementCancelledEvent creates a new SettlementCancelledEvent
func NewSettlementCancelledEvent(s *Settlement, actor uuid.UUID) *SettlementCancelledEvent {
	return &SettlementCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSettlementCancelled, "Settlement", s.ID),
		SettlementID:    s.ID,
		OrderID:         s.OrderID,
		PayerID:         s.PayerID,
		PayeeID:         s.PayeeID,
		Reason:          s.CancelReason,
		Actor:           actor,
	}
}

// OrderFinalApprovedEvent is the inbound trigger from the external order
// lifecycle. The surrounding platform publishes it when an order reaches its
// terminal final-approved state; delivery is at-least-once.
type OrderFinalApprovedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID       `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	CompanyID      uuid.UUID       `json:"company_id"`
	Carrier        string          `json:"carrier"`
	PlanAmount     decimal.Decimal `json:"plan_amount"`
	ContractPeriod int             `json:"contract_period"`
	PolicyID       uuid.UUID       `json:"policy_id"`
	ApprovedAt     time.Time       `json:"approved_at"`
}

// EventType returns the event type name
func (e *OrderFinalApprovedEvent) EventType() string {
	return EventTypeOrderFinalApproved
}

// NewOrderFinalApprovedEvent creates the inbound order trigger event
func NewOrderFinalApprovedEvent(orderID uuid.UUID, orderNumber string, companyID uuid.UUID,
	carrier string, planAmount decimal.Decimal, contractPeriod int, policyID uuid.UUID,
	approvedAt time.Time) *OrderFinalApprovedEvent {
	return &OrderFinalApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderFinalApproved, "Order", orderID),
		OrderID:         orderID,
		OrderNumber:     orderNumber,
		CompanyID:       companyID,
		Carrier:         carrier,
		PlanAmount:      planAmount,
		ContractPeriod:  contractPeriod,
		PolicyID:        policyID,
		ApprovedAt:      approvedAt,
	}
}
