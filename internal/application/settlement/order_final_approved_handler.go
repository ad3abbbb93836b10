package settlement

import (
	"context"
	"fmt"

	"github.com/dealerlink/backend/internal/domain/settlement"
	"github.com/dealerlink/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderFinalApprovedHandler feeds order final-approval events into the
// generator. Delivery is at-least-once; the generator's uniqueness constraint
// absorbs duplicates, so a redelivered event is a logged no-op.
type OrderFinalApprovedHandler struct {
	generator *Generator
	logger    *zap.Logger
}

// NewOrderFinalApprovedHandler creates a handler for order final-approval events
func NewOrderFinalApprovedHandler(generator *Generator, logger *zap.Logger) *OrderFinalApprovedHandler {
	return &OrderFinalApprovedHandler{
		generator: generator,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderFinalApprovedHandler) EventTypes() []string {
	return []string{settlement.EventTypeOrderFinalApproved}
}

// Handle processes an OrderFinalApprovedEvent by generating the settlement chain
func (h *OrderFinalApprovedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	approvedEvent, ok := event.(*settlement.OrderFinalApprovedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", settlement.EventTypeOrderFinalApproved),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			settlement.EventTypeOrderFinalApproved, event.EventType())
	}

	h.logger.Info("processing order final approval",
		zap.String("order_id", approvedEvent.OrderID.String()),
		zap.String("order_number", approvedEvent.OrderNumber),
		zap.String("company_id", approvedEvent.CompanyID.String()),
	)

	result, err := h.generator.Generate(ctx, GenerateCommand{
		OrderID:        approvedEvent.OrderID,
		OrderNumber:    approvedEvent.OrderNumber,
		CompanyID:      approvedEvent.CompanyID,
		PolicyID:       approvedEvent.PolicyID,
		Carrier:        approvedEvent.Carrier,
		PlanAmount:     approvedEvent.PlanAmount,
		ContractPeriod: approvedEvent.ContractPeriod,
		ApprovedAt:     approvedEvent.ApprovedAt,
	})
	if err != nil {
		h.logger.Error("settlement generation failed",
			zap.String("order_id", approvedEvent.OrderID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to generate settlements for order %s: %w", approvedEvent.OrderID, err)
	}

	if result.AlreadyGenerated() {
		h.logger.Warn("order already settled, duplicate delivery ignored",
			zap.String("order_id", approvedEvent.OrderID.String()),
		)
	}

	return nil
}
