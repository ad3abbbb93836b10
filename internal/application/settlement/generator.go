package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/dealerlink/backend/internal/domain/network"
	"github.com/dealerlink/backend/internal/domain/policy"
	"github.com/dealerlink/backend/internal/domain/settlement"
	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GradeRecorder is the post-commit hook into grade tracking. Each settlement
// inserted by the generator is reported exactly once, together with the
// order's approval time so the counter lands in the period the order belongs
// to rather than the period it happens to be processed in.
type GradeRecorder interface {
	RecordQualifyingSettlement(ctx context.Context, s *settlement.Settlement, approvedAt time.Time) error
}

// Generator turns one final-approved order into the settlement chain for the
// fulfilling company's hierarchy: one pending row per (parent, child) edge up
// to headquarters. Headquarters is only ever a payer.
//
// Generation is idempotent. The unique (order, payer, payee) constraint is the
// sole concurrency control; a concurrent or repeated delivery of the same
// order inserts nothing and returns the rows the first delivery wrote.
type Generator struct {
	companies     network.CompanyRepository
	hierarchy     *network.HierarchyResolver
	policies      policy.PolicyRepository
	resolver      *policy.RateResolver
	txScope       TransactionScope
	gradeRecorder GradeRecorder
	publisher     shared.EventPublisher
	logger        *zap.Logger
}

// NewGenerator creates a settlement generator
func NewGenerator(
	companies network.CompanyRepository,
	hierarchy *network.HierarchyResolver,
	policies policy.PolicyRepository,
	resolver *policy.RateResolver,
	txScope TransactionScope,
	gradeRecorder GradeRecorder,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *Generator {
	return &Generator{
		companies:     companies,
		hierarchy:     hierarchy,
		policies:      policies,
		resolver:      resolver,
		txScope:       txScope,
		gradeRecorder: gradeRecorder,
		publisher:     publisher,
		logger:        logger,
	}
}

// Generate computes and persists the settlement chain for one order
func (g *Generator) Generate(ctx context.Context, cmd GenerateCommand) (*GenerateResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	pol, err := g.policies.FindByID(ctx, cmd.PolicyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy %s: %w", cmd.PolicyID, err)
	}
	if !pol.Active {
		return nil, shared.NewDomainError("INACTIVE_POLICY",
			fmt.Sprintf("Policy %s is not active", pol.Code))
	}

	company, err := g.companies.FindByID(ctx, cmd.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company %s: %w", cmd.CompanyID, err)
	}
	if company.Type == network.CompanyTypeHeadquarters {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidHierarchy,
			"Headquarters cannot be the fulfilling company of an order")
	}

	ancestors, err := g.hierarchy.Ancestors(ctx, company.ID)
	if err != nil {
		return nil, err
	}

	settlements, err := g.buildChain(ctx, cmd, pol, *company, ancestors)
	if err != nil {
		return nil, err
	}

	var inserted []*settlement.Settlement
	err = g.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		inserted, err = repos.Settlements().CreateBatch(ctx, settlements)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist settlement chain for order %s: %w", cmd.OrderID, err)
	}

	result := &GenerateResult{OrderID: cmd.OrderID, Created: inserted}

	if len(inserted) == 0 {
		existing, err := g.findExisting(ctx, cmd.OrderID)
		if err != nil {
			return nil, err
		}
		result.Existing = existing
		g.logger.Info("settlement chain already generated, skipping",
			zap.String("order_id", cmd.OrderID.String()),
			zap.Int("existing_rows", len(existing)),
		)
		return result, nil
	}

	g.logger.Info("settlement chain generated",
		zap.String("order_id", cmd.OrderID.String()),
		zap.String("order_number", cmd.OrderNumber),
		zap.String("company_id", cmd.CompanyID.String()),
		zap.Int("settlements", len(inserted)),
	)

	// Post-commit side effects only: the settlement transaction is already
	// durable before any counter moves or event leaves the process.
	for _, s := range inserted {
		if err := g.gradeRecorder.RecordQualifyingSettlement(ctx, s, cmd.ApprovedAt); err != nil {
			g.logger.Error("grade tracking update failed after settlement commit",
				zap.String("settlement_id", s.ID.String()),
				zap.String("payee_id", s.PayeeID.String()),
				zap.Error(err),
			)
			return result, fmt.Errorf("settlements committed but grade tracking failed: %w", err)
		}
	}

	for _, s := range inserted {
		if err := g.publisher.Publish(ctx, s.GetDomainEvents()...); err != nil {
			g.logger.Error("failed to publish settlement events",
				zap.String("settlement_id", s.ID.String()),
				zap.Error(err),
			)
		}
		s.ClearDomainEvents()
	}

	return result, nil
}

// buildChain resolves one rate per hierarchy edge and assembles the pending
// settlements. The payee list is the fulfilling company plus every ancestor
// below headquarters; each payee's parent is its payer.
func (g *Generator) buildChain(ctx context.Context, cmd GenerateCommand, pol *policy.Policy,
	company network.Company, ancestors []network.Company) ([]*settlement.Settlement, error) {

	chain := append([]network.Company{company}, ancestors...)
	expectedPayment := cmd.ApprovedAt.AddDate(0, 0, pol.PaymentOffsetDays)

	settlements := make([]*settlement.Settlement, 0, len(chain)-1)
	for i, payee := range chain {
		if payee.Type == network.CompanyTypeHeadquarters {
			break
		}
		if i+1 >= len(chain) {
			return nil, shared.NewDomainError(shared.ErrCodeInvalidHierarchy,
				fmt.Sprintf("Company %s has no parent to pay its settlement", payee.ID))
		}
		payer := chain[i+1]

		resolution, err := g.resolver.Resolve(ctx, policy.RateContext{
			Policy:         pol,
			CompanyID:      payee.ID,
			CompanyType:    payee.Type,
			ParentID:       &payer.ID,
			Carrier:        cmd.Carrier,
			PlanAmount:     cmd.PlanAmount,
			ContractPeriod: cmd.ContractPeriod,
		})
		if err != nil {
			return nil, err
		}

		s, err := settlement.NewSettlement(
			cmd.OrderID, cmd.OrderNumber, pol.ID,
			payer.ID, payer.Name,
			payee.ID, payee.Name,
			cmd.Carrier, cmd.PlanAmount, resolution.Bucket, cmd.ContractPeriod,
			resolution.Amount, resolution.Source,
			expectedPayment,
		)
		if err != nil {
			return nil, err
		}
		settlements = append(settlements, s)
	}

	if len(settlements) == 0 {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidHierarchy,
			fmt.Sprintf("Order %s produced an empty settlement chain", cmd.OrderID))
	}

	return settlements, nil
}

func (g *Generator) findExisting(ctx context.Context, orderID uuid.UUID) ([]settlement.Settlement, error) {
	var existing []settlement.Settlement
	err := g.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		existing, err = repos.Settlements().FindByOrder(ctx, orderID)
		return err
	})
	return existing, err
}
