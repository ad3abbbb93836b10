package network

import (
	"context"
	"errors"
	"fmt"

	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// maxChainDepth bounds ancestor walks. The network is three tiers deep, so
// anything past this indicates corrupted parent links.
const maxChainDepth = 8

// HierarchyResolver resolves ancestor chains and descendant sets over the
// company network. Cycles and dangling parent references are treated as data
// corruption and reported as INVALID_HIERARCHY errors, never followed.
type HierarchyResolver struct {
	companies CompanyRepository
}

// NewHierarchyResolver creates a hierarchy resolver over the company repository
func NewHierarchyResolver(companies CompanyRepository) *HierarchyResolver {
	return &HierarchyResolver{companies: companies}
}

// Ancestors returns the chain from the company's immediate parent up to
// headquarters, ordered nearest first. A headquarters company has no ancestors.
func (r *HierarchyResolver) Ancestors(ctx context.Context, companyID uuid.UUID) ([]Company, error) {
	company, err := r.companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	seen := map[uuid.UUID]bool{company.ID: true}
	chain := make([]Company, 0, 2)

	current := company
	for current.ParentID != nil {
		if len(chain) >= maxChainDepth {
			return nil, shared.NewDomainError(shared.ErrCodeInvalidHierarchy,
				fmt.Sprintf("Ancestor chain for company %s exceeds depth %d", companyID, maxChainDepth))
		}

		parentID := *current.ParentID
		if seen[parentID] {
			return nil, shared.NewDomainError(shared.ErrCodeInvalidHierarchy,
				fmt.Sprintf("Cycle detected in company hierarchy at %s", parentID))
		}

		parent, err := r.companies.FindByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError(shared.ErrCodeInvalidHierarchy,
					fmt.Sprintf("Company %s references missing parent %s", current.ID, parentID))
			}
			return nil, err
		}

		seen[parentID] = true
		chain = append(chain, *parent)
		current = parent
	}

	if !current.IsHeadquarters() {
		return nil, shared.NewDomainError(shared.ErrCodeInvalidHierarchy,
			fmt.Sprintf("Ancestor chain for company %s does not terminate at headquarters", companyID))
	}

	return chain, nil
}

// Descendants returns the transitive closure of companies below the given
// company, breadth-first. The set excludes the company itself.
func (r *HierarchyResolver) Descendants(ctx context.Context, companyID uuid.UUID) ([]Company, error) {
	if _, err := r.companies.FindByID(ctx, companyID); err != nil {
		return nil, err
	}

	seen := map[uuid.UUID]bool{companyID: true}
	result := make([]Company, 0)
	frontier := []uuid.UUID{companyID}

	for depth := 0; len(frontier) > 0; depth++ {
		if depth > maxChainDepth {
			return nil, shared.NewDomainError(shared.ErrCodeInvalidHierarchy,
				fmt.Sprintf("Descendant traversal for company %s exceeds depth %d", companyID, maxChainDepth))
		}

		next := make([]uuid.UUID, 0)
		for _, id := range frontier {
			children, err := r.companies.FindChildren(ctx, id)
			if err != nil {
				return nil, err
			}
			for _, child := range children {
				if seen[child.ID] {
					return nil, shared.NewDomainError(shared.ErrCodeInvalidHierarchy,
						fmt.Sprintf("Cycle detected in company hierarchy at %s", child.ID))
				}
				seen[child.ID] = true
				result = append(result, child)
				next = append(next, child.ID)
			}
		}
		frontier = next
	}

	return result, nil
}
