package network

import (
	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CompanyType represents the tier of a company in the distribution network
type CompanyType string

const (
	CompanyTypeHeadquarters CompanyType = "HEADQUARTERS" // Platform operator, top of the network
	CompanyTypeAgency       CompanyType = "AGENCY"       // Regional distributor under headquarters
	CompanyTypeRetail       CompanyType = "RETAIL"       // Storefront dealer under an agency
)

// IsValid checks if the company type is valid
func (t CompanyType) IsValid() bool {
	switch t {
	case CompanyTypeHeadquarters, CompanyTypeAgency, CompanyTypeRetail:
		return true
	}
	return false
}

// String returns the string representation of CompanyType
func (t CompanyType) String() string {
	return string(t)
}

// ParentType returns the company type expected for this type's parent.
// Headquarters has no parent and returns an empty type.
func (t CompanyType) ParentType() CompanyType {
	switch t {
	case CompanyTypeAgency:
		return CompanyTypeHeadquarters
	case CompanyTypeRetail:
		return CompanyTypeAgency
	}
	return ""
}

// Company is a node in the distribution hierarchy. Companies are owned and
// mutated by the surrounding platform; this engine only reads them.
type Company struct {
	shared.BaseEntity
	Code     string      `json:"code"`
	Name     string      `json:"name"`
	Type     CompanyType `json:"type"`
	ParentID *uuid.UUID  `json:"parent_id"`
	Active   bool        `json:"active"`
}

// NewCompany creates a company reference row mirrored from the platform
func NewCompany(code, name string, companyType CompanyType, parentID *uuid.UUID) (*Company, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_COMPANY_CODE", "Company code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_COMPANY_NAME", "Company name cannot be empty")
	}
	if !companyType.IsValid() {
		return nil, shared.NewDomainError("INVALID_COMPANY_TYPE", "Company type is not valid")
	}
	if companyType == CompanyTypeHeadquarters && parentID != nil {
		return nil, shared.NewDomainError("INVALID_PARENT", "Headquarters cannot have a parent")
	}
	if companyType != CompanyTypeHeadquarters && parentID == nil {
		return nil, shared.NewDomainError("INVALID_PARENT", "Non-headquarters company requires a parent")
	}

	return &Company{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		Name:       name,
		Type:       companyType,
		ParentID:   parentID,
		Active:     true,
	}, nil
}

// IsHeadquarters returns true for the headquarters company
func (c *Company) IsHeadquarters() bool {
	return c.Type == CompanyTypeHeadquarters
}

// IsAgency returns true for agency companies
func (c *Company) IsAgency() bool {
	return c.Type == CompanyTypeAgency
}

// IsRetail returns true for retail companies
func (c *Company) IsRetail() bool {
	return c.Type == CompanyTypeRetail
}
