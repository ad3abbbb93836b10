package models

import (
	"github.com/dealerlink/backend/internal/domain/network"
	"github.com/google/uuid"
)

// CompanyModel is the persistence model for the mirrored company table
type CompanyModel struct {
	BaseModel
	Code     string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name     string     `gorm:"type:varchar(200);not null"`
	Type     string     `gorm:"type:varchar(20);not null;index"`
	ParentID *uuid.UUID `gorm:"type:uuid;index"`
	Active   bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// ToDomain converts the persistence model to a domain Company
func (m *CompanyModel) ToDomain() *network.Company {
	return &network.Company{
		BaseEntity: m.BaseModel.ToDomain(),
		Code:       m.Code,
		Name:       m.Name,
		Type:       network.CompanyType(m.Type),
		ParentID:   m.ParentID,
		Active:     m.Active,
	}
}

// FromDomain populates the persistence model from a domain Company
func (m *CompanyModel) FromDomain(c *network.Company) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Code = c.Code
	m.Name = c.Name
	m.Type = string(c.Type)
	m.ParentID = c.ParentID
	m.Active = c.Active
}

// CompanyModelFromDomain creates a new persistence model from a domain Company
func CompanyModelFromDomain(c *network.Company) *CompanyModel {
	m := &CompanyModel{}
	m.FromDomain(c)
	return m
}
