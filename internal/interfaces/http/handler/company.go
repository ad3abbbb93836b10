package handler

import (
	"github.com/dealerlink/backend/internal/domain/network"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CompanyHandler exposes the mirrored dealer network. Writes come from the
// platform sync job; everything else is read-only.
type CompanyHandler struct {
	BaseHandler
	companies network.CompanyRepository
	hierarchy *network.HierarchyResolver
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(companies network.CompanyRepository, hierarchy *network.HierarchyResolver) *CompanyHandler {
	return &CompanyHandler{companies: companies, hierarchy: hierarchy}
}

// RegisterRoutes registers all company routes
func (h *CompanyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	companies := rg.Group("/companies")
	{
		companies.PUT("", h.Sync)
		companies.GET("/:id", h.Get)
		companies.GET("/:id/children", h.Children)
		companies.GET("/:id/ancestors", h.Ancestors)
	}
}

// SyncCompanyRequest is the payload for upserting a mirrored company row
type SyncCompanyRequest struct {
	ID       string  `json:"id" binding:"required,uuid"`
	Code     string  `json:"code" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Type     string  `json:"type" binding:"required"`
	ParentID *string `json:"parent_id" binding:"omitempty,uuid"`
	Active   bool    `json:"active"`
}

// Sync upserts a company row mirrored from the platform
func (h *CompanyHandler) Sync(c *gin.Context) {
	var req SyncCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	companyID, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid company ID format")
		return
	}

	var parentID *uuid.UUID
	if req.ParentID != nil && *req.ParentID != "" {
		id, err := uuid.Parse(*req.ParentID)
		if err != nil {
			h.BadRequest(c, "Invalid parent ID format")
			return
		}
		parentID = &id
	}

	company, err := network.NewCompany(req.Code, req.Name, network.CompanyType(req.Type), parentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	company.ID = companyID
	company.Active = req.Active

	if err := h.companies.Save(c.Request.Context(), company); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}

// Get returns one company by ID
func (h *CompanyHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid company ID format")
		return
	}

	company, err := h.companies.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}

// Children returns a company's direct children
func (h *CompanyHandler) Children(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid company ID format")
		return
	}

	children, err := h.companies.FindChildren(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, children)
}

// Ancestors returns the payment chain above a company, nearest parent first
func (h *CompanyHandler) Ancestors(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid company ID format")
		return
	}

	ancestors, err := h.hierarchy.Ancestors(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ancestors)
}
