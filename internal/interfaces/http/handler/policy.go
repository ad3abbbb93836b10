package handler

import (
	"context"
	"time"

	"github.com/dealerlink/backend/internal/domain/policy"
	"github.com/dealerlink/backend/internal/infrastructure/cache"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PolicyHandler exposes policy sync plus the assignment and rate matrix
// admin surface. Matrix writes go through the repository and then invalidate
// the read-through cache for the affected policy.
type PolicyHandler struct {
	BaseHandler
	policies    policy.PolicyRepository
	assignments policy.PolicyAssignmentRepository
	rates       policy.RateMatrixRepository
	rateCache   cache.RateCache
}

// NewPolicyHandler creates a new PolicyHandler
func NewPolicyHandler(
	policies policy.PolicyRepository,
	assignments policy.PolicyAssignmentRepository,
	rates policy.RateMatrixRepository,
	rateCache cache.RateCache,
) *PolicyHandler {
	return &PolicyHandler{
		policies:    policies,
		assignments: assignments,
		rates:       rates,
		rateCache:   rateCache,
	}
}

// RegisterRoutes registers all policy routes
func (h *PolicyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	policies := rg.Group("/policies")
	{
		policies.PUT("", h.Sync)
		policies.GET("", h.ListActive)
		policies.GET("/:id", h.Get)

		policies.GET("/:id/assignments", h.ListAssignments)
		policies.PUT("/:id/assignments", h.SaveAssignment)
		policies.DELETE("/:id/assignments/:company_id", h.DeleteAssignment)

		policies.GET("/:id/rates", h.ListRates)
		policies.PUT("/:id/rates", h.SaveRate)
		policies.DELETE("/:id/rates/:rate_id", h.DeleteRate)
	}
}

// SyncPolicyRequest is the payload for upserting a mirrored policy row
type SyncPolicyRequest struct {
	ID                string              `json:"id" binding:"required,uuid"`
	Code              string              `json:"code" binding:"required"`
	Name              string              `json:"name" binding:"required"`
	Carrier           string              `json:"carrier" binding:"required"`
	TierDefaults      policy.TierDefaults `json:"tier_defaults"`
	PlanBuckets       policy.PlanBuckets  `json:"plan_buckets"`
	GradeLadder       policy.GradeLadder  `json:"grade_ladder"`
	TrackingPeriod    policy.PeriodType   `json:"tracking_period" binding:"required"`
	PaymentOffsetDays int                 `json:"payment_offset_days"`
	Active            bool                `json:"active"`
}

// Sync upserts a policy row mirrored from the platform
func (h *PolicyHandler) Sync(c *gin.Context) {
	var req SyncPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	policyID, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid policy ID format")
		return
	}

	p, err := policy.NewPolicy(req.Code, req.Name, req.Carrier, req.TierDefaults,
		req.PlanBuckets, req.GradeLadder, req.TrackingPeriod, req.PaymentOffsetDays)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	p.ID = policyID
	p.Active = req.Active

	if err := h.policies.Save(c.Request.Context(), p); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// ListActive returns all active policies
func (h *PolicyHandler) ListActive(c *gin.Context) {
	policies, err := h.policies.FindActive(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, policies)
}

// Get returns one policy by ID
func (h *PolicyHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid policy ID format")
		return
	}

	p, err := h.policies.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// ListAssignments returns all assignments of a policy
func (h *PolicyHandler) ListAssignments(c *gin.Context) {
	policyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid policy ID format")
		return
	}

	assignments, err := h.assignments.FindByPolicy(c.Request.Context(), policyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, assignments)
}

// SaveAssignmentRequest is the payload for upserting a policy assignment
type SaveAssignmentRequest struct {
	CompanyID         string           `json:"company_id" binding:"required,uuid"`
	CustomOverride    *decimal.Decimal `json:"custom_override"`
	VisibleToChildren bool             `json:"visible_to_children"`
}

// SaveAssignment upserts the assignment row for (policy, company)
func (h *PolicyHandler) SaveAssignment(c *gin.Context) {
	policyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid policy ID format")
		return
	}

	var req SaveAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		h.BadRequest(c, "Invalid company ID format")
		return
	}

	assignment, err := policy.NewPolicyAssignment(policyID, companyID, req.CustomOverride, req.VisibleToChildren)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.assignments.Save(c.Request.Context(), assignment); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, assignment)
}

// DeleteAssignment removes the assignment row for (policy, company)
func (h *PolicyHandler) DeleteAssignment(c *gin.Context) {
	policyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid policy ID format")
		return
	}
	companyID, err := uuid.Parse(c.Param("company_id"))
	if err != nil {
		h.BadRequest(c, "Invalid company ID format")
		return
	}

	if err := h.assignments.Delete(c.Request.Context(), policyID, companyID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListRates returns matrix cells of a policy, optionally narrowed to one scope
func (h *PolicyHandler) ListRates(c *gin.Context) {
	policyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid policy ID format")
		return
	}

	if scope := c.Query("scope_company_id"); scope != "" {
		var scopeID *uuid.UUID
		if scope != "platform" {
			id, err := uuid.Parse(scope)
			if err != nil {
				h.BadRequest(c, "Invalid scope company ID format")
				return
			}
			scopeID = &id
		}
		entries, err := h.rates.FindByScope(c.Request.Context(), policyID, scopeID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, entries)
		return
	}

	entries, err := h.rates.FindByPolicy(c.Request.Context(), policyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// SaveRateRequest is the payload for upserting one matrix cell
type SaveRateRequest struct {
	ScopeCompanyID *string         `json:"scope_company_id" binding:"omitempty,uuid"`
	Carrier        string          `json:"carrier" binding:"required"`
	PlanBucket     int64           `json:"plan_bucket" binding:"required"`
	ContractPeriod int             `json:"contract_period" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
}

// SaveRate upserts one matrix cell and drops the policy's cached rates
func (h *PolicyHandler) SaveRate(c *gin.Context) {
	policyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid policy ID format")
		return
	}

	var req SaveRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var scopeID *uuid.UUID
	if req.ScopeCompanyID != nil && *req.ScopeCompanyID != "" {
		id, err := uuid.Parse(*req.ScopeCompanyID)
		if err != nil {
			h.BadRequest(c, "Invalid scope company ID format")
			return
		}
		scopeID = &id
	}

	entry, err := policy.NewRateMatrixEntry(policyID, scopeID, req.Carrier,
		req.PlanBucket, req.ContractPeriod, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.rates.Save(c.Request.Context(), entry); err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.invalidateRates(c, policyID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// DeleteRate removes one matrix cell and drops the policy's cached rates
func (h *PolicyHandler) DeleteRate(c *gin.Context) {
	policyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid policy ID format")
		return
	}
	rateID, err := uuid.Parse(c.Param("rate_id"))
	if err != nil {
		h.BadRequest(c, "Invalid rate ID format")
		return
	}

	if err := h.rates.Delete(c.Request.Context(), rateID); err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.invalidateRates(c, policyID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *PolicyHandler) invalidateRates(c *gin.Context, policyID uuid.UUID) error {
	if h.rateCache == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()
	return h.rateCache.InvalidatePolicy(ctx, policyID)
}
