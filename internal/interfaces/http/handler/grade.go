package handler

import (
	appgrade "github.com/dealerlink/backend/internal/application/grade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GradeHandler exposes grade tracking status and bonus endpoints
type GradeHandler struct {
	BaseHandler
	tracker *appgrade.TrackerService
}

// NewGradeHandler creates a new GradeHandler
func NewGradeHandler(tracker *appgrade.TrackerService) *GradeHandler {
	return &GradeHandler{tracker: tracker}
}

// RegisterRoutes registers all grade routes
func (h *GradeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	grades := rg.Group("/grades")
	{
		grades.GET("/status", h.Status)
		grades.GET("/bonuses", h.ListBonuses)
		grades.POST("/bonuses/:id/pay", h.PayBonus)
	}
}

// Status returns the current period's counter for a (company, policy) pair.
// A pair with no orders yet reads as a zero counter, not a 404.
func (h *GradeHandler) Status(c *gin.Context) {
	companyID, err := uuid.Parse(c.Query("company_id"))
	if err != nil {
		h.BadRequest(c, "Invalid or missing company_id")
		return
	}
	policyID, err := uuid.Parse(c.Query("policy_id"))
	if err != nil {
		h.BadRequest(c, "Invalid or missing policy_id")
		return
	}

	status, err := h.tracker.Status(c.Request.Context(), companyID, policyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// ListBonuses returns a company's grade bonus settlements
func (h *GradeHandler) ListBonuses(c *gin.Context) {
	companyID, err := uuid.Parse(c.Query("company_id"))
	if err != nil {
		h.BadRequest(c, "Invalid or missing company_id")
		return
	}

	bonuses, err := h.tracker.ListBonuses(c.Request.Context(), companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bonuses)
}

// PayBonus marks a bonus settlement as paid
func (h *GradeHandler) PayBonus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bonus ID format")
		return
	}

	bonus, err := h.tracker.PayBonus(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bonus)
}
