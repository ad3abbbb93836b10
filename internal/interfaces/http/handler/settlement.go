package handler

import (
	"time"

	appsettlement "github.com/dealerlink/backend/internal/application/settlement"
	"github.com/dealerlink/backend/internal/domain/settlement"
	"github.com/dealerlink/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementHandler exposes settlement generation and lifecycle endpoints
type SettlementHandler struct {
	BaseHandler
	generator *appsettlement.Generator
	lifecycle *appsettlement.LifecycleService
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(generator *appsettlement.Generator, lifecycle *appsettlement.LifecycleService) *SettlementHandler {
	return &SettlementHandler{generator: generator, lifecycle: lifecycle}
}

// RegisterRoutes registers all settlement routes
func (h *SettlementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	settlements := rg.Group("/settlements")
	{
		settlements.POST("/generate", h.Generate)
		settlements.GET("", h.List)
		settlements.GET("/summary", h.Summary)
		settlements.GET("/:id", h.Get)
		settlements.POST("/:id/transition", h.Transition)
	}

	orders := rg.Group("/orders")
	{
		orders.GET("/:order_id/settlements", h.ListForOrder)
		orders.POST("/:order_id/settlements/cancel", h.CancelForOrder)
	}
}

// GenerateSettlementsRequest is the payload for manual settlement generation.
// The same command normally arrives through the order approval event; this
// endpoint exists for replays and backfills.
type GenerateSettlementsRequest struct {
	OrderID        string          `json:"order_id" binding:"required,uuid"`
	OrderNumber    string          `json:"order_number" binding:"required"`
	CompanyID      string          `json:"company_id" binding:"required,uuid"`
	PolicyID       string          `json:"policy_id" binding:"required,uuid"`
	Carrier        string          `json:"carrier" binding:"required"`
	PlanAmount     decimal.Decimal `json:"plan_amount" binding:"required"`
	ContractPeriod int             `json:"contract_period" binding:"required"`
	ApprovedAt     *time.Time      `json:"approved_at"`
}

// Generate creates the settlement rows for one finally-approved order
func (h *SettlementHandler) Generate(c *gin.Context) {
	var req GenerateSettlementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	approvedAt := time.Now()
	if req.ApprovedAt != nil {
		approvedAt = *req.ApprovedAt
	}

	cmd := appsettlement.GenerateCommand{
		OrderID:        uuid.MustParse(req.OrderID),
		OrderNumber:    req.OrderNumber,
		CompanyID:      uuid.MustParse(req.CompanyID),
		PolicyID:       uuid.MustParse(req.PolicyID),
		Carrier:        req.Carrier,
		PlanAmount:     req.PlanAmount,
		ContractPeriod: req.ContractPeriod,
		ApprovedAt:     approvedAt,
	}

	result, err := h.generator.Generate(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if result.AlreadyGenerated() {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}

// Get returns one settlement by ID
func (h *SettlementHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid settlement ID format")
		return
	}

	row, err := h.lifecycle.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// List returns settlements matching the query filter
func (h *SettlementHandler) List(c *gin.Context) {
	filter, err := parseSettlementFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.lifecycle.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// TransitionRequest is the payload for a settlement status transition
type TransitionRequest struct {
	NewStatus string `json:"new_status" binding:"required"`
	Actor     string `json:"actor" binding:"required,uuid"`
	Reason    string `json:"reason"`
}

// Transition moves a settlement to a new lifecycle status
func (h *SettlementHandler) Transition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid settlement ID format")
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	cmd := appsettlement.TransitionCommand{
		SettlementID: id,
		NewStatus:    settlement.Status(req.NewStatus),
		Actor:        uuid.MustParse(req.Actor),
		Reason:       req.Reason,
	}

	row, err := h.lifecycle.Transition(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// ListForOrder returns every settlement generated for an order
func (h *SettlementHandler) ListForOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	rows, err := h.lifecycle.ListForOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// CancelOrderRequest is the payload for cancelling an order's settlements
type CancelOrderRequest struct {
	Actor  string `json:"actor" binding:"required,uuid"`
	Reason string `json:"reason" binding:"required"`
}

// CancelForOrder cancels every cancellable settlement of an order
func (h *SettlementHandler) CancelForOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rows, err := h.lifecycle.CancelForOrder(c.Request.Context(), orderID, uuid.MustParse(req.Actor), req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// Summary returns count and total amount for one company and status
func (h *SettlementHandler) Summary(c *gin.Context) {
	companyID, err := uuid.Parse(c.Query("company_id"))
	if err != nil {
		h.BadRequest(c, "Invalid or missing company_id")
		return
	}
	status := settlement.Status(c.Query("status"))
	if !status.IsValid() {
		h.BadRequest(c, "Invalid or missing status")
		return
	}

	summary, err := h.lifecycle.SummaryByStatus(c.Request.Context(), companyID, status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

func parseSettlementFilter(c *gin.Context) (settlement.Filter, error) {
	filter := settlement.DefaultFilter()

	var list dto.ListRequest
	if err := c.ShouldBindQuery(&list); err != nil {
		return filter, err
	}
	list.Normalize()
	filter.Page = list.Page
	filter.PageSize = list.PageSize

	if raw := c.Query("payer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, err
		}
		filter.PayerID = &id
	}
	if raw := c.Query("payee_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, err
		}
		filter.PayeeID = &id
	}
	if raw := c.Query("company_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, err
		}
		filter.CompanyID = &id
	}
	if raw := c.Query("status"); raw != "" {
		status := settlement.Status(raw)
		filter.Status = &status
	}
	if raw := c.Query("date_from"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, err
		}
		filter.DateFrom = &ts
	}
	if raw := c.Query("date_to"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, err
		}
		filter.DateTo = &ts
	}
	return filter, nil
}
