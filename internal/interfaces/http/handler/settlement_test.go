package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appsettlement "github.com/dealerlink/backend/internal/application/settlement"
	"github.com/dealerlink/backend/internal/domain/policy"
	"github.com/dealerlink/backend/internal/domain/settlement"
	"github.com/dealerlink/backend/internal/domain/shared"
	"github.com/dealerlink/backend/internal/domain/shared/valueobject"
	"github.com/dealerlink/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// envelope mirrors dto.Response with raw data for per-test decoding
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

type mockSettlementRepo struct {
	mock.Mock
}

func (m *mockSettlementRepo) FindByID(ctx context.Context, id uuid.UUID) (*settlement.Settlement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.Settlement), args.Error(1)
}

func (m *mockSettlementRepo) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]settlement.Settlement, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]settlement.Settlement), args.Error(1)
}

func (m *mockSettlementRepo) FindAll(ctx context.Context, filter settlement.Filter) ([]settlement.Settlement, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]settlement.Settlement), args.Error(1)
}

func (m *mockSettlementRepo) Count(ctx context.Context, filter settlement.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSettlementRepo) CreateBatch(ctx context.Context, settlements []*settlement.Settlement) ([]*settlement.Settlement, error) {
	args := m.Called(ctx, settlements)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*settlement.Settlement), args.Error(1)
}

func (m *mockSettlementRepo) SaveWithLock(ctx context.Context, s *settlement.Settlement) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSettlementRepo) ExistsByEdge(ctx context.Context, orderID, payerID, payeeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, orderID, payerID, payeeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSettlementRepo) CountByStatus(ctx context.Context, companyID uuid.UUID, status settlement.Status) (int64, error) {
	args := m.Called(ctx, companyID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSettlementRepo) SumAmountByStatus(ctx context.Context, companyID uuid.UUID, status settlement.Status) (decimal.Decimal, error) {
	args := m.Called(ctx, companyID, status)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func newSettlementRouter(repo settlement.Repository, pub shared.EventPublisher) *gin.Engine {
	lifecycle := appsettlement.NewLifecycleService(repo, pub, zap.NewNop())
	h := NewSettlementHandler(nil, lifecycle)

	engine := gin.New()
	api := engine.Group("/api/v1")
	h.RegisterRoutes(api)
	return engine
}

func newTestSettlement(t *testing.T) *settlement.Settlement {
	t.Helper()
	row, err := settlement.NewSettlement(
		uuid.New(), "ORD-1001", uuid.New(),
		uuid.New(), "HQ Seoul",
		uuid.New(), "Gangnam Agency",
		"SKT", decimal.NewFromInt(45000), 55000, 24,
		decimal.NewFromInt(30000), policy.RateSourcePlatformMatrix,
		time.Now().AddDate(0, 1, 0),
	)
	require.NoError(t, err)
	row.ClearDomainEvents()
	return row
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestSettlementHandlerGet(t *testing.T) {
	t.Run("returns settlement", func(t *testing.T) {
		repo := new(mockSettlementRepo)
		row := newTestSettlement(t)
		repo.On("FindByID", mock.Anything, row.ID).Return(row, nil)

		engine := newSettlementRouter(repo, new(mockPublisher))
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/settlements/"+row.ID.String(), nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w)
		assert.True(t, env.Success)

		var got settlement.Settlement
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, row.ID, got.ID)
		assert.Equal(t, settlement.StatusPending, got.Status)
	})

	t.Run("unknown settlement returns 404", func(t *testing.T) {
		repo := new(mockSettlementRepo)
		repo.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

		engine := newSettlementRouter(repo, new(mockPublisher))
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/settlements/"+uuid.NewString(), nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		env := decodeEnvelope(t, w)
		assert.False(t, env.Success)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})

	t.Run("malformed ID returns 400", func(t *testing.T) {
		engine := newSettlementRouter(new(mockSettlementRepo), new(mockPublisher))
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/settlements/not-a-uuid", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSettlementHandlerTransition(t *testing.T) {
	actor := uuid.New()

	t.Run("approves pending settlement", func(t *testing.T) {
		repo := new(mockSettlementRepo)
		pub := new(mockPublisher)
		row := newTestSettlement(t)
		repo.On("FindByID", mock.Anything, row.ID).Return(row, nil)
		repo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)
		pub.On("Publish", mock.Anything, mock.Anything).Return(nil)

		engine := newSettlementRouter(repo, pub)
		body, _ := json.Marshal(TransitionRequest{NewStatus: "APPROVED", Actor: actor.String()})
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/settlements/"+row.ID.String()+"/transition", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w)
		var got settlement.Settlement
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, settlement.StatusApproved, got.Status)
		assert.NotNil(t, got.ApprovedAt)
		repo.AssertCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("paid settlement rejects every transition", func(t *testing.T) {
		repo := new(mockSettlementRepo)
		row := newTestSettlement(t)
		require.NoError(t, row.Approve(actor))
		require.NoError(t, row.MarkPaid(actor))
		row.ClearDomainEvents()
		repo.On("FindByID", mock.Anything, row.ID).Return(row, nil)

		engine := newSettlementRouter(repo, new(mockPublisher))
		for _, next := range []string{"APPROVED", "UNPAID", "CANCELLED"} {
			body, _ := json.Marshal(TransitionRequest{NewStatus: next, Actor: actor.String(), Reason: "order reversed"})
			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/v1/settlements/"+row.ID.String()+"/transition", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			engine.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "transition to %s", next)
			env := decodeEnvelope(t, w)
			assert.Equal(t, shared.ErrCodeInvalidTransition, env.Error.Code)
		}
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("missing actor returns 400", func(t *testing.T) {
		engine := newSettlementRouter(new(mockSettlementRepo), new(mockPublisher))
		body, _ := json.Marshal(map[string]string{"new_status": "APPROVED"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/settlements/"+uuid.NewString()+"/transition", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSettlementHandlerListForOrder(t *testing.T) {
	repo := new(mockSettlementRepo)
	first := newTestSettlement(t)
	second := newTestSettlement(t)
	orderID := first.OrderID
	repo.On("FindByOrder", mock.Anything, orderID).Return([]settlement.Settlement{*first, *second}, nil)

	engine := newSettlementRouter(repo, new(mockPublisher))
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/orders/"+orderID.String()+"/settlements", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	var rows []settlement.Settlement
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	assert.Len(t, rows, 2)
}

func TestSettlementHandlerCancelForOrder(t *testing.T) {
	actor := uuid.New()

	t.Run("cancels pending settlements", func(t *testing.T) {
		repo := new(mockSettlementRepo)
		pub := new(mockPublisher)
		row := newTestSettlement(t)
		repo.On("FindByOrder", mock.Anything, row.OrderID).Return([]settlement.Settlement{*row}, nil)
		repo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)
		pub.On("Publish", mock.Anything, mock.Anything).Return(nil)

		engine := newSettlementRouter(repo, pub)
		body, _ := json.Marshal(CancelOrderRequest{Actor: actor.String(), Reason: "order reversed"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/orders/"+row.OrderID.String()+"/settlements/cancel", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w)
		var rows []settlement.Settlement
		require.NoError(t, json.Unmarshal(env.Data, &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, settlement.StatusCancelled, rows[0].Status)
	})

	t.Run("missing reason returns 400", func(t *testing.T) {
		engine := newSettlementRouter(new(mockSettlementRepo), new(mockPublisher))
		body, _ := json.Marshal(map[string]string{"actor": actor.String()})
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/v1/orders/"+uuid.NewString()+"/settlements/cancel", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSettlementHandlerSummary(t *testing.T) {
	t.Run("returns count and total", func(t *testing.T) {
		repo := new(mockSettlementRepo)
		companyID := uuid.New()
		repo.On("CountByStatus", mock.Anything, companyID, settlement.StatusPending).Return(int64(3), nil)
		repo.On("SumAmountByStatus", mock.Anything, companyID, settlement.StatusPending).Return(decimal.NewFromInt(84000), nil)

		engine := newSettlementRouter(repo, new(mockPublisher))
		w := httptest.NewRecorder()
		url := fmt.Sprintf("/api/v1/settlements/summary?company_id=%s&status=PENDING", companyID)
		req := httptest.NewRequest("GET", url, nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w)
		var summary appsettlement.CompanySummary
		require.NoError(t, json.Unmarshal(env.Data, &summary))
		assert.Equal(t, int64(3), summary.Count)
		assert.True(t, summary.Total.Equals(valueobject.NewMoneyKRW(decimal.NewFromInt(84000))))
	})

	t.Run("unknown status returns 400", func(t *testing.T) {
		engine := newSettlementRouter(new(mockSettlementRepo), new(mockPublisher))
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/settlements/summary?company_id="+uuid.NewString()+"&status=SHIPPED", nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSettlementHandlerList(t *testing.T) {
	repo := new(mockSettlementRepo)
	payee := uuid.New()
	row := newTestSettlement(t)
	repo.On("FindAll", mock.Anything, mock.MatchedBy(func(f settlement.Filter) bool {
		return f.PayeeID != nil && *f.PayeeID == payee && f.Page == 1
	})).Return([]settlement.Settlement{*row}, nil)
	repo.On("Count", mock.Anything, mock.Anything).Return(int64(1), nil)

	engine := newSettlementRouter(repo, new(mockPublisher))
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/settlements?payee_id="+payee.String(), nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.Total)
	assert.Equal(t, 1, env.Meta.Page)
}

func TestSettlementHandlerGenerateValidation(t *testing.T) {
	// generator is never reached for a malformed payload
	engine := newSettlementRouter(new(mockSettlementRepo), new(mockPublisher))
	body, _ := json.Marshal(map[string]string{"order_id": "not-a-uuid"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/settlements/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
