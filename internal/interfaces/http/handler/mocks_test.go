package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nemean-dev/cdl-admin/internal/application/inventory"
	"github.com/nemean-dev/cdl-admin/internal/domain/bulk"
	"github.com/nemean-dev/cdl-admin/internal/domain/catalog"
	"github.com/nemean-dev/cdl-admin/internal/domain/shared"
	"github.com/nemean-dev/cdl-admin/internal/interfaces/http/middleware"
	"github.com/nemean-dev/cdl-admin/internal/interfaces/http/router"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// MockBulkSyncService is a mock implementation of BulkSyncService
type MockBulkSyncService struct {
	mock.Mock
}

func (m *MockBulkSyncService) Trigger(ctx context.Context) (*bulk.SyncJob, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bulk.SyncJob), args.Error(1)
}

func (m *MockBulkSyncService) Get(ctx context.Context, id uuid.UUID) (*bulk.SyncJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bulk.SyncJob), args.Error(1)
}

func (m *MockBulkSyncService) List(ctx context.Context, filter shared.Filter) ([]*bulk.SyncJob, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*bulk.SyncJob), args.Get(1).(int64), args.Error(2)
}

// MockVendorLister is a mock implementation of VendorLister
type MockVendorLister struct {
	mock.Mock
}

func (m *MockVendorLister) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Vendor, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]catalog.Vendor), args.Get(1).(int64), args.Error(2)
}

// MockInventoryService is a mock implementation of InventoryService
type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) batchResult(args mock.Arguments) (*inventory.BatchResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.BatchResult), args.Error(1)
}

func (m *MockInventoryService) UpdatePrices(ctx context.Context, updates []inventory.PriceUpdate) (*inventory.BatchResult, error) {
	return m.batchResult(m.Called(ctx, updates))
}

func (m *MockInventoryService) UpdateCosts(ctx context.Context, updates []inventory.CostUpdate) (*inventory.BatchResult, error) {
	return m.batchResult(m.Called(ctx, updates))
}

func (m *MockInventoryService) AdjustQuantities(ctx context.Context, updates []inventory.QuantityUpdate) (*inventory.BatchResult, error) {
	return m.batchResult(m.Called(ctx, updates))
}

func (m *MockInventoryService) UpdateMetafields(ctx context.Context, updates []inventory.MetafieldUpdate) (*inventory.BatchResult, error) {
	return m.batchResult(m.Called(ctx, updates))
}

func (m *MockInventoryService) LoadIntakeRows(ctx context.Context, key string) ([]inventory.IntakeRow, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.IntakeRow), args.Error(1)
}

func (m *MockInventoryService) ValidateIntake(ctx context.Context, rows []inventory.IntakeRow) (*inventory.IntakeValidation, error) {
	args := m.Called(ctx, rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.IntakeValidation), args.Error(1)
}

func (m *MockInventoryService) ApplyIntake(ctx context.Context, rows []inventory.IntakeRow) (*inventory.IntakeValidation, *inventory.BatchResult, error) {
	args := m.Called(ctx, rows)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*inventory.IntakeValidation), args.Get(1).(*inventory.BatchResult), args.Error(2)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		PageSize   int   `json:"page_size"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

func newEngine(groups ...*router.DomainGroup) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	r := router.NewRouter(engine)
	for _, g := range groups {
		r.Register(g)
	}
	r.Setup()
	return engine
}

func doRequest(t *testing.T, engine *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func decodeData(t *testing.T, env envelope, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, out))
}
