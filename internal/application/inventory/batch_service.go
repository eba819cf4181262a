// Package inventory implements the dashboard batch actions on store
// variants: prices, costs, quantities, metafields and purchase intake.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nemean-dev/cdl-admin/internal/domain/integration"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/ecommerce"
	csvimport "github.com/nemean-dev/cdl-admin/internal/infrastructure/import"
)

// Catalog is the store catalog the batch actions write to
type Catalog interface {
	FindVariantsBySKU(ctx context.Context, sku string) ([]ecommerce.VariantRef, error)
	SetVariantCost(ctx context.Context, inventoryItemID string, cost decimal.Decimal) error
	SetVariantPrices(ctx context.Context, productID string, prices []ecommerce.VariantPrice) error
	AdjustQuantities(ctx context.Context, changes []ecommerce.QuantityChange, reason, name string) error
	SetMetafields(ctx context.Context, metafields []ecommerce.MetafieldInput) ([]ecommerce.MetafieldBatchResult, error)
}

// SheetSource reads CSV sheets from storage
type SheetSource interface {
	DownloadCSV(ctx context.Context, key string, required ...string) ([]*csvimport.Row, error)
}

// Ensure the Shopify adapter satisfies Catalog
var _ Catalog = (*ecommerce.ShopifyCatalog)(nil)

// storeZone is the store's local time, used for default purchase dates
var storeZone = time.FixedZone("UTC-6", -6*60*60)

// Service runs batch actions. Every item reports its own result; a failing
// item never stops the rest of the batch.
type Service struct {
	catalog Catalog
	sheets  SheetSource
	logger  *zap.Logger
	now     func() time.Time
}

// Option is a functional option for Service
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithSheetSource sets where intake sheets are loaded from
func WithSheetSource(src SheetSource) Option {
	return func(s *Service) {
		s.sheets = src
	}
}

// WithClock sets the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a batch inventory service
func NewService(catalog Catalog, opts ...Option) *Service {
	s := &Service{
		catalog: catalog,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpdatePrices sets variant prices. Variants of the same product are sent in
// one mutation and share its outcome.
func (s *Service) UpdatePrices(ctx context.Context, updates []PriceUpdate) (*BatchResult, error) {
	items := make([]ItemResult, len(updates))
	byProduct := make(map[string][]int)
	var order []string

	for i, u := range updates {
		items[i].Key = u.VariantID
		if !u.Price.IsPositive() {
			items[i].Error = fmt.Sprintf("price must be positive, got %s", u.Price)
			continue
		}
		if _, ok := byProduct[u.ProductID]; !ok {
			order = append(order, u.ProductID)
		}
		byProduct[u.ProductID] = append(byProduct[u.ProductID], i)
	}

	for _, productID := range order {
		idx := byProduct[productID]
		prices := make([]ecommerce.VariantPrice, 0, len(idx))
		for _, i := range idx {
			prices = append(prices, ecommerce.VariantPrice{VariantID: updates[i].VariantID, Price: updates[i].Price})
		}
		err := s.catalog.SetVariantPrices(ctx, productID, prices)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		for _, i := range idx {
			items[i] = itemResult(items[i].Key, err)
		}
		if err != nil {
			s.logger.Warn("Price update failed", zap.String("product_id", productID), zap.Error(err))
		}
	}

	return s.finish("prices", items), nil
}

// UpdateCosts sets unit costs, one mutation per item
func (s *Service) UpdateCosts(ctx context.Context, updates []CostUpdate) (*BatchResult, error) {
	items := make([]ItemResult, 0, len(updates))
	for _, u := range updates {
		if !u.Cost.IsPositive() {
			items = append(items, ItemResult{Key: u.InventoryItemID, Error: fmt.Sprintf("cost must be positive, got %s", u.Cost)})
			continue
		}
		err := s.catalog.SetVariantCost(ctx, u.InventoryItemID, u.Cost)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			s.logger.Warn("Cost update failed", zap.String("inventory_item_id", u.InventoryItemID), zap.Error(err))
		}
		items = append(items, itemResult(u.InventoryItemID, err))
	}
	return s.finish("costs", items), nil
}

// AdjustQuantities adds received units. Valid changes are sent in a single
// mutation, which the store applies atomically.
func (s *Service) AdjustQuantities(ctx context.Context, updates []QuantityUpdate) (*BatchResult, error) {
	items := make([]ItemResult, len(updates))
	var changes []ecommerce.QuantityChange
	var pending []int

	for i, u := range updates {
		items[i].Key = u.InventoryItemID
		if u.Delta == 0 {
			items[i].Error = "delta must not be zero"
			continue
		}
		changes = append(changes, ecommerce.QuantityChange{InventoryItemID: u.InventoryItemID, Delta: u.Delta})
		pending = append(pending, i)
	}

	if len(changes) > 0 {
		err := s.catalog.AdjustQuantities(ctx, changes, ecommerce.ShopifyAdjustReasonReceived, ecommerce.ShopifyQuantityAvailable)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			s.logger.Warn("Quantity adjustment failed", zap.Int("changes", len(changes)), zap.Error(err))
		}
		for _, i := range pending {
			items[i] = itemResult(items[i].Key, err)
		}
	}
	return s.finish("quantities", items), nil
}

// UpdateMetafields sets metafields. The store accepts them in fixed-size
// batches; every item of a failed batch reports that batch's error.
func (s *Service) UpdateMetafields(ctx context.Context, updates []MetafieldUpdate) (*BatchResult, error) {
	items := make([]ItemResult, len(updates))
	inputs := make([]ecommerce.MetafieldInput, len(updates))
	for i, u := range updates {
		items[i].Key = fmt.Sprintf("%s/%s.%s", u.OwnerID, u.Namespace, u.Key)
		inputs[i] = ecommerce.MetafieldInput{
			OwnerID:       u.OwnerID,
			Namespace:     u.Namespace,
			Key:           u.Key,
			Type:          u.Type,
			Value:         u.Value,
			CompareDigest: u.CompareDigest,
		}
	}
	if len(inputs) == 0 {
		return s.finish("metafields", items), nil
	}

	batches, err := s.catalog.SetMetafields(ctx, inputs)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		for i := range items {
			items[i] = itemResult(items[i].Key, err)
		}
		return s.finish("metafields", items), nil
	}
	for _, b := range batches {
		for i := b.Start; i < b.End && i < len(items); i++ {
			items[i] = itemResult(items[i].Key, b.Err)
		}
	}
	return s.finish("metafields", items), nil
}

func (s *Service) finish(action string, items []ItemResult) *BatchResult {
	res := newBatchResult(items)
	s.logger.Info("Batch action finished",
		zap.String("action", action),
		zap.String("status", string(res.Status)),
		zap.Int("total", res.Total),
		zap.Int("failed", res.Failed),
	)
	return res
}

// itemResult turns a per-item error into its report; user errors are kept
// field by field for display
func itemResult(key string, err error) ItemResult {
	if err == nil {
		return ItemResult{Key: key, Success: true}
	}
	res := ItemResult{Key: key, Error: err.Error()}
	var ue *integration.UserErrorsError
	if errors.As(err, &ue) {
		res.UserErrors = ue.Errors
	}
	return res
}
