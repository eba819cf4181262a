package ecommerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nemean-dev/cdl-admin/internal/domain/integration"
)

// ShopifyMetafieldBatchSize is the most metafields metafieldsSet accepts per call
const ShopifyMetafieldBatchSize = 25

// Default inventory adjustment reason and quantity name
const (
	ShopifyAdjustReasonReceived = "received"
	ShopifyQuantityAvailable    = "available"
)

// Errors for catalog operations
var (
	ErrShopifyEmptyVariantList = errors.New("shopify: at least one variant is required")
	ErrShopifyMissingID        = errors.New("shopify: id is required")
	ErrShopifyMissingLocation  = errors.New("shopify: location id is required for quantity adjustments")
)

// ShopifyCatalog performs the dashboard's product mutations and lookups
type ShopifyCatalog struct {
	executor   integration.QueryExecutor
	locationID string
	logger     *zap.Logger
}

// NewShopifyCatalog creates a catalog adapter. locationID is stamped on every
// quantity change.
func NewShopifyCatalog(executor integration.QueryExecutor, locationID string, logger *zap.Logger) *ShopifyCatalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShopifyCatalog{
		executor:   executor,
		locationID: locationID,
		logger:     logger,
	}
}

// FindVariantsBySKU returns up to three variants whose SKU matches
func (c *ShopifyCatalog) FindVariantsBySKU(ctx context.Context, sku string) ([]VariantRef, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, fmt.Errorf("%w: sku", ErrShopifyMissingID)
	}

	resp, err := c.executor.Execute(ctx, integration.Request{
		Query:     shopifyVariantsBySKUQuery,
		Variables: map[string]any{"query": "sku:" + quoteSearchValue(sku)},
	})
	if err != nil {
		return nil, err
	}

	var payload shopifyVariantsPayload
	if err := resp.Decode(&payload); err != nil {
		return nil, err
	}

	refs := make([]VariantRef, 0, len(payload.ProductVariants.Nodes))
	for _, node := range payload.ProductVariants.Nodes {
		refs = append(refs, node.toVariantRef())
	}
	return refs, nil
}

// SetVariantCost sets the unit cost of an inventory item, in the store currency
func (c *ShopifyCatalog) SetVariantCost(ctx context.Context, inventoryItemID string, cost decimal.Decimal) error {
	if inventoryItemID == "" {
		return fmt.Errorf("%w: inventory item", ErrShopifyMissingID)
	}

	resp, err := c.executor.Execute(ctx, integration.Request{
		Query: shopifySetVariantCostMutation,
		Variables: map[string]any{
			"id":    inventoryItemID,
			"input": map[string]any{"cost": cost},
		},
	})
	if err != nil {
		return err
	}
	return c.checkUserErrors(resp, shopifyFieldInventoryItemUpdate)
}

// SetVariantPrices sets prices for variants of one product
func (c *ShopifyCatalog) SetVariantPrices(ctx context.Context, productID string, prices []VariantPrice) error {
	if productID == "" {
		return fmt.Errorf("%w: product", ErrShopifyMissingID)
	}
	if len(prices) == 0 {
		return ErrShopifyEmptyVariantList
	}
	for _, p := range prices {
		if p.VariantID == "" {
			return fmt.Errorf("%w: variant", ErrShopifyMissingID)
		}
	}

	resp, err := c.executor.Execute(ctx, integration.Request{
		Query: shopifySetVariantPricesMutation,
		Variables: map[string]any{
			"productId": productID,
			"variants":  prices,
		},
	})
	if err != nil {
		return err
	}
	return c.checkUserErrors(resp, shopifyFieldVariantsBulkUpdate)
}

// AdjustQuantities applies quantity deltas at the configured location.
// Empty reason and name default to "received" and "available".
func (c *ShopifyCatalog) AdjustQuantities(ctx context.Context, changes []QuantityChange, reason, name string) error {
	if len(changes) == 0 {
		return nil
	}
	if c.locationID == "" {
		return ErrShopifyMissingLocation
	}
	if reason == "" {
		reason = ShopifyAdjustReasonReceived
	}
	if name == "" {
		name = ShopifyQuantityAvailable
	}

	stamped := make([]map[string]any, 0, len(changes))
	for _, ch := range changes {
		if ch.InventoryItemID == "" {
			return fmt.Errorf("%w: inventory item", ErrShopifyMissingID)
		}
		stamped = append(stamped, map[string]any{
			"inventoryItemId": ch.InventoryItemID,
			"delta":           ch.Delta,
			"locationId":      c.locationID,
		})
	}

	resp, err := c.executor.Execute(ctx, integration.Request{
		Query: shopifyAdjustQuantitiesMutation,
		Variables: map[string]any{
			"input": map[string]any{
				"reason":  reason,
				"name":    name,
				"changes": stamped,
			},
		},
	})
	if err != nil {
		return err
	}
	if err := c.checkUserErrors(resp, shopifyFieldAdjustQuantities); err != nil {
		return err
	}

	c.logger.Info("Inventory adjusted", zap.Int("changes", len(changes)), zap.String("reason", reason))
	return nil
}

// MetafieldBatchResult reports one metafieldsSet call
type MetafieldBatchResult struct {
	// Start and End are the half-open index range of the batch in the input
	Start int
	End   int
	Err   error
}

// SetMetafields sets metafields in batches of ShopifyMetafieldBatchSize. A
// failing batch does not stop later batches; each batch reports its own result.
func (c *ShopifyCatalog) SetMetafields(ctx context.Context, metafields []MetafieldInput) ([]MetafieldBatchResult, error) {
	encoded := make([]map[string]any, 0, len(metafields))
	for i, m := range metafields {
		if m.OwnerID == "" || m.Namespace == "" || m.Key == "" {
			return nil, fmt.Errorf("%w: metafield #%d needs owner, namespace and key", ErrShopifyMissingID, i+1)
		}
		value, err := json.Marshal(m.Value)
		if err != nil {
			return nil, fmt.Errorf("shopify: failed to encode metafield #%d value: %w", i+1, err)
		}
		entry := map[string]any{
			"ownerId":   m.OwnerID,
			"namespace": m.Namespace,
			"key":       m.Key,
			"type":      m.Type,
			"value":     string(value),
		}
		if m.CompareDigest != nil {
			entry["compareDigest"] = *m.CompareDigest
		}
		encoded = append(encoded, entry)
	}

	results := make([]MetafieldBatchResult, 0, (len(encoded)+ShopifyMetafieldBatchSize-1)/ShopifyMetafieldBatchSize)
	for start := 0; start < len(encoded); start += ShopifyMetafieldBatchSize {
		end := min(start+ShopifyMetafieldBatchSize, len(encoded))
		result := MetafieldBatchResult{Start: start, End: end}

		resp, err := c.executor.Execute(ctx, integration.Request{
			Query:     shopifySetMetafieldsMutation,
			Variables: map[string]any{"metafields": encoded[start:end]},
		})
		if err == nil {
			err = c.checkUserErrors(resp, shopifyFieldMetafieldsSet)
		}
		if err != nil {
			c.logger.Error("Metafield batch failed",
				zap.Int("from", start+1),
				zap.Int("to", end),
				zap.Error(err),
			)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return results, ctxErr
			}
			result.Err = err
		} else {
			c.logger.Info("Metafield batch updated",
				zap.Int("batch", start/ShopifyMetafieldBatchSize+1),
				zap.Int("count", end-start),
			)
		}
		results = append(results, result)
	}
	return results, nil
}

func (c *ShopifyCatalog) checkUserErrors(resp *integration.Response, mutation string) error {
	err := CheckUserErrors(resp, mutation)
	if err != nil {
		var ue *integration.UserErrorsError
		if errors.As(err, &ue) {
			c.logger.Warn("Mutation returned user errors",
				zap.String("mutation", mutation),
				zap.Any("user_errors", ue.Errors),
			)
		} else {
			c.logger.Error("Mutation response is missing userErrors", zap.String("mutation", mutation), zap.Error(err))
		}
	}
	return err
}

// quoteSearchValue quotes a value for the Shopify search syntax
func quoteSearchValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}
