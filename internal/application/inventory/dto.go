package inventory

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/nemean-dev/cdl-admin/internal/domain/integration"
)

// BatchStatus summarizes the outcome of a batch action
type BatchStatus string

const (
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusIncomplete BatchStatus = "incomplete"
	BatchStatusFailed     BatchStatus = "failed"
)

// ItemResult is the outcome of one item of a batch
type ItemResult struct {
	Key        string                  `json:"key"`
	Success    bool                    `json:"success"`
	Error      string                  `json:"error,omitempty"`
	UserErrors []integration.UserError `json:"user_errors,omitempty"`
}

// BatchResult reports every item of a batch action
type BatchResult struct {
	Status    BatchStatus  `json:"status"`
	Total     int          `json:"total"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Items     []ItemResult `json:"items"`
}

// newBatchResult counts items. A batch is failed only when every item
// failed; an empty batch is completed.
func newBatchResult(items []ItemResult) *BatchResult {
	res := &BatchResult{Total: len(items), Items: items}
	for _, it := range items {
		if it.Success {
			res.Succeeded++
		} else {
			res.Failed++
		}
	}
	switch {
	case res.Failed == 0:
		res.Status = BatchStatusCompleted
	case res.Succeeded == 0:
		res.Status = BatchStatusFailed
	default:
		res.Status = BatchStatusIncomplete
	}
	return res
}

// PriceUpdate sets the price of one variant
type PriceUpdate struct {
	ProductID string          `json:"product_id" binding:"required"`
	VariantID string          `json:"variant_id" binding:"required"`
	Price     decimal.Decimal `json:"price" swaggertype:"string" example:"450.00"`
}

// CostUpdate sets the unit cost of one inventory item
type CostUpdate struct {
	InventoryItemID string          `json:"inventory_item_id" binding:"required"`
	Cost            decimal.Decimal `json:"cost" swaggertype:"string" example:"200.00"`
}

// QuantityUpdate adds delta units to the available quantity of one inventory item
type QuantityUpdate struct {
	InventoryItemID string `json:"inventory_item_id" binding:"required"`
	Delta           int    `json:"delta" binding:"required"`
}

// MetafieldUpdate sets one metafield; Value is any JSON value
type MetafieldUpdate struct {
	OwnerID       string          `json:"owner_id" binding:"required"`
	Namespace     string          `json:"namespace" binding:"required"`
	Key           string          `json:"key" binding:"required"`
	Type          string          `json:"type" binding:"required"`
	Value         json.RawMessage `json:"value" binding:"required" swaggertype:"object"`
	CompareDigest *string         `json:"compare_digest,omitempty"`
}

// ---------------------------------------------------------------------------
// Intake
// ---------------------------------------------------------------------------

// Intake sheet columns
const (
	ColumnSKU          = "sku"
	ColumnQuantity     = "quantity"
	ColumnNewPrice     = "new_price"
	ColumnNewCost      = "new_cost"
	ColumnPurchaseDate = "purchase_date"
)

// IntakeRow is one row of the intake sheet, values as typed in the sheet
type IntakeRow struct {
	// Row is the sheet row number; derived from the position when zero
	Row          int    `json:"row,omitempty"`
	SKU          string `json:"sku"`
	Quantity     string `json:"quantity,omitempty"`
	NewPrice     string `json:"new_price,omitempty"`
	NewCost      string `json:"new_cost,omitempty"`
	PurchaseDate string `json:"purchase_date,omitempty"`
}

// IntakeLine is a validated intake row joined with the matching store variant
type IntakeLine struct {
	Row             int              `json:"row"`
	SKU             string           `json:"sku"`
	Quantity        *int             `json:"quantity,omitempty"`
	NewPrice        *decimal.Decimal `json:"new_price,omitempty" swaggertype:"string"`
	NewCost         *decimal.Decimal `json:"new_cost,omitempty" swaggertype:"string"`
	PurchaseDate    string           `json:"purchase_date,omitempty"`
	DisplayName     string           `json:"display_name,omitempty"`
	Vendor          string           `json:"vendor,omitempty"`
	PriceDelta      *decimal.Decimal `json:"price_delta,omitempty" swaggertype:"string"`
	CostDelta       *decimal.Decimal `json:"cost_delta,omitempty" swaggertype:"string"`
	VariantID       string           `json:"variant_id,omitempty"`
	ProductID       string           `json:"product_id,omitempty"`
	InventoryItemID string           `json:"inventory_item_id,omitempty"`
	Error           string           `json:"error,omitempty"`

	costHistory       json.RawMessage
	costHistoryDigest *string
}

// IsValid reports whether the line can be applied
func (l *IntakeLine) IsValid() bool {
	return l.Error == ""
}

// IntakeValidation is the result of validating an intake sheet
type IntakeValidation struct {
	Lines  []IntakeLine `json:"lines"`
	Errors int          `json:"errors"`
}

// IsValid reports whether every line is valid
func (v *IntakeValidation) IsValid() bool {
	return v.Errors == 0
}
