package dto

import (
	"github.com/nemean-dev/cdl-admin/internal/application/inventory"
)

// MaxBatchItems bounds one batch request
const MaxBatchItems = 250

// PriceBatchRequest sets prices of many variants
type PriceBatchRequest struct {
	Items []inventory.PriceUpdate `json:"items" binding:"required,min=1,max=250,dive"`
}

// CostBatchRequest sets unit costs of many inventory items
type CostBatchRequest struct {
	Items []inventory.CostUpdate `json:"items" binding:"required,min=1,max=250,dive"`
}

// QuantityBatchRequest adds received units to many inventory items
type QuantityBatchRequest struct {
	Items []inventory.QuantityUpdate `json:"items" binding:"required,min=1,max=250,dive"`
}

// MetafieldBatchRequest sets many metafields
type MetafieldBatchRequest struct {
	Items []inventory.MetafieldUpdate `json:"items" binding:"required,min=1,max=250,dive"`
}

// IntakeRequest carries intake rows inline or names a stored CSV sheet
type IntakeRequest struct {
	Rows       []inventory.IntakeRow `json:"rows" binding:"required_without=StorageKey,max=1000"`
	StorageKey string                `json:"storage_key" binding:"required_without=Rows"`
}

// IntakeResponse reports validation and, for apply, the per-row outcome
type IntakeResponse struct {
	Validation *inventory.IntakeValidation `json:"validation"`
	Result     *inventory.BatchResult      `json:"result,omitempty"`
}
