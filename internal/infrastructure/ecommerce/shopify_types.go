package ecommerce

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/nemean-dev/cdl-admin/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Inputs
// ---------------------------------------------------------------------------

// VariantPrice is one variant price change
type VariantPrice struct {
	VariantID string          `json:"id"`
	Price     decimal.Decimal `json:"price"`
}

// QuantityChange adjusts the quantity of one inventory item
type QuantityChange struct {
	InventoryItemID string `json:"inventoryItemId"`
	Delta           int    `json:"delta"`
}

// MetafieldInput is one metafield to set. Value is JSON-encoded before sending.
type MetafieldInput struct {
	OwnerID       string  `json:"ownerId"`
	Namespace     string  `json:"namespace"`
	Key           string  `json:"key"`
	Type          string  `json:"type"`
	Value         any     `json:"-"`
	CompareDigest *string `json:"compareDigest,omitempty"`
}

// ---------------------------------------------------------------------------
// Read models
// ---------------------------------------------------------------------------

// VariantRef is a product variant matched by SKU
type VariantRef struct {
	VariantID         string           `json:"variant_id"`
	ProductID         string           `json:"product_id"`
	SKU               string           `json:"sku"`
	DisplayName       string           `json:"display_name"`
	Vendor            string           `json:"vendor"`
	Price             decimal.Decimal  `json:"price"`
	UnitCost          *decimal.Decimal `json:"unit_cost,omitempty"`
	InventoryItemID   string           `json:"inventory_item_id"`
	CostHistory       json.RawMessage  `json:"cost_history,omitempty"`
	CostHistoryDigest *string          `json:"cost_history_digest,omitempty"`
}

// ---------------------------------------------------------------------------
// Response payloads
// ---------------------------------------------------------------------------

type shopifyBulkRunPayload struct {
	BulkOperationRunQuery struct {
		BulkOperation *struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"bulkOperation"`
	} `json:"bulkOperationRunQuery"`
}

type shopifyBulkStatusPayload struct {
	Node *integration.BulkOperationReport `json:"node"`
}

type shopifyVariantNode struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Price       decimal.Decimal `json:"price"`
	DisplayName string          `json:"displayName"`
	Product     struct {
		ID     string `json:"id"`
		Vendor string `json:"vendor"`
	} `json:"product"`
	InventoryItem struct {
		ID       string `json:"id"`
		UnitCost *struct {
			Amount decimal.Decimal `json:"amount"`
		} `json:"unitCost"`
	} `json:"inventoryItem"`
	Metafield *struct {
		JSONValue     json.RawMessage `json:"jsonValue"`
		CompareDigest string          `json:"compareDigest"`
	} `json:"metafield"`
}

type shopifyVariantsPayload struct {
	ProductVariants struct {
		Nodes []shopifyVariantNode `json:"nodes"`
	} `json:"productVariants"`
}

func (n shopifyVariantNode) toVariantRef() VariantRef {
	ref := VariantRef{
		VariantID:       n.ID,
		ProductID:       n.Product.ID,
		SKU:             n.SKU,
		DisplayName:     n.DisplayName,
		Vendor:          n.Product.Vendor,
		Price:           n.Price,
		InventoryItemID: n.InventoryItem.ID,
	}
	if n.InventoryItem.UnitCost != nil {
		cost := n.InventoryItem.UnitCost.Amount
		ref.UnitCost = &cost
	}
	if n.Metafield != nil {
		ref.CostHistory = n.Metafield.JSONValue
		digest := n.Metafield.CompareDigest
		ref.CostHistoryDigest = &digest
	}
	return ref
}
