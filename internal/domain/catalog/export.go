package catalog

import "encoding/json"

// Metafield namespace and keys read from exported products
const (
	MetafieldNamespaceCustom = "custom"
	MetafieldKeyTown         = "pueblo"
	MetafieldKeyState        = "estado"
	MetafieldKeyCostHistory  = "cost_history"
)

// ProductMetafield is a namespace/key/value triple attached to an exported product
type ProductMetafield struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
}

// ExportedProduct is one product of a bulk export with its children folded in
type ExportedProduct struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	Vendor        string             `json:"vendor"`
	TotalVariants int                `json:"total_variants"`
	Metafields    []ProductMetafield `json:"metafields"`
}

// Metafield returns the value of namespace.key if present
func (p *ExportedProduct) Metafield(namespace, key string) (string, bool) {
	for _, m := range p.Metafields {
		if m.Namespace == namespace && m.Key == key {
			return m.Value, true
		}
	}
	return "", false
}

// Location returns the product's (custom.pueblo, custom.estado) pair
func (p *ExportedProduct) Location() Location {
	town, _ := p.Metafield(MetafieldNamespaceCustom, MetafieldKeyTown)
	state, _ := p.Metafield(MetafieldNamespaceCustom, MetafieldKeyState)
	return NewLocation(town, state)
}

// ExportedVariant is one variant of a bulk export
type ExportedVariant struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	ProductID   string          `json:"product_id"`
	CostHistory json.RawMessage `json:"cost_history,omitempty"`
}
