package dto

import (
	"time"

	"github.com/nemean-dev/cdl-admin/internal/domain/catalog"
)

// VendorResponse is the API view of a canonical vendor
type VendorResponse struct {
	ID              string    `json:"id"`
	DisplayName     string    `json:"display_name"`
	NormalizedKey   string    `json:"normalized_key"`
	TotalProducts   int       `json:"total_products"`
	TotalVariants   int       `json:"total_variants"`
	TownID          *string   `json:"town_id,omitempty"`
	SourceNames     []string  `json:"source_names"`
	ObservedTownIDs []string  `json:"observed_town_ids"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewVendorResponse maps a vendor to its API view
func NewVendorResponse(v *catalog.Vendor) VendorResponse {
	resp := VendorResponse{
		ID:              v.ID.String(),
		DisplayName:     v.DisplayName,
		NormalizedKey:   v.NormalizedKey,
		TotalProducts:   v.TotalProducts,
		TotalVariants:   v.TotalVariants,
		SourceNames:     append([]string{}, v.SourceNames...),
		ObservedTownIDs: make([]string, 0, len(v.ObservedTownIDs)),
		UpdatedAt:       v.UpdatedAt,
	}
	if v.TownID != nil {
		id := v.TownID.String()
		resp.TownID = &id
	}
	for _, id := range v.ObservedTownIDs {
		resp.ObservedTownIDs = append(resp.ObservedTownIDs, id.String())
	}
	return resp
}

// NewVendorResponses maps a page of vendors
func NewVendorResponses(vendors []catalog.Vendor) []VendorResponse {
	out := make([]VendorResponse, 0, len(vendors))
	for i := range vendors {
		out = append(out, NewVendorResponse(&vendors[i]))
	}
	return out
}
