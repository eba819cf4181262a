package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nemean-dev/cdl-admin/internal/domain/catalog"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/ecommerce"
)

const purchaseDateLayout = "2006-01-02"

var (
	maxIntakePrice = decimal.NewFromInt(7000)
	maxIntakeCost  = decimal.NewFromInt(20000)

	// ErrNoSheetSource is returned when intake rows are loaded without storage configured
	ErrNoSheetSource = errors.New("inventory: no sheet source configured")

	amountCleaner = strings.NewReplacer("$", "", ",", "", " ", "")
)

// costHistoryEntry is one purchase appended to a variant's cost history
type costHistoryEntry struct {
	Cost         any    `json:"costo"`
	Quantity     *int   `json:"cantidad"`
	PurchaseDate string `json:"fecha de compra"`
}

// LoadIntakeRows reads intake rows from a CSV stored under key
func (s *Service) LoadIntakeRows(ctx context.Context, key string) ([]IntakeRow, error) {
	if s.sheets == nil {
		return nil, ErrNoSheetSource
	}
	records, err := s.sheets.DownloadCSV(ctx, key, ColumnSKU)
	if err != nil {
		return nil, fmt.Errorf("failed to load intake sheet %q: %w", key, err)
	}

	rows := make([]IntakeRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, IntakeRow{
			Row:          r.Line,
			SKU:          r.Get(ColumnSKU),
			Quantity:     r.Get(ColumnQuantity),
			NewPrice:     r.Get(ColumnNewPrice),
			NewCost:      r.Get(ColumnNewCost),
			PurchaseDate: r.Get(ColumnPurchaseDate),
		})
	}
	return rows, nil
}

// ValidateIntake checks every row and joins it with the store variant of its
// SKU. Rows without a SKU are ignored. Messages are shown to staff as is.
func (s *Service) ValidateIntake(ctx context.Context, rows []IntakeRow) (*IntakeValidation, error) {
	seen := make(map[string]int, len(rows))
	for _, r := range rows {
		if sku := strings.TrimSpace(r.SKU); sku != "" {
			seen[sku]++
		}
	}

	res := &IntakeValidation{Lines: make([]IntakeLine, 0, len(rows))}
	for i, r := range rows {
		sku := strings.TrimSpace(r.SKU)
		if sku == "" {
			continue
		}
		line := IntakeLine{Row: r.Row, SKU: sku}
		if line.Row == 0 {
			// Header is row 1
			line.Row = i + 2
		}

		if seen[sku] > 1 {
			line.Error = fmt.Sprintf("La clave \"%s\" aparece más de una vez en la hoja (renglón %d).", sku, line.Row)
		} else {
			msg, err := s.validateRow(ctx, &line, r)
			if err != nil {
				return nil, err
			}
			line.Error = msg
		}

		if !line.IsValid() {
			res.Errors++
		}
		res.Lines = append(res.Lines, line)
	}

	s.logger.Info("Intake validated", zap.Int("rows", len(res.Lines)), zap.Int("errors", res.Errors))
	return res, nil
}

// validateRow fills line and returns the user-facing error, if any. Only a
// canceled context is returned as an error.
func (s *Service) validateRow(ctx context.Context, line *IntakeLine, r IntakeRow) (string, error) {
	variants, err := s.catalog.FindVariantsBySKU(ctx, line.SKU)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		s.logger.Warn("SKU lookup failed", zap.String("sku", line.SKU), zap.Error(err))
		return fmt.Sprintf("No fue posible consultar la clave \"%s\" en la tienda (renglón %d).", line.SKU, line.Row), nil
	}
	switch {
	case len(variants) >= 2:
		return fmt.Sprintf("Hay más de un producto con clave \"%s\".", line.SKU), nil
	case len(variants) == 0:
		return fmt.Sprintf("No se encontró ningún producto con clave \"%s\".", line.SKU), nil
	}

	price, ok := parseAmount(r.NewPrice, maxIntakePrice)
	if !ok {
		return fmt.Sprintf("No es válido el precio de venta ingresado en este renglón (renglón %d).", line.Row), nil
	}
	cost, ok := parseAmount(r.NewCost, maxIntakeCost)
	if !ok {
		return fmt.Sprintf("No es válido el precio de compra ingresado en el renglón %d.", line.Row), nil
	}
	qty, ok := parseQuantity(r.Quantity)
	if !ok {
		return fmt.Sprintf("No es válida la cantidad ingresada en el renglón %d.", line.Row), nil
	}
	date, ok := s.purchaseDate(r.PurchaseDate)
	if !ok {
		return fmt.Sprintf("No es válida la fecha de compra ingresada en el renglón %d (formato AAAA-MM-DD).", line.Row), nil
	}

	v := variants[0]
	line.Quantity = qty
	line.NewPrice = price
	line.NewCost = cost
	line.PurchaseDate = date
	line.DisplayName = v.DisplayName
	line.Vendor = v.Vendor
	line.VariantID = v.VariantID
	line.ProductID = v.ProductID
	line.InventoryItemID = v.InventoryItemID
	line.costHistory = v.CostHistory
	line.costHistoryDigest = v.CostHistoryDigest
	if price != nil {
		d := price.Sub(v.Price)
		line.PriceDelta = &d
	}
	if cost != nil && v.UnitCost != nil {
		d := cost.Sub(*v.UnitCost)
		line.CostDelta = &d
	}
	return "", nil
}

// ApplyIntake validates rows, then applies every valid row: price, cost,
// quantity and a cost history entry. Invalid rows are reported with their
// validation message and left untouched.
func (s *Service) ApplyIntake(ctx context.Context, rows []IntakeRow) (*IntakeValidation, *BatchResult, error) {
	validation, err := s.ValidateIntake(ctx, rows)
	if err != nil {
		return nil, nil, err
	}

	items := make([]ItemResult, 0, len(validation.Lines))
	for i := range validation.Lines {
		line := &validation.Lines[i]
		if !line.IsValid() {
			items = append(items, ItemResult{Key: line.SKU, Error: line.Error})
			continue
		}
		err := s.applyLine(ctx, line)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		if err != nil {
			s.logger.Warn("Intake row failed", zap.String("sku", line.SKU), zap.Int("row", line.Row), zap.Error(err))
		}
		items = append(items, itemResult(line.SKU, err))
	}
	return validation, s.finish("intake", items), nil
}

func (s *Service) applyLine(ctx context.Context, line *IntakeLine) error {
	if line.NewPrice != nil {
		prices := []ecommerce.VariantPrice{{VariantID: line.VariantID, Price: *line.NewPrice}}
		if err := s.catalog.SetVariantPrices(ctx, line.ProductID, prices); err != nil {
			return fmt.Errorf("failed to set price: %w", err)
		}
	}
	if line.NewCost != nil {
		if err := s.catalog.SetVariantCost(ctx, line.InventoryItemID, *line.NewCost); err != nil {
			return fmt.Errorf("failed to set cost: %w", err)
		}
	}
	if line.Quantity != nil && *line.Quantity != 0 {
		changes := []ecommerce.QuantityChange{{InventoryItemID: line.InventoryItemID, Delta: *line.Quantity}}
		err := s.catalog.AdjustQuantities(ctx, changes, ecommerce.ShopifyAdjustReasonReceived, ecommerce.ShopifyQuantityAvailable)
		if err != nil {
			return fmt.Errorf("failed to adjust quantity: %w", err)
		}
	}

	history, err := appendCostHistory(line)
	if err != nil {
		return err
	}
	batches, err := s.catalog.SetMetafields(ctx, []ecommerce.MetafieldInput{{
		OwnerID:       line.VariantID,
		Namespace:     catalog.MetafieldNamespaceCustom,
		Key:           catalog.MetafieldKeyCostHistory,
		Type:          "json",
		Value:         history,
		CompareDigest: line.costHistoryDigest,
	}})
	if err == nil && len(batches) > 0 {
		err = batches[0].Err
	}
	if err != nil {
		return fmt.Errorf("failed to record cost history: %w", err)
	}
	return nil
}

// appendCostHistory returns the variant's history list with this purchase added
func appendCostHistory(line *IntakeLine) ([]json.RawMessage, error) {
	history := make([]json.RawMessage, 0, 1)
	if raw := strings.TrimSpace(string(line.costHistory)); raw != "" && raw != "null" {
		if err := json.Unmarshal(line.costHistory, &history); err != nil {
			return nil, fmt.Errorf("existing cost history of %s is not a JSON list: %w", line.SKU, err)
		}
	}

	entry := costHistoryEntry{Quantity: line.Quantity, PurchaseDate: line.PurchaseDate}
	if line.NewCost != nil {
		entry.Cost = json.Number(line.NewCost.String())
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
	return append(history, data), nil
}

// parseAmount parses an optional amount that must satisfy 0 < v <= limit.
// An empty cell yields nil.
func parseAmount(raw string, limit decimal.Decimal) (*decimal.Decimal, bool) {
	cleaned := amountCleaner.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return nil, true
	}
	v, err := decimal.NewFromString(cleaned)
	if err != nil || !v.IsPositive() || v.GreaterThan(limit) {
		return nil, false
	}
	return &v, true
}

// parseQuantity parses an optional whole number of units
func parseQuantity(raw string) (*int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	v, err := decimal.NewFromString(raw)
	if err != nil || !v.Equal(v.Truncate(0)) || v.IsNegative() {
		return nil, false
	}
	n := int(v.IntPart())
	return &n, true
}

// purchaseDate validates a date cell, defaulting to today in the store's zone
func (s *Service) purchaseDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.now().In(storeZone).Format(purchaseDateLayout), true
	}
	t, err := time.Parse(purchaseDateLayout, raw)
	if err != nil {
		return "", false
	}
	return t.Format(purchaseDateLayout), true
}
