package stockin

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/storeopshq/storeops-backend/pkg/erp"
	pkgerrors "github.com/storeopshq/storeops-backend/pkg/errors"
)

// Field names an editable column of a staged row.
type Field string

const (
	FieldItemName  Field = "item_name"
	FieldQuantity  Field = "quantity"
	FieldUnit      Field = "unit"
	FieldUnitPrice Field = "unit_price"
)

// StagedLineItem is one editable row of an inbound staging table. The
// local ID is positional at initialization and stays stable for the
// life of the session, including across removals.
type StagedLineItem struct {
	LocalID   int             `json:"local_id"`
	ItemName  string          `json:"item_name"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	GSTRate   string          `json:"gst_rate"`
}

// LineTotal derives quantity times unit price at full precision.
func (li StagedLineItem) LineTotal() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

// Staging is one inbound stock transaction being corrected before
// commit. All mutating operations are copy-on-write: they return a new
// value and never alter a previously returned snapshot.
type Staging struct {
	Header erp.InvoiceHeader `json:"header"`
	Rows   []StagedLineItem  `json:"line_items"`
}

// NewStaging seeds a staging table from extractor output. Extracted
// numbers are provisional; negative values are clamped to zero the
// same way invalid edits are.
func NewStaging(extracted erp.ExtractedInvoice) Staging {
	rows := make([]StagedLineItem, 0, len(extracted.LineItems))
	for i, item := range extracted.LineItems {
		rows = append(rows, StagedLineItem{
			LocalID:   i,
			ItemName:  item.ItemName,
			Quantity:  clampAmount(decimal.NewFromFloat(item.Quantity)),
			Unit:      item.Unit,
			UnitPrice: clampAmount(decimal.NewFromFloat(item.UnitPrice)),
			GSTRate:   item.GSTRate,
		})
	}
	return Staging{Header: extracted.Header, Rows: rows}
}

// UpdateField replaces exactly one field on exactly one row. Numeric
// values that fail to parse as a non-negative number are coerced to
// zero rather than rejected.
func UpdateField(s Staging, localID int, field Field, value string) (Staging, error) {
	idx := indexOf(s.Rows, localID)
	if idx < 0 {
		return Staging{}, rowNotFound(localID)
	}

	row := s.Rows[idx]
	switch field {
	case FieldItemName:
		row.ItemName = value
	case FieldUnit:
		row.Unit = value
	case FieldQuantity:
		row.Quantity = parseAmount(value)
	case FieldUnitPrice:
		row.UnitPrice = parseAmount(value)
	default:
		return Staging{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown editable field: %s", field))
	}

	rows := make([]StagedLineItem, len(s.Rows))
	copy(rows, s.Rows)
	rows[idx] = row

	return Staging{Header: s.Header, Rows: rows}, nil
}

// RemoveRow drops one row. Remaining rows keep their local IDs.
func RemoveRow(s Staging, localID int) (Staging, error) {
	idx := indexOf(s.Rows, localID)
	if idx < 0 {
		return Staging{}, rowNotFound(localID)
	}

	rows := make([]StagedLineItem, 0, len(s.Rows)-1)
	rows = append(rows, s.Rows[:idx]...)
	rows = append(rows, s.Rows[idx+1:]...)

	return Staging{Header: s.Header, Rows: rows}, nil
}

// Payload converts the staged rows into the upstream confirm request.
func (s Staging) Payload() erp.StockInPayload {
	lines := make([]erp.StockInLine, 0, len(s.Rows))
	for _, row := range s.Rows {
		lines = append(lines, erp.StockInLine{
			ItemName:  row.ItemName,
			Quantity:  row.Quantity.InexactFloat64(),
			Unit:      row.Unit,
			UnitPrice: row.UnitPrice.InexactFloat64(),
			Total:     row.LineTotal().InexactFloat64(),
			GSTRate:   row.GSTRate,
		})
	}
	return erp.StockInPayload{Header: s.Header, LineItems: lines}
}

func indexOf(rows []StagedLineItem, localID int) int {
	for i, row := range rows {
		if row.LocalID == localID {
			return i
		}
	}
	return -1
}

func rowNotFound(localID int) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no staged row with id %d", localID))
}

func parseAmount(value string) decimal.Decimal {
	parsed, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero
	}
	return clampAmount(parsed)
}

func clampAmount(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
