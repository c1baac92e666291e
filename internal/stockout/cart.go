package stockout

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/storeopshq/storeops-backend/pkg/erp"
	pkgerrors "github.com/storeopshq/storeops-backend/pkg/errors"
)

// CartLine is one outbound staging line. Rate and item name are fixed
// at first scan for the life of the session; stock qty is a display
// snapshot only.
type CartLine struct {
	ItemCode string          `json:"item_code"`
	ItemName string          `json:"item_name"`
	Qty      int64           `json:"qty"`
	Rate     decimal.Decimal `json:"rate"`
	StockQty decimal.Decimal `json:"stock_qty"`
	Barcode  string          `json:"barcode"`
}

// Subtotal derives qty times rate at full precision.
func (l CartLine) Subtotal() decimal.Decimal {
	return decimal.NewFromInt(l.Qty).Mul(l.Rate)
}

// Cart is an ordered outbound staging collection holding at most one
// line per item code. Mutations are copy-on-write.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// AddScan merges a resolved scan into the cart. A line that already
// exists for the item code has its qty incremented by one; its rate
// and name keep their first-scan values. A new item appends a line
// with qty 1 at the scanned standard rate.
func AddScan(c Cart, item erp.ScannedItem) Cart {
	idx := indexOf(c.Lines, item.ItemCode)

	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)

	if idx >= 0 {
		lines[idx].Qty++
		return Cart{Lines: lines}
	}

	lines = append(lines, CartLine{
		ItemCode: item.ItemCode,
		ItemName: item.ItemName,
		Qty:      1,
		Rate:     decimal.NewFromFloat(item.StandardRate),
		StockQty: decimal.NewFromFloat(item.StockQty),
		Barcode:  item.Barcode,
	})
	return Cart{Lines: lines}
}

// SetQty replaces a line's quantity. A qty at or below zero removes
// the line outright, whether or not it exists.
func SetQty(c Cart, itemCode string, qty int64) (Cart, error) {
	if qty <= 0 {
		return RemoveLine(c, itemCode), nil
	}

	idx := indexOf(c.Lines, itemCode)
	if idx < 0 {
		return Cart{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no cart line for item: %s", itemCode))
	}

	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	lines[idx].Qty = qty

	return Cart{Lines: lines}, nil
}

// RemoveLine drops a line unconditionally. Removing an absent item
// code is a no-op.
func RemoveLine(c Cart, itemCode string) Cart {
	idx := indexOf(c.Lines, itemCode)
	if idx < 0 {
		lines := make([]CartLine, len(c.Lines))
		copy(lines, c.Lines)
		return Cart{Lines: lines}
	}

	lines := make([]CartLine, 0, len(c.Lines)-1)
	lines = append(lines, c.Lines[:idx]...)
	lines = append(lines, c.Lines[idx+1:]...)
	return Cart{Lines: lines}
}

// Total recomputes the cart total from scratch on every read.
func Total(c Cart) decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Payload converts the cart into the upstream sale request. Invoice
// creation always accompanies the stock deduction.
func (c Cart) Payload() erp.SalePayload {
	items := make([]erp.SaleItem, 0, len(c.Lines))
	for _, line := range c.Lines {
		items = append(items, erp.SaleItem{
			ItemCode: line.ItemCode,
			ItemName: line.ItemName,
			Qty:      float64(line.Qty),
			Rate:     line.Rate.InexactFloat64(),
		})
	}
	return erp.SalePayload{Items: items, CreateInvoice: true}
}

func indexOf(lines []CartLine, itemCode string) int {
	for i, line := range lines {
		if line.ItemCode == itemCode {
			return i
		}
	}
	return -1
}
