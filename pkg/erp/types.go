package erp

// InvoiceHeader is the supplier/invoice identity extracted from an
// uploaded invoice. All fields are provisional OCR output.
type InvoiceHeader struct {
	SupplierName  string `json:"supplier_name"`
	InvoiceNumber string `json:"invoice_number"`
	InvoiceDate   string `json:"invoice_date"`
}

// ExtractedLineItem is one raw row from invoice extraction. Values are
// error-prone and must be treated as user-editable downstream.
type ExtractedLineItem struct {
	ItemName  string  `json:"item_name"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
	GSTRate   string  `json:"gst_rate"`
}

// ExtractedInvoice is the full extraction result. Immutable once
// produced; it only seeds a staging session.
type ExtractedInvoice struct {
	Header    InvoiceHeader       `json:"header"`
	LineItems []ExtractedLineItem `json:"line_items"`
}

// StockInLine is one confirmed row submitted back to the backend.
type StockInLine struct {
	ItemName  string  `json:"item_name"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
	GSTRate   string  `json:"gst_rate"`
}

// StockInPayload is the single atomic stock-in transaction.
type StockInPayload struct {
	Header    InvoiceHeader `json:"header"`
	LineItems []StockInLine `json:"line_items"`
}

// StockInAck acknowledges a created stock entry.
type StockInAck struct {
	Message   string `json:"message"`
	EntryName string `json:"entry_name"`
	EntryURL  string `json:"entry_url,omitempty"`
}

// ScannedItem is the result of a barcode lookup. StockQty is a
// snapshot at scan time, not a live value.
type ScannedItem struct {
	ItemCode     string  `json:"item_code"`
	ItemName     string  `json:"item_name"`
	StandardRate float64 `json:"standard_rate"`
	StockQty     float64 `json:"stock_qty"`
	Barcode      string  `json:"barcode"`
	Image        string  `json:"image,omitempty"`
}

// SaleItem is one cart line submitted at checkout.
type SaleItem struct {
	ItemCode string  `json:"item_code"`
	ItemName string  `json:"item_name"`
	Qty      float64 `json:"qty"`
	Rate     float64 `json:"rate"`
}

// SalePayload is the single atomic stock-out transaction.
type SalePayload struct {
	Items         []SaleItem `json:"items"`
	Customer      string     `json:"customer,omitempty"`
	CreateInvoice bool       `json:"create_invoice"`
}

// SaleAck acknowledges a processed sale.
type SaleAck struct {
	Message        string  `json:"message"`
	StockEntryName string  `json:"stock_entry_name"`
	InvoiceName    *string `json:"invoice_name,omitempty"`
}

// SalesSearchParams filters the sales invoice search.
type SalesSearchParams struct {
	Period   string
	FromDate string
	ToDate   string
	Limit    int
}
