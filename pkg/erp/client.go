package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/storeopshq/storeops-backend/pkg/config"
	pkgerrors "github.com/storeopshq/storeops-backend/pkg/errors"
	"github.com/storeopshq/storeops-backend/pkg/metrics"
)

const (
	responseBodyReadLimit int64 = 64 * 1024

	// OfflineMessage is the fixed operator-facing text for an
	// unreachable inventory backend.
	OfflineMessage = "inventory backend is offline or unreachable"
)

// Client talks to the inventory backend that owns the stock ledger,
// item catalog, invoice extraction, and sales analytics. All mutating
// calls are single atomic transactions on the upstream side.
type Client struct {
	httpClient   *http.Client
	uploadClient *http.Client
	baseURL      string
	metrics      *metrics.StagingMetrics
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithUploadClient overrides the HTTP client used for invoice uploads,
// which carry a longer timeout than ordinary calls.
func WithUploadClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.uploadClient = client
		}
	}
}

// WithMetrics attaches upstream call instrumentation.
func WithMetrics(m *metrics.StagingMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds the inventory backend client from configuration.
func NewClient(cfg config.ERPConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "erp base URL is required")
	}

	client := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		uploadClient: &http.Client{Timeout: cfg.UploadTimeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// IngestInvoice submits an invoice file for OCR and extraction. The
// returned invoice is provisional extractor output; callers stage and
// correct it before confirming.
func (c *Client) IngestInvoice(ctx context.Context, filename, contentType string, file io.Reader) (_ *ExtractedInvoice, err error) {
	defer c.observe("ingest_invoice", time.Now())(&err)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filename))}
	header["Content-Type"] = []string{contentType}
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build invoice upload form")
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "copy invoice upload body")
	}
	if err := writer.Close(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finalize invoice upload form")
	}

	resp, err := c.do(ctx, c.uploadClient, http.MethodPost, "/stock-in/upload", writer.FormDataContentType(), &body)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var apiResp struct {
		Success bool              `json:"success"`
		Message string            `json:"message"`
		Data    *ExtractedInvoice `json:"data"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, responseBodyReadLimit)).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode invoice upload response")
	}

	if !apiResp.Success {
		msg := strings.TrimSpace(apiResp.Message)
		if msg == "" {
			msg = "invoice extraction failed"
		}
		return nil, pkgerrors.New(pkgerrors.CodeExtraction, msg)
	}
	if apiResp.Data == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "invoice upload response missing extraction data")
	}

	return apiResp.Data, nil
}

// ConfirmStockIn posts the corrected invoice rows as one Material
// Receipt stock entry.
func (c *Client) ConfirmStockIn(ctx context.Context, payload StockInPayload) (_ *StockInAck, err error) {
	defer c.observe("confirm_stock_in", time.Now())(&err)

	resp, err := c.doJSON(ctx, http.MethodPost, "/stock-in/confirm", payload)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var apiResp struct {
		Success   bool   `json:"success"`
		Message   string `json:"message"`
		EntryName string `json:"entry_name"`
		EntryURL  string `json:"entry_url"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, responseBodyReadLimit)).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode stock-in confirm response")
	}
	if !apiResp.Success {
		msg := strings.TrimSpace(apiResp.Message)
		if msg == "" {
			msg = "stock entry creation failed"
		}
		return nil, pkgerrors.New(pkgerrors.CodeDependency, msg)
	}

	return &StockInAck{
		Message:   apiResp.Message,
		EntryName: apiResp.EntryName,
		EntryURL:  apiResp.EntryURL,
	}, nil
}

// LookupBarcode resolves a barcode to an item snapshot. A backend that
// answers but knows no such barcode yields a not-found error.
func (c *Client) LookupBarcode(ctx context.Context, barcode string) (_ *ScannedItem, err error) {
	defer c.observe("lookup_barcode", time.Now())(&err)

	trimmed := strings.TrimSpace(barcode)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "barcode is required")
	}

	path := "/stock-out/lookup/" + url.PathEscape(trimmed)
	resp, err := c.do(ctx, c.httpClient, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var apiResp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		ScannedItem
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, responseBodyReadLimit)).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode barcode lookup response")
	}

	if !apiResp.Success {
		msg := strings.TrimSpace(apiResp.Message)
		if msg == "" {
			msg = fmt.Sprintf("no item found for barcode: %s", trimmed)
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msg)
	}

	item := apiResp.ScannedItem
	return &item, nil
}

// SubmitSale posts the cart as one Material Issue stock entry plus a
// sales invoice.
func (c *Client) SubmitSale(ctx context.Context, payload SalePayload) (_ *SaleAck, err error) {
	defer c.observe("submit_sale", time.Now())(&err)

	resp, err := c.doJSON(ctx, http.MethodPost, "/stock-out/sale", payload)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var apiResp struct {
		Success        bool    `json:"success"`
		Message        string  `json:"message"`
		StockEntryName string  `json:"stock_entry_name"`
		InvoiceName    *string `json:"invoice_name"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, responseBodyReadLimit)).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode sale response")
	}
	if !apiResp.Success {
		msg := strings.TrimSpace(apiResp.Message)
		if msg == "" {
			msg = "sale processing failed"
		}
		return nil, pkgerrors.New(pkgerrors.CodeDependency, msg)
	}

	return &SaleAck{
		Message:        apiResp.Message,
		StockEntryName: apiResp.StockEntryName,
		InvoiceName:    apiResp.InvoiceName,
	}, nil
}

// DashboardSummary fetches the inventory dashboard snapshot verbatim.
func (c *Client) DashboardSummary(ctx context.Context) (json.RawMessage, error) {
	return c.getRaw(ctx, "dashboard_summary", "/dashboard/summary", nil)
}

// ReorderAlerts fetches items below their reorder threshold.
func (c *Client) ReorderAlerts(ctx context.Context) (json.RawMessage, error) {
	return c.getRaw(ctx, "reorder_alerts", "/dashboard/reorder-alerts", nil)
}

// DeadStock fetches items with no movement within the given window.
func (c *Client) DeadStock(ctx context.Context, days int) (json.RawMessage, error) {
	query := url.Values{"days": []string{strconv.Itoa(days)}}
	return c.getRaw(ctx, "dead_stock", "/dashboard/dead-stock", query)
}

// DemandForecast fetches the per-item demand forecast.
func (c *Client) DemandForecast(ctx context.Context, itemCode string, periods int) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(itemCode)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item code is required")
	}
	query := url.Values{"periods": []string{strconv.Itoa(periods)}}
	return c.getRaw(ctx, "demand_forecast", "/dashboard/demand-forecast/"+url.PathEscape(trimmed), query)
}

// SalesVelocity fetches per-item sales velocity over the given window.
func (c *Client) SalesVelocity(ctx context.Context, days int) (json.RawMessage, error) {
	query := url.Values{"days": []string{strconv.Itoa(days)}}
	return c.getRaw(ctx, "sales_velocity", "/dashboard/sales-velocity", query)
}

// SearchSales fetches sales invoices filtered by period.
func (c *Client) SearchSales(ctx context.Context, params SalesSearchParams) (json.RawMessage, error) {
	query := url.Values{}
	if params.Period != "" {
		query.Set("period", params.Period)
	}
	if params.FromDate != "" {
		query.Set("from_date", params.FromDate)
	}
	if params.ToDate != "" {
		query.Set("to_date", params.ToDate)
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	return c.getRaw(ctx, "search_sales", "/sales/search", query)
}

// Ping probes upstream reachability for readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.DashboardSummary(ctx)
	return err
}

func (c *Client) getRaw(ctx context.Context, operation, path string, query url.Values) (_ json.RawMessage, err error) {
	defer c.observe(operation, time.Now())(&err)

	if len(query) > 0 {
		path = path + "?" + query.Encode()
	}

	resp, err := c.do(ctx, c.httpClient, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read upstream response")
	}
	if !json.Valid(raw) {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "upstream returned malformed JSON")
	}

	return json.RawMessage(raw), nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal upstream request")
	}
	return c.do(ctx, c.httpClient, method, path, "application/json", bytes.NewReader(body))
}

func (c *Client) do(ctx context.Context, client *http.Client, method, path, contentType string, body io.Reader) (*http.Response, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "erp client not configured")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build upstream request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		// The raw transport error text is the operator-facing
		// message. Connection refusals and timeouts land here.
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, err.Error())
	}

	return resp, nil
}

// checkStatus maps non-2xx upstream responses. 503 is distinguished as
// the backend being offline; everything else surfaces the body's
// detail field when present.
func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if resp.StatusCode == http.StatusServiceUnavailable {
		return pkgerrors.New(pkgerrors.CodeUpstreamOffline, OfflineMessage)
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	msg := extractDetail(raw)
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = fmt.Sprintf("upstream returned status %d", resp.StatusCode)
	}

	return pkgerrors.New(pkgerrors.CodeDependency, msg)
}

func extractDetail(raw []byte) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.Detail)
}

// observe returns a closure capturing the call outcome for metrics.
// Usage: defer c.observe(op, time.Now())(&err).
func (c *Client) observe(operation string, start time.Time) func(*error) {
	return func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		c.metrics.ObserveUpstream(operation, err, time.Since(start))
	}
}

func escapeQuotes(s string) string {
	r := strings.NewReplacer("\\", "\\\\", `"`, `\"`)
	return r.Replace(s)
}
