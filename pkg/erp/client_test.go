package erp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/storeopshq/storeops-backend/pkg/config"
	pkgerrors "github.com/storeopshq/storeops-backend/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()

	httpClient := &http.Client{Transport: rt}
	client, err := NewClient(
		config.ERPConfig{BaseURL: "http://erp.test", Timeout: 5 * time.Second, UploadTimeout: 5 * time.Second},
		WithHTTPClient(httpClient),
		WithUploadClient(httpClient),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestIngestInvoiceSendsMultipartFile(t *testing.T) {
	respBody := `{"success":true,"message":"Extracted 2 line items from invoice","data":{"header":{"supplier_name":"Gupta Traders","invoice_number":"INV-104","invoice_date":"2025-08-01"},"line_items":[{"item_name":"Parle-G","quantity":12,"unit":"Nos","unit_price":10,"total":120,"gst_rate":"5%"},{"item_name":"Tata Salt","quantity":5,"unit":"Kg","unit_price":28,"total":140,"gst_rate":"0%"}]}}`

	var capturedPath string
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		capturedPath = req.URL.Path

		if err := req.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart form: %v", err)
		}
		file, header, err := req.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer func() { _ = file.Close() }()
		if header.Filename != "invoice.jpg" {
			t.Fatalf("unexpected filename %q", header.Filename)
		}
		content, _ := io.ReadAll(file)
		if string(content) != "fake-image-bytes" {
			t.Fatalf("unexpected file content %q", content)
		}

		return jsonResponse(http.StatusOK, respBody), nil
	})

	invoice, err := client.IngestInvoice(context.Background(), "invoice.jpg", "image/jpeg", strings.NewReader("fake-image-bytes"))
	if err != nil {
		t.Fatalf("ingest invoice: %v", err)
	}
	if capturedPath != "/stock-in/upload" {
		t.Fatalf("unexpected path %q", capturedPath)
	}
	if invoice.Header.SupplierName != "Gupta Traders" {
		t.Fatalf("unexpected supplier %q", invoice.Header.SupplierName)
	}
	if len(invoice.LineItems) != 2 || invoice.LineItems[0].ItemName != "Parle-G" {
		t.Fatalf("unexpected line items %+v", invoice.LineItems)
	}
}

func TestIngestInvoiceExtractionFailureSurfacesVerbatim(t *testing.T) {
	const extractorMsg = "Could not extract text from the uploaded file. Please try a clearer image."

	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"success":false,"message":"`+extractorMsg+`"}`), nil
	})

	_, err := client.IngestInvoice(context.Background(), "blurry.jpg", "image/jpeg", strings.NewReader("x"))
	if err == nil {
		t.Fatal("expected error")
	}

	typed := pkgerrors.As(err)
	if typed.Code() != pkgerrors.CodeExtraction {
		t.Fatalf("unexpected code %s", typed.Code())
	}
	if typed.Message() != extractorMsg {
		t.Fatalf("message not preserved verbatim: %q", typed.Message())
	}
}

func TestConfirmStockInPostsPayload(t *testing.T) {
	var captured StockInPayload
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/stock-in/confirm" {
			t.Fatalf("unexpected path %q", req.URL.Path)
		}
		if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		return jsonResponse(http.StatusOK, `{"success":true,"message":"Stock entry created","entry_name":"MAT-STE-2025-00042"}`), nil
	})

	ack, err := client.ConfirmStockIn(context.Background(), StockInPayload{
		Header: InvoiceHeader{SupplierName: "Gupta Traders", InvoiceNumber: "INV-104"},
		LineItems: []StockInLine{
			{ItemName: "Parle-G", Quantity: 12, UnitPrice: 10, Total: 120},
		},
	})
	if err != nil {
		t.Fatalf("confirm stock-in: %v", err)
	}
	if ack.EntryName != "MAT-STE-2025-00042" {
		t.Fatalf("unexpected entry name %q", ack.EntryName)
	}
	if captured.Header.InvoiceNumber != "INV-104" || len(captured.LineItems) != 1 {
		t.Fatalf("unexpected payload %+v", captured)
	}
}

func TestLookupBarcodeFound(t *testing.T) {
	var capturedPath string
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		capturedPath = req.URL.Path
		return jsonResponse(http.StatusOK, `{"success":true,"item_code":"ITEM-001","item_name":"Parle-G","standard_rate":10.5,"stock_qty":48,"barcode":"8901719100017"}`), nil
	})

	item, err := client.LookupBarcode(context.Background(), "8901719100017")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if capturedPath != "/stock-out/lookup/8901719100017" {
		t.Fatalf("unexpected path %q", capturedPath)
	}
	if item.ItemCode != "ITEM-001" || item.StandardRate != 10.5 || item.StockQty != 48 {
		t.Fatalf("unexpected item %+v", item)
	}
}

func TestLookupBarcodeNotFoundInSuccessEnvelope(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"success":false,"message":"No item found for barcode: 0000"}`), nil
	})

	_, err := client.LookupBarcode(context.Background(), "0000")
	typed := pkgerrors.As(err)
	if typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected code %s", typed.Code())
	}
	if typed.Message() != "No item found for barcode: 0000" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestSubmitSaleRequestsInvoiceCreation(t *testing.T) {
	var captured map[string]any
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/stock-out/sale" {
			t.Fatalf("unexpected path %q", req.URL.Path)
		}
		if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		return jsonResponse(http.StatusOK, `{"success":true,"message":"Sale processed successfully","stock_entry_name":"MAT-STE-2025-00043","invoice_name":"ACC-SINV-2025-00007"}`), nil
	})

	ack, err := client.SubmitSale(context.Background(), SalePayload{
		Items:         []SaleItem{{ItemCode: "ITEM-001", ItemName: "Parle-G", Qty: 3, Rate: 10.5}},
		CreateInvoice: true,
	})
	if err != nil {
		t.Fatalf("submit sale: %v", err)
	}
	if captured["create_invoice"] != true {
		t.Fatalf("create_invoice not set in payload: %+v", captured)
	}
	if ack.InvoiceName == nil || *ack.InvoiceName != "ACC-SINV-2025-00007" {
		t.Fatalf("unexpected ack %+v", ack)
	}
}

func TestServiceUnavailableMapsToOffline(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusServiceUnavailable, `{"detail":"down for maintenance"}`), nil
	})

	_, err := client.DashboardSummary(context.Background())
	typed := pkgerrors.As(err)
	if typed.Code() != pkgerrors.CodeUpstreamOffline {
		t.Fatalf("unexpected code %s", typed.Code())
	}
	if typed.Message() != OfflineMessage {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestErrorStatusSurfacesDetailField(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, `{"detail":"ERPNext error: 500 Server Error"}`), nil
	})

	_, err := client.SearchSales(context.Background(), SalesSearchParams{Period: "7d"})
	typed := pkgerrors.As(err)
	if typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("unexpected code %s", typed.Code())
	}
	if typed.Message() != "ERPNext error: 500 Server Error" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestErrorStatusFallsBackToRawBody(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, `upstream exploded`), nil
	})

	_, err := client.ReorderAlerts(context.Background())
	typed := pkgerrors.As(err)
	if typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("unexpected code %s", typed.Code())
	}
	if typed.Message() != "upstream exploded" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestTransportErrorPreservesRawText(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	_, err := client.LookupBarcode(context.Background(), "8901719100017")
	typed := pkgerrors.As(err)
	if typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("unexpected code %s", typed.Code())
	}
	if !strings.Contains(typed.Message(), "connection refused") {
		t.Fatalf("transport error text lost: %q", typed.Message())
	}
}

func TestLookupBarcodeRejectsBlankInput(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	})

	_, err := client.LookupBarcode(context.Background(), "   ")
	typed := pkgerrors.As(err)
	if typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected code %s", typed.Code())
	}
}
