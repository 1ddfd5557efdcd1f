// Package fiscal issues tax-authority documents for committed sales and
// returns. Provider outcomes are recorded and never undo the sale.
package fiscal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/resilience"
)

// InvoiceRequest asks the provider for an invoice.
type InvoiceRequest struct {
	SaleID        string          `json:"saleId"`
	ReceiptNumber string          `json:"receiptNumber"`
	StoreID       string          `json:"storeId"`
	CustomerRef   string          `json:"customerRef,omitempty"`
	TotalPayable  decimal.Decimal `json:"totalPayable"`
}

// CancelRequest asks the provider to void an issued invoice.
type CancelRequest struct {
	DocumentID         string `json:"documentId"`
	ExternalDocumentID string `json:"externalDocumentId"`
	Reason             string `json:"reason"`
}

// CreditNoteRequest asks the provider for a credit note against a return.
type CreditNoteRequest struct {
	SaleReturnID    string          `json:"saleReturnId"`
	SaleID          string          `json:"saleId"`
	ReturnReference string          `json:"returnReference"`
	ReceiptNumber   string          `json:"receiptNumber"`
	StoreID         string          `json:"storeId"`
	CustomerRef     string          `json:"customerRef,omitempty"`
	TotalGross      decimal.Decimal `json:"totalGross"`
}

// Result is what a provider answered.
type Result struct {
	Success            bool   `json:"success"`
	ExternalDocumentID string `json:"externalDocumentId"`
	Message            string `json:"message"`
}

// Provider talks to the fiscal authority.
type Provider interface {
	Code() string
	IssueInvoice(ctx context.Context, req InvoiceRequest) (Result, error)
	CancelInvoice(ctx context.Context, req CancelRequest) (Result, error)
	IssueCreditNote(ctx context.Context, req CreditNoteRequest) (Result, error)
}

// StubProvider accepts everything and derives external ids from local ids.
type StubProvider struct{}

func (StubProvider) Code() string { return "STUB" }

func (StubProvider) IssueInvoice(_ context.Context, req InvoiceRequest) (Result, error) {
	return Result{Success: true, ExternalDocumentID: "INV-" + req.SaleID, Message: "stub invoice issued"}, nil
}

func (StubProvider) CancelInvoice(_ context.Context, req CancelRequest) (Result, error) {
	return Result{Success: true, ExternalDocumentID: req.ExternalDocumentID, Message: "stub invoice cancelled"}, nil
}

func (StubProvider) IssueCreditNote(_ context.Context, req CreditNoteRequest) (Result, error) {
	return Result{Success: true, ExternalDocumentID: "CN-" + req.SaleReturnID, Message: "stub credit note issued"}, nil
}

// HTTPProvider posts JSON documents to a provider gateway.
type HTTPProvider struct {
	BaseURL string
	Client  resilience.HTTPClient
}

func (p *HTTPProvider) Code() string { return "HTTP" }

func (p *HTTPProvider) IssueInvoice(ctx context.Context, req InvoiceRequest) (Result, error) {
	return p.post(ctx, "/invoices", req)
}

func (p *HTTPProvider) CancelInvoice(ctx context.Context, req CancelRequest) (Result, error) {
	return p.post(ctx, "/invoices/"+req.ExternalDocumentID+"/cancel", req)
}

func (p *HTTPProvider) IssueCreditNote(ctx context.Context, req CreditNoteRequest) (Result, error) {
	return p.post(ctx, "/credit-notes", req)
}

func (p *HTTPProvider) post(ctx context.Context, path string, body any) (Result, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return Result{}, fmt.Errorf("fiscal: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(p.BaseURL, "/")+path, bytes.NewReader(raw))
	if err != nil {
		return Result{}, fmt.Errorf("fiscal: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.Client.Do(ctx, req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("fiscal: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return Result{Success: false, Message: fmt.Sprintf("provider rejected request: %s", resp.Status)}, nil
	}
	var out Result
	if err := json.Unmarshal(data, &out); err != nil {
		return Result{}, fmt.Errorf("fiscal: decode response: %w", err)
	}
	return out, nil
}

// errorKind names a provider failure for the document message.
func errorKind(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, resilience.ErrOpenCircuit):
		return "circuit_open"
	}
	name := fmt.Sprintf("%T", err)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimPrefix(name, "*")
}
