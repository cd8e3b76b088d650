// Package client issues export requests against a report export server and
// unpacks the PDF response.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/reportkit/go-report-export/report"
)

// DefaultErrorMessage is surfaced when the server provides no usable error body.
const DefaultErrorMessage = "failed to generate PDF file"

// PDFMargin overrides individual page margins for a single export.
type PDFMargin struct {
	Top    string `json:"top,omitempty"`
	Right  string `json:"right,omitempty"`
	Bottom string `json:"bottom,omitempty"`
	Left   string `json:"left,omitempty"`
}

// PDFOptions carries PDF-specific request overrides.
type PDFOptions struct {
	Margin *PDFMargin `json:"margin,omitempty"`
}

// ExportRequest is one PDF export request.
type ExportRequest struct {
	HTML       string      `json:"html"`
	Filename   string      `json:"filename,omitempty"`
	PDFOptions *PDFOptions `json:"pdfOptions,omitempty"`
}

// ExportResult is the binary PDF plus its resolved filename.
type ExportResult struct {
	PDF      []byte
	Filename string
}

// Client calls the export endpoint of a report export server.
type Client struct {
	// BaseURL is the server root, e.g. "http://localhost:3001".
	BaseURL string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
	Logger     report.Logger
}

// ExportPDF submits HTML for rendering and returns the PDF bytes together
// with the filename resolved from the response headers, the request, or the
// default, always normalized to a .pdf suffix.
func (c *Client) ExportPDF(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	if c == nil {
		return nil, report.NewError(report.KindInternal, "export client is nil", nil)
	}
	if strings.TrimSpace(req.HTML) == "" {
		return nil, report.NewError(report.KindValidation, "HTML content is required", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, report.NewError(report.KindInternal, "failed to encode export request", err)
	}

	url := strings.TrimRight(c.BaseURL, "/") + "/api/export/pdf"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, report.NewError(report.KindInternal, "failed to build export request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, report.NewError(report.KindInternal, "export request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp)
	}

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, report.NewError(report.KindInternal, "failed to read PDF response", err)
	}

	filename := report.ResolveFilename(resp.Header.Get("Content-Disposition"), req.Filename)
	if c.Logger != nil {
		c.Logger.Debugf("exported %d PDF bytes as %s", len(pdf), filename)
	}
	return &ExportResult{PDF: pdf, Filename: filename}, nil
}

// errorFromResponse extracts the server-provided message, falling back to a
// generic one when the body is missing or not JSON.
func errorFromResponse(resp *http.Response) error {
	message := DefaultErrorMessage

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err == nil && len(body) > 0 {
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
			message = payload.Message
		}
	}

	kind := report.KindInternal
	switch resp.StatusCode {
	case http.StatusBadRequest:
		kind = report.KindValidation
	case http.StatusRequestEntityTooLarge:
		kind = report.KindTooLarge
	}
	return report.NewError(kind, message, nil)
}
