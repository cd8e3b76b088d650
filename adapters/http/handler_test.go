package reporthttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	reportpdf "github.com/reportkit/go-report-export/adapters/pdf"
	"github.com/reportkit/go-report-export/report"
)

type fakeEngine struct {
	calls   atomic.Int64
	lastReq reportpdf.RenderRequest
	pdf     []byte
	err     error
}

func (f *fakeEngine) Render(_ context.Context, req reportpdf.RenderRequest) ([]byte, error) {
	f.calls.Add(1)
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.pdf, nil
}

func newTestApp(engine reportpdf.Engine, maxBody int) *fiber.App {
	return New(Config{
		Engine:       engine,
		Logger:       report.NopLogger{},
		MaxBodyBytes: maxBody,
	})
}

func postExport(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, ExportPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeMessage(t *testing.T, resp *http.Response) string {
	t.Helper()

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return payload.Message
}

func TestExportPDF_Success(t *testing.T) {
	engine := &fakeEngine{pdf: []byte("%PDF-1.7 fake content")}
	app := newTestApp(engine, 0)

	resp := postExport(t, app, `{"html":"<p>hello</p>"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="document.pdf"` {
		t.Fatalf("unexpected content disposition: %q", cd)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !bytes.Equal(body, engine.pdf) {
		t.Fatalf("expected pdf bytes passed through")
	}
	if cl := resp.Header.Get("Content-Length"); cl != strconv.Itoa(len(engine.pdf)) {
		t.Fatalf("expected content length %d, got %q", len(engine.pdf), cl)
	}
	if engine.calls.Load() != 1 {
		t.Fatalf("expected exactly one engine call, got %d", engine.calls.Load())
	}
}

func TestExportPDF_FilenameNormalized(t *testing.T) {
	engine := &fakeEngine{pdf: []byte("%PDF")}
	app := newTestApp(engine, 0)

	resp := postExport(t, app, `{"html":"<p>hi</p>","filename":"quarterly"}`)
	defer resp.Body.Close()

	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="quarterly.pdf"` {
		t.Fatalf("unexpected content disposition: %q", cd)
	}
}

func TestExportPDF_EmptyHTML(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing field", body: `{}`},
		{name: "empty string", body: `{"html":""}`},
		{name: "whitespace only", body: `{"html":"   \n\t "}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			engine := &fakeEngine{pdf: []byte("%PDF")}
			app := newTestApp(engine, 0)

			resp := postExport(t, app, tc.body)
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			if msg := decodeMessage(t, resp); msg == "" {
				t.Fatalf("expected a message field")
			}
			if engine.calls.Load() != 0 {
				t.Fatalf("engine must not be invoked on validation failure")
			}
		})
	}
}

func TestExportPDF_EngineError(t *testing.T) {
	engine := &fakeEngine{err: report.NewError(report.KindInternal, "failed to generate PDF", errors.New("browser crashed"))}
	app := newTestApp(engine, 0)

	resp := postExport(t, app, `{"html":"<p>hi</p>"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if msg := decodeMessage(t, resp); msg != "failed to generate PDF" {
		t.Fatalf("expected engine message surfaced, got %q", msg)
	}
}

func TestExportPDF_BodyTooLarge(t *testing.T) {
	engine := &fakeEngine{pdf: []byte("%PDF")}
	app := newTestApp(engine, 128)

	big := `{"html":"<p>` + strings.Repeat("x", 1024) + `</p>"}`
	resp := postExport(t, app, big)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.StatusCode)
	}
	if msg := decodeMessage(t, resp); msg == "" {
		t.Fatalf("expected a message field")
	}
	if engine.calls.Load() != 0 {
		t.Fatalf("engine must not be invoked for oversized bodies")
	}
}

func TestExportPDF_OptionsForwarded(t *testing.T) {
	engine := &fakeEngine{pdf: []byte("%PDF")}
	app := newTestApp(engine, 0)

	resp := postExport(t, app, `{"html":"<p>hi</p>","pdfOptions":{"margin":{"top":"24mm"}},"waitUntil":"load"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := engine.lastReq.Options.PDF.Margin.Top; got != "24mm" {
		t.Fatalf("expected margin forwarded, got %q", got)
	}
	if got := engine.lastReq.Options.WaitUntil; got != reportpdf.WaitLoad {
		t.Fatalf("expected wait criterion forwarded, got %q", got)
	}
}

func TestExportPDF_LegacyOptionsForm(t *testing.T) {
	engine := &fakeEngine{pdf: []byte("%PDF")}
	app := newTestApp(engine, 0)

	resp := postExport(t, app, `{"html":"<p>hi</p>","options":{"pdf":{"format":"Letter"},"waitUntil":"domcontentloaded"}}`)
	defer resp.Body.Close()

	if got := engine.lastReq.Options.PDF.Format; got != "Letter" {
		t.Fatalf("expected legacy pdf options applied, got %q", got)
	}
	if got := engine.lastReq.Options.WaitUntil; got != reportpdf.WaitDOMContentLoaded {
		t.Fatalf("expected legacy wait criterion applied, got %q", got)
	}
}

func TestExportPDF_FlatOptionsWinOverLegacy(t *testing.T) {
	engine := &fakeEngine{pdf: []byte("%PDF")}
	app := newTestApp(engine, 0)

	resp := postExport(t, app, `{"html":"<p>hi</p>","pdfOptions":{"format":"A5"},"options":{"pdf":{"format":"Letter"}}}`)
	defer resp.Body.Close()

	if got := engine.lastReq.Options.PDF.Format; got != "A5" {
		t.Fatalf("expected flat pdfOptions to win, got %q", got)
	}
}

func TestExportPDF_UnknownWaitUntilFallsBack(t *testing.T) {
	engine := &fakeEngine{pdf: []byte("%PDF")}
	app := newTestApp(engine, 0)

	resp := postExport(t, app, `{"html":"<p>hi</p>","waitUntil":"whenever"}`)
	defer resp.Body.Close()

	if got := engine.lastReq.Options.WaitUntil; got != reportpdf.WaitNetworkIdle {
		t.Fatalf("expected fallback to network idle, got %q", got)
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(&fakeEngine{}, 0)

	req := httptest.NewRequest(http.MethodGet, HealthPath, nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode health body: %v", err)
	}
	if payload.Message != "Healthy" {
		t.Fatalf("expected Healthy, got %q", payload.Message)
	}
	if _, err := time.Parse(time.RFC3339, payload.Timestamp); err != nil {
		t.Fatalf("expected RFC3339 timestamp, got %q: %v", payload.Timestamp, err)
	}
}

func TestRoot(t *testing.T) {
	app := newTestApp(&fakeEngine{}, 0)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if msg := decodeMessage(t, resp); msg == "" {
		t.Fatalf("expected a message field")
	}
}
