package reportpdf

import (
	"context"
	"errors"
)

// WaitUntil is the readiness criterion the renderer waits for before
// rasterizing a loaded page.
type WaitUntil string

const (
	// WaitNetworkIdle waits until no network connections have been in flight
	// for roughly half a second. This is the default: exported chart widgets
	// may depend on asynchronous asset loads finishing before rasterization.
	WaitNetworkIdle WaitUntil = "networkidle0"
	// WaitLoad waits for the page load event.
	WaitLoad WaitUntil = "load"
	// WaitDOMContentLoaded waits for the document to be parsed.
	WaitDOMContentLoaded WaitUntil = "domcontentloaded"
)

// ParseWaitUntil maps a readiness criterion name onto a known criterion,
// falling back to network-idle for unrecognized values.
func ParseWaitUntil(value string) WaitUntil {
	switch WaitUntil(value) {
	case WaitNetworkIdle, WaitLoad, WaitDOMContentLoaded:
		return WaitUntil(value)
	default:
		return WaitNetworkIdle
	}
}

// RenderOptions configures a single PDF render.
type RenderOptions struct {
	PDF       PDFOptions
	WaitUntil WaitUntil
}

// RenderRequest contains HTML input and render options for PDF engines.
type RenderRequest struct {
	HTML    string
	Options RenderOptions
}

// Engine renders HTML content into PDF bytes.
type Engine interface {
	Render(ctx context.Context, req RenderRequest) ([]byte, error)
}

// EngineFunc adapts a function to an Engine.
type EngineFunc func(ctx context.Context, req RenderRequest) ([]byte, error)

func (f EngineFunc) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	if f == nil {
		return nil, errors.New("pdf engine func is nil")
	}
	return f(ctx, req)
}
