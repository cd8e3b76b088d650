package reportpdf

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/reportkit/go-report-export/report"
)

const (
	// networkQuietWindow is how long the network must stay silent before a
	// page counts as network-idle.
	networkQuietWindow = 500 * time.Millisecond
	// networkIdleCap bounds the idle wait; a page that never settles still
	// renders with whatever has loaded.
	networkIdleCap = 10 * time.Second
)

// ChromiumEngine renders PDF output using a shared headless Chromium
// instance. The browser is started lazily on first use; a failed launch
// clears the cached handle so a later render retries instead of failing
// permanently. Each render opens its own page, so concurrent renders share
// the one browser process without serialization.
type ChromiumEngine struct {
	BrowserPath string
	Headless    bool
	Args        []string
	Timeout     time.Duration

	DefaultPDF PDFOptions
	Logger     report.Logger

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// Render converts an HTML document into PDF bytes.
func (e *ChromiumEngine) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	if e == nil {
		return nil, report.NewError(report.KindInternal, "chromium engine is nil", nil)
	}
	if strings.TrimSpace(req.HTML) == "" {
		return nil, report.NewError(report.KindValidation, "HTML content is required to generate a PDF", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	browserCtx, err := e.ensureBrowser()
	if err != nil {
		return nil, report.NewError(report.KindInternal, "failed to start chromium", err)
	}

	tabCtx, closeTab := chromedp.NewContext(browserCtx)
	// Closing the tab can only fail after the render outcome is already
	// decided, so the error is deliberately swallowed.
	defer closeTab()

	execCtx, cancelReq := context.WithCancel(tabCtx)
	defer cancelReq()
	go func() {
		select {
		case <-ctx.Done():
			cancelReq()
		case <-execCtx.Done():
		}
	}()
	if e.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		execCtx, cancelTimeout = context.WithTimeout(execCtx, e.Timeout)
		defer cancelTimeout()
	}

	waitUntil := req.Options.WaitUntil
	if waitUntil == "" {
		waitUntil = WaitNetworkIdle
	}
	options := MergePDFOptions(e.defaultPDFOptions(), req.Options.PDF)

	var tracker *networkTracker
	actions := []chromedp.Action{}
	if waitUntil == WaitNetworkIdle {
		tracker = newNetworkTracker()
		chromedp.ListenTarget(tabCtx, tracker.handle)
		actions = append(actions, network.Enable())
	}

	var pdf []byte
	actions = append(actions,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("load page content: %w", err)
			}
			if err := page.SetDocumentContent(tree.Frame.ID, req.HTML).Do(ctx); err != nil {
				return fmt.Errorf("load page content: %w", err)
			}
			return nil
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if tracker != nil {
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			return tracker.waitIdle(ctx, networkQuietWindow, networkIdleCap)
		}))
	}
	actions = append(actions,
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Force print media so @media print and @page rules apply.
			if err := emulation.SetEmulatedMedia().WithMedia("print").Do(ctx); err != nil {
				return fmt.Errorf("emulate print media: %w", err)
			}
			return nil
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			params, err := buildPrintToPDFParams(options)
			if err != nil {
				return err
			}
			pdf, _, err = params.Do(ctx)
			if err != nil {
				return fmt.Errorf("print to pdf: %w", err)
			}
			return nil
		}),
	)

	if err := chromedp.Run(execCtx, actions...); err != nil {
		kind := report.KindInternal
		if errors.Is(err, context.DeadlineExceeded) {
			kind = report.KindTimeout
		} else if report.KindFromError(err) == report.KindValidation {
			kind = report.KindValidation
		}
		return nil, report.NewError(kind, "failed to generate PDF", err)
	}
	return pdf, nil
}

// Close releases the shared browser if it has been started.
func (e *ChromiumEngine) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.browserCancel != nil {
		e.browserCancel()
		e.browserCancel = nil
	}
	if e.allocCancel != nil {
		e.allocCancel()
		e.allocCancel = nil
	}
	e.browserCtx = nil
	return nil
}

// ensureBrowser returns the shared browser context, launching it on first
// use. The handle is cached only after a successful launch.
func (e *ChromiumEngine) ensureBrowser() (context.Context, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browserCtx != nil && e.browserCtx.Err() == nil {
		return e.browserCtx, nil
	}

	options := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if e.BrowserPath != "" {
		options = append(options, chromedp.ExecPath(e.BrowserPath))
	}
	options = append(options, chromedp.Flag("headless", e.Headless))
	options = append(options, allocatorOptionsFromArgs(e.Args)...)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), options...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, err
	}

	e.allocCancel = allocCancel
	e.browserCtx = browserCtx
	e.browserCancel = browserCancel
	if e.Logger != nil {
		e.Logger.Infof("chromium browser started")
	}
	return e.browserCtx, nil
}

func (e *ChromiumEngine) defaultPDFOptions() PDFOptions {
	return MergePDFOptions(DefaultPDFOptions(), e.DefaultPDF)
}

func allocatorOptionsFromArgs(args []string) []chromedp.ExecAllocatorOption {
	options := make([]chromedp.ExecAllocatorOption, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		arg = strings.TrimPrefix(arg, "--")
		if arg == "" {
			continue
		}
		if name, value, ok := strings.Cut(arg, "="); ok {
			options = append(options, chromedp.Flag(name, value))
			continue
		}
		options = append(options, chromedp.Flag(arg, true))
	}
	return options
}

// networkTracker counts in-flight requests on a page so a render can wait
// for the network to go quiet.
type networkTracker struct {
	mu       sync.Mutex
	inflight map[network.RequestID]struct{}
	last     time.Time
}

func newNetworkTracker() *networkTracker {
	return &networkTracker{
		inflight: map[network.RequestID]struct{}{},
		last:     time.Now(),
	}
}

func (t *networkTracker) handle(ev any) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		t.mu.Lock()
		t.inflight[e.RequestID] = struct{}{}
		t.last = time.Now()
		t.mu.Unlock()
	case *network.EventLoadingFinished:
		t.finish(e.RequestID)
	case *network.EventLoadingFailed:
		t.finish(e.RequestID)
	}
}

func (t *networkTracker) finish(id network.RequestID) {
	t.mu.Lock()
	delete(t.inflight, id)
	t.last = time.Now()
	t.mu.Unlock()
}

func (t *networkTracker) idle(quiet time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight) == 0 && time.Since(t.last) >= quiet
}

// waitIdle blocks until the network has been quiet for the given window.
// The wait is capped: a page that keeps polling still renders.
func (t *networkTracker) waitIdle(ctx context.Context, quiet, maxWait time.Duration) error {
	deadline := time.Now().Add(maxWait)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if t.idle(quiet) {
			return nil
		}
		if time.Now().After(deadline) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
