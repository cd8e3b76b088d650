package reporthttp

import (
	"strings"

	reportpdf "github.com/reportkit/go-report-export/adapters/pdf"
)

type marginBody struct {
	Top    string `json:"top"`
	Right  string `json:"right"`
	Bottom string `json:"bottom"`
	Left   string `json:"left"`
}

type pdfOptionsBody struct {
	Format            string      `json:"format"`
	Width             string      `json:"width"`
	Height            string      `json:"height"`
	PrintBackground   *bool       `json:"printBackground"`
	PreferCSSPageSize *bool       `json:"preferCSSPageSize"`
	Scale             float64     `json:"scale"`
	Margin            *marginBody `json:"margin"`
}

// generateOptionsBody is the nested options form accepted alongside the flat
// pdfOptions/waitUntil fields. Flat fields win when both are present.
type generateOptionsBody struct {
	PDF       *pdfOptionsBody `json:"pdf"`
	WaitUntil string          `json:"waitUntil"`
}

type exportRequest struct {
	HTML       string               `json:"html"`
	Filename   string               `json:"filename"`
	PDFOptions *pdfOptionsBody      `json:"pdfOptions"`
	WaitUntil  string               `json:"waitUntil"`
	Options    *generateOptionsBody `json:"options"`
}

func (r exportRequest) hasHTML() bool {
	return strings.TrimSpace(r.HTML) != ""
}

func (r exportRequest) renderOptions() reportpdf.RenderOptions {
	var opts reportpdf.RenderOptions

	if r.Options != nil {
		if r.Options.PDF != nil {
			opts.PDF = r.Options.PDF.toPDFOptions()
		}
		if r.Options.WaitUntil != "" {
			opts.WaitUntil = reportpdf.ParseWaitUntil(r.Options.WaitUntil)
		}
	}
	if r.PDFOptions != nil {
		opts.PDF = r.PDFOptions.toPDFOptions()
	}
	if r.WaitUntil != "" {
		opts.WaitUntil = reportpdf.ParseWaitUntil(r.WaitUntil)
	}
	return opts
}

func (b *pdfOptionsBody) toPDFOptions() reportpdf.PDFOptions {
	opts := reportpdf.PDFOptions{
		Format:            b.Format,
		Width:             b.Width,
		Height:            b.Height,
		PrintBackground:   b.PrintBackground,
		PreferCSSPageSize: b.PreferCSSPageSize,
		Scale:             b.Scale,
	}
	if b.Margin != nil {
		opts.Margin = reportpdf.PDFMargin{
			Top:    b.Margin.Top,
			Right:  b.Margin.Right,
			Bottom: b.Margin.Bottom,
			Left:   b.Margin.Left,
		}
	}
	return opts
}
