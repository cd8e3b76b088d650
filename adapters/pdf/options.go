package reportpdf

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/chromedp/cdproto/page"

	"github.com/reportkit/go-report-export/report"
)

const defaultPDFScale = 1.0

var pdfLengthPattern = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)\s*([a-zA-Z]*)\s*$`)

var pdfPageSizesInches = map[string]struct {
	width  float64
	height float64
}{
	"A3":     {width: 11.69, height: 16.54},
	"A4":     {width: 8.27, height: 11.69},
	"A5":     {width: 5.83, height: 8.27},
	"LETTER": {width: 8.5, height: 11},
	"LEGAL":  {width: 8.5, height: 14},
}

// PDFMargin holds the four page margins as CSS lengths.
type PDFMargin struct {
	Top    string `json:"top,omitempty"`
	Right  string `json:"right,omitempty"`
	Bottom string `json:"bottom,omitempty"`
	Left   string `json:"left,omitempty"`
}

// PDFOptions configures physical PDF page generation.
type PDFOptions struct {
	// Format is a named page size (A3, A4, A5, Letter, Legal).
	Format string `json:"format,omitempty"`
	// Width and Height are explicit page dimensions; they take precedence
	// over Format when set.
	Width  string `json:"width,omitempty"`
	Height string `json:"height,omitempty"`

	PrintBackground   *bool     `json:"printBackground,omitempty"`
	PreferCSSPageSize *bool     `json:"preferCSSPageSize,omitempty"`
	Scale             float64   `json:"scale,omitempty"`
	Margin            PDFMargin `json:"margin,omitempty"`
}

// DefaultPDFOptions returns the canonical A4 defaults: explicit 210mm x 297mm
// dimensions, background graphics on, 18mm top/bottom and 16mm left/right
// margins.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		Format:          "A4",
		Width:           "210mm",
		Height:          "297mm",
		PrintBackground: boolPtr(true),
		Margin: PDFMargin{
			Top:    "18mm",
			Right:  "16mm",
			Bottom: "18mm",
			Left:   "16mm",
		},
	}
}

// MergePDFOptions fills unset override fields from base. Margins merge
// field-by-field: overriding only the top margin keeps the other three.
func MergePDFOptions(base, override PDFOptions) PDFOptions {
	merged := base
	if override.Format != "" {
		merged.Format = override.Format
	}
	if override.Width != "" {
		merged.Width = override.Width
	}
	if override.Height != "" {
		merged.Height = override.Height
	}
	if override.PrintBackground != nil {
		merged.PrintBackground = override.PrintBackground
	}
	if override.PreferCSSPageSize != nil {
		merged.PreferCSSPageSize = override.PreferCSSPageSize
	}
	if override.Scale != 0 {
		merged.Scale = override.Scale
	}
	if override.Margin.Top != "" {
		merged.Margin.Top = override.Margin.Top
	}
	if override.Margin.Right != "" {
		merged.Margin.Right = override.Margin.Right
	}
	if override.Margin.Bottom != "" {
		merged.Margin.Bottom = override.Margin.Bottom
	}
	if override.Margin.Left != "" {
		merged.Margin.Left = override.Margin.Left
	}
	return merged
}

func buildPrintToPDFParams(opts PDFOptions) (*page.PrintToPDFParams, error) {
	params := page.PrintToPDF()

	scale := opts.Scale
	if scale == 0 {
		scale = defaultPDFScale
	}
	if scale < 0.1 || scale > 2.0 {
		return nil, report.NewError(report.KindValidation, "pdf scale must be between 0.1 and 2.0", nil)
	}
	params = params.WithScale(scale)

	if opts.PrintBackground != nil {
		params = params.WithPrintBackground(*opts.PrintBackground)
	}
	if opts.PreferCSSPageSize != nil {
		params = params.WithPreferCSSPageSize(*opts.PreferCSSPageSize)
	}

	width, height, err := resolvePageSize(opts)
	if err != nil {
		return nil, err
	}
	if width > 0 && height > 0 {
		params = params.WithPaperWidth(width).WithPaperHeight(height)
	}

	if opts.Margin.Top != "" {
		value, err := parseLengthInches(opts.Margin.Top)
		if err != nil {
			return nil, err
		}
		params = params.WithMarginTop(value)
	}
	if opts.Margin.Right != "" {
		value, err := parseLengthInches(opts.Margin.Right)
		if err != nil {
			return nil, err
		}
		params = params.WithMarginRight(value)
	}
	if opts.Margin.Bottom != "" {
		value, err := parseLengthInches(opts.Margin.Bottom)
		if err != nil {
			return nil, err
		}
		params = params.WithMarginBottom(value)
	}
	if opts.Margin.Left != "" {
		value, err := parseLengthInches(opts.Margin.Left)
		if err != nil {
			return nil, err
		}
		params = params.WithMarginLeft(value)
	}

	return params, nil
}

// resolvePageSize prefers explicit dimensions over a named format.
func resolvePageSize(opts PDFOptions) (width, height float64, err error) {
	if opts.Width != "" && opts.Height != "" {
		width, err = parseLengthInches(opts.Width)
		if err != nil {
			return 0, 0, err
		}
		height, err = parseLengthInches(opts.Height)
		if err != nil {
			return 0, 0, err
		}
		return width, height, nil
	}

	if opts.Format != "" {
		size, ok := pdfPageSizesInches[strings.ToUpper(opts.Format)]
		if !ok {
			return 0, 0, report.NewError(report.KindValidation, fmt.Sprintf("unsupported pdf page format: %s", opts.Format), nil)
		}
		return size.width, size.height, nil
	}

	return 0, 0, nil
}

func parseLengthInches(value string) (float64, error) {
	matches := pdfLengthPattern.FindStringSubmatch(value)
	if len(matches) != 3 {
		return 0, report.NewError(report.KindValidation, fmt.Sprintf("invalid pdf length: %s", value), nil)
	}

	raw := matches[1]
	unit := strings.ToLower(matches[2])
	if unit == "" {
		unit = "in"
	}

	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, report.NewError(report.KindValidation, fmt.Sprintf("invalid pdf length: %s", value), err)
	}

	switch unit {
	case "in":
		return amount, nil
	case "cm":
		return amount / 2.54, nil
	case "mm":
		return amount / 25.4, nil
	case "pt":
		return amount / 72.0, nil
	case "px":
		return amount / 96.0, nil
	default:
		return 0, report.NewError(report.KindValidation, fmt.Sprintf("unsupported pdf length unit: %s", unit), nil)
	}
}

func boolPtr(value bool) *bool {
	return &value
}
