package report

import (
	"bytes"
	"fmt"
	"text/template"
)

// PageMargin holds the four physical page margins.
type PageMargin struct {
	Top    string
	Right  string
	Bottom string
	Left   string
}

// PageLayout describes the resolved physical page geometry and the styling
// tokens applied to report sections. Instances are always fully populated;
// partial overrides are merged against DefaultPageLayout before use.
type PageLayout struct {
	Width          string
	Height         string
	Margin         PageMargin
	Padding        string
	Gap            string
	SectionPadding string
	SectionGap     string

	BackgroundColor    string
	CanvasColor        string
	TextColor          string
	SubTextColor       string
	SectionRadius      string
	SectionShadow      string
	SectionBorder      string
	HighlightColor     string
	HighlightTextColor string
	MutedColor         string
}

// MarginOverrides overrides individual page margins. Unset fields keep their
// default values.
type MarginOverrides struct {
	Top    string
	Right  string
	Bottom string
	Left   string
}

// LayoutOverrides overrides individual page layout tokens. Unset fields keep
// their default values; Margin is merged field-by-field.
type LayoutOverrides struct {
	Width          string
	Height         string
	Margin         *MarginOverrides
	Padding        string
	Gap            string
	SectionPadding string
	SectionGap     string

	BackgroundColor    string
	CanvasColor        string
	TextColor          string
	SubTextColor       string
	SectionRadius      string
	SectionShadow      string
	SectionBorder      string
	HighlightColor     string
	HighlightTextColor string
	MutedColor         string
}

// DefaultPageLayout returns the canonical A4 page layout.
func DefaultPageLayout() PageLayout {
	return PageLayout{
		Width:  "210mm",
		Height: "297mm",
		Margin: PageMargin{
			Top:    "18mm",
			Right:  "16mm",
			Bottom: "18mm",
			Left:   "16mm",
		},
		Padding:        "12mm",
		Gap:            "10mm",
		SectionPadding: "16mm",
		SectionGap:     "6mm",

		BackgroundColor:    "#ffffff",
		CanvasColor:        "#e2e8f0",
		TextColor:          "#0f172a",
		SubTextColor:       "#475569",
		SectionRadius:      "10px",
		SectionShadow:      "0 16px 40px rgba(15, 23, 42, 0.12)",
		SectionBorder:      "1px solid rgba(148, 163, 184, 0.32)",
		HighlightColor:     "#0ea5e9",
		HighlightTextColor: "#0369a1",
		MutedColor:         "#f1f5f9",
	}
}

// ResolvePageLayout fills every unset override field from the default layout.
func ResolvePageLayout(overrides *LayoutOverrides) PageLayout {
	layout := DefaultPageLayout()
	if overrides == nil {
		return layout
	}

	pick := func(dst *string, override string) {
		if override != "" {
			*dst = override
		}
	}

	pick(&layout.Width, overrides.Width)
	pick(&layout.Height, overrides.Height)
	pick(&layout.Padding, overrides.Padding)
	pick(&layout.Gap, overrides.Gap)
	pick(&layout.SectionPadding, overrides.SectionPadding)
	pick(&layout.SectionGap, overrides.SectionGap)
	pick(&layout.BackgroundColor, overrides.BackgroundColor)
	pick(&layout.CanvasColor, overrides.CanvasColor)
	pick(&layout.TextColor, overrides.TextColor)
	pick(&layout.SubTextColor, overrides.SubTextColor)
	pick(&layout.SectionRadius, overrides.SectionRadius)
	pick(&layout.SectionShadow, overrides.SectionShadow)
	pick(&layout.SectionBorder, overrides.SectionBorder)
	pick(&layout.HighlightColor, overrides.HighlightColor)
	pick(&layout.HighlightTextColor, overrides.HighlightTextColor)
	pick(&layout.MutedColor, overrides.MutedColor)

	if m := overrides.Margin; m != nil {
		pick(&layout.Margin.Top, m.Top)
		pick(&layout.Margin.Right, m.Right)
		pick(&layout.Margin.Bottom, m.Bottom)
		pick(&layout.Margin.Left, m.Left)
	}

	return layout
}

var customPropertyTemplate = template.Must(template.New("custom-properties").Parse(`:root {
  --print-page-width: {{.Width}};
  --print-page-height: {{.Height}};
  --print-page-background: {{.BackgroundColor}};
  --print-page-canvas: {{.CanvasColor}};
  --print-page-ink: {{.TextColor}};
  --print-page-sub-ink: {{.SubTextColor}};
  --print-page-padding: {{.Padding}};
  --print-page-gap: {{.Gap}};
  --print-section-radius: {{.SectionRadius}};
  --print-section-shadow: {{.SectionShadow}};
  --print-section-border: {{.SectionBorder}};
  --print-section-padding: {{.SectionPadding}};
  --print-section-gap: {{.SectionGap}};
  --print-highlight: {{.HighlightColor}};
  --print-highlight-ink: {{.HighlightTextColor}};
  --print-muted: {{.MutedColor}};
}`))

// CustomPropertyBlock derives the CSS custom-property block for a layout.
func CustomPropertyBlock(layout PageLayout) string {
	var buf bytes.Buffer
	if err := customPropertyTemplate.Execute(&buf, layout); err != nil {
		// The template only references PageLayout fields; execution cannot fail.
		panic(fmt.Errorf("report: render custom property block: %w", err))
	}
	return buf.String()
}

// PageRule derives the @page rule encoding physical size and margins in
// top/right/bottom/left order.
func PageRule(layout PageLayout) string {
	return fmt.Sprintf(
		"@page { size: %s %s; margin: %s %s %s %s; }",
		layout.Width, layout.Height,
		layout.Margin.Top, layout.Margin.Right, layout.Margin.Bottom, layout.Margin.Left,
	)
}

// PageLayoutStyles resolves a layout and returns the ordered list of style
// blocks to inject: base print stylesheet, custom-property block, @page rule.
func PageLayoutStyles(overrides *LayoutOverrides) (PageLayout, []string) {
	layout := ResolvePageLayout(overrides)
	styles := []string{
		BasePrintStyles(),
		CustomPropertyBlock(layout),
		PageRule(layout),
	}
	return layout, styles
}
