package report

import (
	"strings"
	"testing"
)

func TestResolvePageLayout_NilOverridesMatchesDefault(t *testing.T) {
	layout := ResolvePageLayout(nil)
	if layout != DefaultPageLayout() {
		t.Fatalf("expected default layout, got %+v", layout)
	}
}

func TestResolvePageLayout_MarginMergesPerField(t *testing.T) {
	layout := ResolvePageLayout(&LayoutOverrides{
		Margin: &MarginOverrides{Top: "24mm"},
	})

	if layout.Margin.Top != "24mm" {
		t.Fatalf("expected top margin 24mm, got %q", layout.Margin.Top)
	}
	if layout.Margin.Right != "16mm" || layout.Margin.Bottom != "18mm" || layout.Margin.Left != "16mm" {
		t.Fatalf("expected untouched margins to keep defaults, got %+v", layout.Margin)
	}
	if layout.Width != "210mm" {
		t.Fatalf("expected default width, got %q", layout.Width)
	}
}

func TestResolvePageLayout_TopLevelOverrides(t *testing.T) {
	layout := ResolvePageLayout(&LayoutOverrides{
		Width:           "216mm",
		BackgroundColor: "#000000",
	})

	if layout.Width != "216mm" {
		t.Fatalf("expected width override, got %q", layout.Width)
	}
	if layout.BackgroundColor != "#000000" {
		t.Fatalf("expected background override, got %q", layout.BackgroundColor)
	}
	if layout.Height != "297mm" {
		t.Fatalf("expected default height, got %q", layout.Height)
	}
}

func TestPageRule_EncodesMarginsInOrder(t *testing.T) {
	layout := ResolvePageLayout(&LayoutOverrides{
		Margin: &MarginOverrides{Top: "24mm"},
	})

	rule := PageRule(layout)
	want := "@page { size: 210mm 297mm; margin: 24mm 16mm 18mm 16mm; }"
	if rule != want {
		t.Fatalf("expected %q, got %q", want, rule)
	}
}

func TestCustomPropertyBlock_ContainsTokens(t *testing.T) {
	block := CustomPropertyBlock(DefaultPageLayout())

	for _, want := range []string{
		"--print-page-width: 210mm;",
		"--print-page-height: 297mm;",
		"--print-highlight: #0ea5e9;",
	} {
		if !strings.Contains(block, want) {
			t.Fatalf("expected custom property block to contain %q:\n%s", want, block)
		}
	}
	if !strings.HasPrefix(block, ":root {") {
		t.Fatalf("expected :root block, got %q", block)
	}
}

func TestPageLayoutStyles_Order(t *testing.T) {
	layout, styles := PageLayoutStyles(&LayoutOverrides{
		Margin: &MarginOverrides{Top: "24mm"},
	})

	if len(styles) != 3 {
		t.Fatalf("expected 3 style blocks, got %d", len(styles))
	}
	if styles[0] != BasePrintStyles() {
		t.Fatalf("expected base print stylesheet first")
	}
	if !strings.HasPrefix(styles[1], ":root {") {
		t.Fatalf("expected custom-property block second, got %q", styles[1])
	}
	if !strings.HasPrefix(styles[2], "@page {") {
		t.Fatalf("expected @page rule third, got %q", styles[2])
	}
	if !strings.Contains(styles[2], "24mm") {
		t.Fatalf("expected @page rule to carry the margin override, got %q", styles[2])
	}
	if layout.Margin.Top != "24mm" {
		t.Fatalf("expected resolved layout returned alongside styles, got %+v", layout.Margin)
	}
}

func TestBasePrintStyles_NotEmpty(t *testing.T) {
	css := BasePrintStyles()
	if !strings.Contains(css, "--print-page-width") {
		t.Fatalf("expected base stylesheet to reference layout custom properties")
	}
	if !strings.Contains(css, "page-break-after: always") {
		t.Fatalf("expected base stylesheet to style page-break widgets")
	}
}
