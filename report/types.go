package report

import (
	"encoding/json"
	"strings"

	"golang.org/x/net/html"
)

// WidgetType identifies an insertable report block.
type WidgetType string

const (
	WidgetText      WidgetType = "text"
	WidgetTable     WidgetType = "table"
	WidgetGraph     WidgetType = "graph"
	WidgetPageBreak WidgetType = "page-break"
)

// Widget host element attributes. Every widget carries its identity and
// configuration as string attributes on its host element.
const (
	AttrWidgetID     = "data-widget-id"
	AttrWidgetType   = "data-widget-type"
	AttrWidgetTitle  = "data-widget-title"
	AttrWidgetConfig = "data-widget-config"
	AttrWidgetOrder  = "data-widget-order"

	// AttrWidgetStatic marks an element as a static snapshot of a widget type.
	AttrWidgetStatic = "data-widget-static"

	// AttrCanvasSnapshot holds the last rasterized state of a chart canvas as
	// a data URI. The editor refreshes it whenever the chart re-renders.
	AttrCanvasSnapshot = "data-snapshot"
)

// WidgetSelector matches widget host elements.
const WidgetSelector = "[" + AttrWidgetType + "]"

// Widget describes the metadata read from a widget host element.
type Widget struct {
	ID     string
	Type   WidgetType
	Title  string
	Config json.RawMessage
	Order  string
}

// ParseWidget reads widget metadata from a host element. The second return
// value reports whether the node carries a widget type tag at all.
func ParseWidget(n *html.Node) (Widget, bool) {
	if n == nil || n.Type != html.ElementNode {
		return Widget{}, false
	}
	typ := nodeAttr(n, AttrWidgetType)
	if typ == "" {
		return Widget{}, false
	}
	w := Widget{
		ID:    nodeAttr(n, AttrWidgetID),
		Type:  WidgetType(typ),
		Title: nodeAttr(n, AttrWidgetTitle),
		Order: nodeAttr(n, AttrWidgetOrder),
	}
	if raw := strings.TrimSpace(nodeAttr(n, AttrWidgetConfig)); raw != "" && json.Valid([]byte(raw)) {
		w.Config = json.RawMessage(raw)
	}
	return w, true
}

// Logger provides logging hooks.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger discards all log output.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}
