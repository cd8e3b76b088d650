package report

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// SerializeContext carries the live and cloned host elements of one widget
// into its registered serializer.
type SerializeContext struct {
	Source *html.Node
	Target *html.Node
	Logger Logger
}

// Serializer replaces a widget's live rendering inside Target with a static
// equivalent. Source must never be mutated.
type Serializer func(ctx SerializeContext) error

// Registry maps widget types to snapshot serializers. It is safe for
// concurrent use; registrations must not change during a serialization pass.
type Registry struct {
	mu          sync.RWMutex
	serializers map[WidgetType]Serializer
}

// NewRegistry creates an empty serializer registry.
func NewRegistry() *Registry {
	return &Registry{serializers: map[WidgetType]Serializer{}}
}

// DefaultRegistry returns a registry with the built-in serializers. Only the
// graph widget needs one: its live canvas rendering does not survive
// serialization. Text, table, and page-break widgets export as-is.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(WidgetGraph, GraphSerializer)
	return r
}

// Register sets the serializer for a widget type, replacing any previous one.
func (r *Registry) Register(typ WidgetType, s Serializer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.serializers[typ] = s
}

// Unregister removes the serializer for a widget type.
func (r *Registry) Unregister(typ WidgetType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.serializers, typ)
}

func (r *Registry) lookup(typ WidgetType) (Serializer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.serializers[typ]
	return s, ok
}

// SerializeParams configures one widget serialization pass.
type SerializeParams struct {
	// SourceRoot is the live tree containing fully rendered widgets.
	SourceRoot *html.Node
	// TargetRoot is the cloned tree mutated to contain static fallbacks.
	TargetRoot *html.Node
	// Registry defaults to DefaultRegistry when nil.
	Registry *Registry
	// Logger defaults to NopLogger when nil.
	Logger Logger
}

// SerializeWidgets replaces every widget under TargetRoot whose type has a
// registered serializer with a static equivalent. Widgets are paired between
// the two trees by identifier, not tree position. Serializers for independent
// widgets run concurrently; an individual failure is logged and leaves that
// widget's live markup in place without aborting the batch.
func SerializeWidgets(params SerializeParams) error {
	if params.SourceRoot == nil || params.TargetRoot == nil {
		return NewError(KindValidation, "widget serialization requires source and target roots", nil)
	}

	registry := params.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}
	logger := params.Logger
	if logger == nil {
		logger = NopLogger{}
	}

	sourceWidgets := collectWidgets(params.SourceRoot)
	if len(sourceWidgets) == 0 {
		return nil
	}
	targetWidgets := collectWidgets(params.TargetRoot)
	if len(targetWidgets) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	for id, sourceWidget := range sourceWidgets {
		targetWidget, ok := targetWidgets[id]
		if !ok {
			// Cloning can narrow or reorder the target tree; unpaired
			// widgets keep their live markup.
			continue
		}

		widget, ok := ParseWidget(sourceWidget)
		if !ok {
			continue
		}
		serializer, ok := registry.lookup(widget.Type)
		if !ok {
			continue
		}

		wg.Add(1)
		go func(id string, typ WidgetType, source, target *html.Node) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Warnf("widget %s (%s): snapshot serializer panicked: %v", id, typ, r)
				}
			}()
			if err := serializer(SerializeContext{Source: source, Target: target, Logger: logger}); err != nil {
				logger.Warnf("widget %s (%s): snapshot failed, keeping live markup: %v", id, typ, err)
			}
		}(id, widget.Type, sourceWidget, targetWidget)
	}
	wg.Wait()

	return nil
}

// collectWidgets indexes widget host elements under root by identifier.
func collectWidgets(root *html.Node) map[string]*html.Node {
	widgets := map[string]*html.Node{}
	doc := goquery.NewDocumentFromNode(root)
	doc.Find(WidgetSelector).Each(func(_ int, s *goquery.Selection) {
		id, ok := s.Attr(AttrWidgetID)
		if !ok || id == "" {
			return
		}
		widgets[id] = s.Nodes[0]
	})
	return widgets
}

// graphCanvasHostClass marks the container whose children are replaced by the
// snapshot image.
const graphCanvasHostClass = "graph-widget__canvas"

// defaultGraphAlt is the alternative text used when a graph widget has no title.
const defaultGraphAlt = "Graph preview"

// GraphSerializer replaces a graph widget's live canvas with its captured
// raster snapshot. The editor stores the canvas pixel state as a data URI on
// the canvas element; a missing or malformed capture leaves the live markup
// as the exported fallback.
func GraphSerializer(ctx SerializeContext) error {
	source := goquery.NewDocumentFromNode(ctx.Source)
	canvasSel := source.Find("canvas").First()
	if canvasSel.Length() == 0 {
		return nil
	}
	canvas := canvasSel.Nodes[0]

	dataURI := strings.TrimSpace(nodeAttr(canvas, AttrCanvasSnapshot))
	if dataURI == "" {
		return fmt.Errorf("canvas has no captured snapshot")
	}
	if !strings.HasPrefix(dataURI, "data:image/") {
		return fmt.Errorf("canvas snapshot is not an image data URI")
	}

	host := ctx.Target
	target := goquery.NewDocumentFromNode(ctx.Target)
	if hostSel := target.Find("." + graphCanvasHostClass).First(); hostSel.Length() > 0 {
		host = hostSel.Nodes[0]
	}

	alt := nodeAttr(ctx.Target, AttrWidgetTitle)
	if alt == "" {
		alt = defaultGraphAlt
	}

	img := newElement("img")
	setNodeAttr(img, "src", dataURI)
	setNodeAttr(img, "alt", alt)
	setNodeAttr(img, AttrWidgetStatic, string(WidgetGraph))
	setNodeAttr(img, "loading", "lazy")
	setNodeAttr(img, "decoding", "async")
	applyImageSizing(img, canvas)

	removeChildren(host)
	host.AppendChild(img)
	return nil
}

func applyImageSizing(img, canvas *html.Node) {
	width := canvasDimension(canvas, "width")
	height := canvasDimension(canvas, "height")

	var style strings.Builder
	if width > 0 {
		setNodeAttr(img, "width", strconv.Itoa(width))
		fmt.Fprintf(&style, "width: %dpx; ", width)
	} else if w := styleValue(nodeAttr(canvas, "style"), "width"); w != "" {
		fmt.Fprintf(&style, "width: %s; ", w)
	} else {
		style.WriteString("width: 100%; ")
	}

	if height > 0 {
		setNodeAttr(img, "height", strconv.Itoa(height))
		fmt.Fprintf(&style, "height: %dpx; ", height)
	} else if h := styleValue(nodeAttr(canvas, "style"), "height"); h != "" {
		fmt.Fprintf(&style, "height: %s; ", h)
	}

	style.WriteString("display: block; object-fit: contain; max-width: 100%;")
	setNodeAttr(img, "style", style.String())
}

func canvasDimension(canvas *html.Node, attr string) int {
	raw := strings.TrimSpace(nodeAttr(canvas, attr))
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0
	}
	return value
}

// styleValue extracts a declaration value from an inline style attribute.
func styleValue(style, property string) string {
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), property) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
