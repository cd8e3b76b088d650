package report

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultCharset is the charset meta value emitted unless overridden.
const DefaultCharset = "utf-8"

// PrepareOptions configures export document assembly.
type PrepareOptions struct {
	// Title of the generated HTML document.
	Title string
	// Stylesheets lists external stylesheet URLs injected in order.
	Stylesheets []string
	// InlineStyles are CSS blocks appended after the layout-derived blocks.
	InlineStyles []string
	// IncludePrintStyles controls injection of the base print stylesheet and
	// page layout variables. Enabled by default so the PDF output mirrors the
	// in-app layout.
	IncludePrintStyles *bool
	// PageLayout overrides the default page layout tokens.
	PageLayout *LayoutOverrides
	// Charset is the meta charset value. Nil defaults to utf-8; a pointer to
	// an empty string omits the charset meta entirely.
	Charset *string
	// Registry overrides the widget serializer registry.
	Registry *Registry
	// Logger receives per-widget snapshot warnings.
	Logger Logger
}

// PrepareResult is the output of export document assembly.
type PrepareResult struct {
	// HTML is the fully serialized document including the doctype.
	HTML string
	// Body is the cloned content after widget serialization, living in Doc.
	Body *html.Node
	// Doc is the generated export document.
	Doc *html.Node
	// Layout is the page layout resolved for this export.
	Layout PageLayout
}

// PrepareHTML assembles a standalone export document from a live subtree.
// A fresh document shell is created, the subtree is cloned into it, head
// assets are injected in fixed order (charset meta, stylesheet links, style
// blocks), and widget snapshots are serialized against the clone. The source
// tree is never mutated.
func PrepareHTML(sourceBody *html.Node, opts PrepareOptions) (PrepareResult, error) {
	if sourceBody == nil {
		return PrepareResult{}, NewError(KindValidation, "a source subtree is required to prepare an export document", nil)
	}

	doc, htmlEl, head, body := newDocumentShell(opts.Title)

	var content *html.Node
	if isElement(sourceBody, atom.Body) {
		// Carry the source body's attributes onto the new document body and
		// import its children directly.
		body.Attr = nil
		for _, a := range sourceBody.Attr {
			setNodeAttr(body, a.Key, a.Val)
		}
		for c := sourceBody.FirstChild; c != nil; c = c.NextSibling {
			body.AppendChild(cloneTree(c))
		}
		content = body
	} else {
		content = cloneTree(sourceBody)
		body.AppendChild(content)
	}

	layout, inlineStyles := collectInlineStyles(opts)
	injectHeadAssets(head, opts.Stylesheets, inlineStyles, opts.Charset)

	if err := SerializeWidgets(SerializeParams{
		SourceRoot: sourceBody,
		TargetRoot: content,
		Registry:   opts.Registry,
		Logger:     opts.Logger,
	}); err != nil {
		return PrepareResult{}, err
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n")
	if err := html.Render(&buf, htmlEl); err != nil {
		return PrepareResult{}, NewError(KindInternal, "failed to serialize export document", err)
	}

	return PrepareResult{
		HTML:   buf.String(),
		Body:   content,
		Doc:    doc,
		Layout: layout,
	}, nil
}

func newDocumentShell(title string) (doc, htmlEl, head, body *html.Node) {
	doc = &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	htmlEl = newElement("html")
	head = newElement("head")
	body = newElement("body")
	htmlEl.AppendChild(head)
	htmlEl.AppendChild(body)
	doc.AppendChild(htmlEl)

	if title != "" {
		titleEl := newElement("title")
		titleEl.AppendChild(newTextNode(title))
		head.AppendChild(titleEl)
	}
	return doc, htmlEl, head, body
}

func collectInlineStyles(opts PrepareOptions) (PageLayout, []string) {
	layout, layoutBlocks := PageLayoutStyles(opts.PageLayout)

	includePrint := true
	if opts.IncludePrintStyles != nil {
		includePrint = *opts.IncludePrintStyles
	}
	if !includePrint {
		return layout, append([]string{}, opts.InlineStyles...)
	}
	return layout, append(layoutBlocks, opts.InlineStyles...)
}

func injectHeadAssets(head *html.Node, stylesheets, inlineStyles []string, charset *string) {
	value := DefaultCharset
	if charset != nil {
		value = strings.ToLower(strings.TrimSpace(*charset))
	}
	if value != "" {
		meta := newElement("meta")
		setNodeAttr(meta, "charset", value)
		head.AppendChild(meta)
	}

	for _, href := range stylesheets {
		if href == "" {
			continue
		}
		link := newElement("link")
		setNodeAttr(link, "rel", "stylesheet")
		setNodeAttr(link, "href", href)
		head.AppendChild(link)
	}

	for _, css := range inlineStyles {
		if css == "" {
			continue
		}
		style := newElement("style")
		setNodeAttr(style, "type", "text/css")
		style.AppendChild(newTextNode(css))
		head.AppendChild(style)
	}
}
