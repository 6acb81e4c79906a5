package gallery

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	galleryClass = "image-gallery"
	itemClass    = "gallery-item"
	captionClass = "image-caption"
)

var (
	commentRe = regexp.MustCompile(`(?s)<!--.*?-->`)
	scriptRe  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	styleRe   = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`)
)

// Extractor parses gallery items out of post content.
//
// The zero value is usable and leaves image sources as written.
type Extractor struct {
	base *url.URL
}

// Option configures an [Extractor].
type Option func(*Extractor)

// WithBaseURL resolves relative image sources against raw.
// An empty or unparseable raw is ignored.
func WithBaseURL(raw string) Option {
	return func(e *Extractor) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return
		}
		if u, err := url.Parse(raw); err == nil && u.IsAbs() {
			e.base = u
		}
	}
}

// NewExtractor creates an [Extractor] with the given options.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses markup with a zero [Extractor].
func Extract(markup string) []Item {
	return (&Extractor{}).Extract(markup)
}

// Extract returns the gallery items found in markup in document order.
func (e *Extractor) Extract(markup string) []Item {
	if strings.TrimSpace(markup) == "" {
		return []Item{}
	}

	doc, err := html.Parse(strings.NewReader(stripNoise(markup)))
	if err != nil {
		return []Item{}
	}

	if items := e.fromGalleries(doc); len(items) > 0 {
		return items
	}
	return e.fromImages(doc)
}

// stripNoise removes comment, script and style blocks before parsing.
func stripNoise(markup string) string {
	markup = commentRe.ReplaceAllString(markup, "")
	markup = scriptRe.ReplaceAllString(markup, "")
	return styleRe.ReplaceAllString(markup, "")
}

// fromGalleries reads .image-gallery > .gallery-item nodes.
func (e *Extractor) fromGalleries(doc *html.Node) []Item {
	items := []Item{}
	seen := make(map[*html.Node]bool)

	for _, g := range findAll(doc, func(n *html.Node) bool { return hasClass(n, galleryClass) }, true) {
		for _, node := range findAll(g, func(n *html.Node) bool { return hasClass(n, itemClass) }, false) {
			if seen[node] {
				continue
			}
			seen[node] = true

			img := findFirst(node, isImage)
			if img == nil {
				continue
			}
			src, ok := e.source(img)
			if !ok {
				continue
			}

			var caption string
			if c := findFirst(node, func(n *html.Node) bool { return hasClass(n, captionClass) }); c != nil {
				caption = textContent(c)
			}
			items = append(items, e.item(len(items), src, caption))
		}
	}
	return items
}

// fromImages is the fallback for content without gallery markup.
func (e *Extractor) fromImages(doc *html.Node) []Item {
	items := []Item{}
	claimed := make(map[*html.Node]bool)

	for _, img := range findAll(doc, isImage, false) {
		src, ok := e.source(img)
		if !ok {
			continue
		}
		items = append(items, e.item(len(items), src, siblingCaption(img, claimed)))
	}
	return items
}

// siblingCaption scans the element siblings after img for the first text block with text.
func siblingCaption(img *html.Node, claimed map[*html.Node]bool) string {
	for sib := img.NextSibling; sib != nil; sib = sib.NextSibling {
		if sib.Type != html.ElementNode {
			continue
		}
		if isTextBlock(sib) {
			if claimed[sib] {
				continue
			}
			if text := textContent(sib); text != "" {
				claimed[sib] = true
				return text
			}
			continue
		}
		if isImage(sib) || findFirst(sib, isImage) != nil {
			break
		}
	}
	return ""
}

func (e *Extractor) source(img *html.Node) (string, bool) {
	src := strings.TrimSpace(attr(img, "src"))
	if src == "" {
		return "", false
	}
	if e.base == nil {
		return src, true
	}

	u, err := url.Parse(src)
	if err != nil || u.IsAbs() {
		return src, true
	}
	return e.base.ResolveReference(u).String(), true
}

// item synthesizes a stable id from position and source so that re-extracting the same content yields the same ids.
func (e *Extractor) item(index int, src, caption string) Item {
	id := uuid.NewSHA1(uuid.NameSpaceURL, fmt.Appendf(nil, "%d|%s", index, src))
	return Item{
		ID:      "existing-" + id.String(),
		URL:     src,
		Caption: caption,
		Origin:  OriginExtracted,
	}
}

func isImage(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.Img
}

func isTextBlock(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.DataAtom == atom.P || n.DataAtom == atom.Figcaption)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// findAll returns matching descendants of root in document order.
// With stopAtMatch, the subtree of a match is not searched.
func findAll(root *html.Node, match func(*html.Node) bool, stopAtMatch bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if match(c) {
				out = append(out, c)
				if stopAtMatch {
					continue
				}
			}
			walk(c)
		}
	}
	walk(root)
	return out
}

// findFirst returns the first matching descendant of root in document order.
func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if match(c) {
			return c
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

// textContent concatenates the text below n and trims it.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
