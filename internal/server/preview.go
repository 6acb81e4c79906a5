package server

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"

	"github.com/desertthunder/wpx/internal/gallery"
	"github.com/desertthunder/wpx/internal/models"
)

// Page is what the preview renders.
type Page struct {
	Title   string
	Meta    string // author, date or source file
	Content string // trusted HTML
	Gallery []gallery.Item
}

// PageSource builds the page for each request.
type PageSource func(ctx context.Context) (*Page, error)

// PostPage builds a [Page] from a post, extracting its gallery against baseURL.
func PostPage(post *models.Post, baseURL string) *Page {
	content := post.EditableContent()
	meta := post.Status
	if author := post.AuthorName(); author != "" {
		meta = author + " · " + meta
	}
	if t, err := post.PublishedAt(); err == nil {
		meta += " · " + t.Format("Jan 2, 2006")
	}

	return &Page{
		Title:   post.EditableTitle(),
		Meta:    meta,
		Content: content,
		Gallery: gallery.NewExtractor(gallery.WithBaseURL(baseURL)).Extract(content),
	}
}

var previewTemplate = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>{{.Title}} · wpx preview</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               max-width: 760px; margin: 2rem auto; padding: 0 1rem; color: #222; line-height: 1.6; }
        .meta { color: #777; font-size: 0.9rem; }
        .image-gallery { display: grid; grid-template-columns: repeat(auto-fill, minmax(200px, 1fr)); gap: 1rem; }
        .gallery-item img { width: 100%; border-radius: 4px; }
        .image-caption { color: #555; font-size: 0.85rem; margin: 0.25rem 0 0 0; }
        aside { border-top: 1px solid #ddd; margin-top: 2rem; font-size: 0.85rem; }
    </style>
</head>
<body>
    <h1>{{.Title}}</h1>
    {{with .Meta}}<p class="meta">{{.}}</p>{{end}}
    <article>{{.HTML}}</article>
    <aside>
        <h2>Gallery ({{len .Gallery}})</h2>
        {{if .Gallery}}<ol>{{range .Gallery}}
            <li><a href="{{.URL}}">{{.URL}}</a>{{with .Caption}} - {{.}}{{end}} ({{.Origin}})</li>{{end}}
        </ol>{{else}}<p>No gallery images found.</p>{{end}}
    </aside>
</body>
</html>
`))

type pageView struct {
	*Page
	HTML template.HTML
}

// PreviewHandler serves the preview page and its gallery.
// Implements the Handler interface for registration with a Router.
type PreviewHandler struct {
	source PageSource
}

// NewPreviewHandler creates a handler rendering pages from source.
func NewPreviewHandler(source PageSource) *PreviewHandler {
	return &PreviewHandler{source: source}
}

// Routes returns the page at / and its gallery at /gallery.json.
func (h *PreviewHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/{$}", Handler: h.servePage},
		{Method: http.MethodGet, Path: "/gallery.json", Handler: h.serveGallery},
	}
}

// load builds the page, answering 502 when the source fails.
func (h *PreviewHandler) load(w http.ResponseWriter, r *http.Request) (*Page, bool) {
	page, err := h.source(r.Context())
	if err != nil {
		http.Error(w, "Failed to load preview: "+err.Error(), http.StatusBadGateway)
		return nil, false
	}
	return page, true
}

func (h *PreviewHandler) servePage(w http.ResponseWriter, r *http.Request) {
	page, ok := h.load(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := previewTemplate.Execute(&buf, pageView{Page: page, HTML: template.HTML(page.Content)}); err != nil {
		http.Error(w, "Failed to render preview", http.StatusInternalServerError)
		return
	}
	writeBody(w, r, "text/html; charset=utf-8", buf.Bytes())
}

func (h *PreviewHandler) serveGallery(w http.ResponseWriter, r *http.Request) {
	page, ok := h.load(w, r)
	if !ok {
		return
	}

	items := page.Gallery
	if items == nil {
		items = []gallery.Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		http.Error(w, "Failed to encode gallery", http.StatusInternalServerError)
		return
	}
	writeBody(w, r, "application/json", append(data, '\n'))
}

// writeBody sends body with its length, or only the headers for a HEAD request.
func writeBody(w http.ResponseWriter, r *http.Request, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	w.Write(body)
}
