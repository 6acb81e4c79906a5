// package formatter renders posts, galleries and settings to the output formats of the CLI (JSON, CSV, Markdown, YAML, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"

	"github.com/desertthunder/wpx/internal/gallery"
	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/shared"
)

// Formats accepted by [ExportPosts].
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "text"
	FormatYAML     = "yaml"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// MarkdownToHTML converts Markdown to HTML suitable for post content.
//
// Raw HTML passes through untouched so gallery markup survives conversion.
func MarkdownToHTML(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := markdown.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("%w: markdown: %v", shared.ErrParseFailure, err)
	}
	return buf.Bytes(), nil
}

// ExportPosts renders posts in format: json, csv, markdown or text.
func ExportPosts(posts []models.Post, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return shared.MarshalJSON(posts, true)
	case FormatCSV:
		return ExportPostsToCSV(posts)
	case FormatMarkdown:
		return ExportPostsToMarkdown(posts)
	case FormatText, "txt", "":
		return ExportPostsToText(posts)
	default:
		return nil, fmt.Errorf("%w: unknown format %q (expected json, csv, markdown or text)", shared.ErrInvalidFlag, format)
	}
}

// ExportPostsToCSV converts posts to CSV with columns: ID, Date, Status, Slug, Title, Author, Link
func ExportPostsToCSV(posts []models.Post) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Date", "Status", "Slug", "Title", "Author", "Link"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, p := range posts {
		record := []string{
			strconv.Itoa(p.ID),
			postDate(p),
			p.Status,
			p.Slug,
			p.Title.Text(),
			p.AuthorName(),
			p.Link,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportPostsToMarkdown converts posts to a Markdown list with excerpts
func ExportPostsToMarkdown(posts []models.Post) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Posts\n\n")
	fmt.Fprintf(&buf, "**Total**: %d\n\n", len(posts))

	for _, p := range posts {
		title := p.Title.Text()
		if p.Link != "" {
			fmt.Fprintf(&buf, "## [%s](%s)\n\n", title, p.Link)
		} else {
			fmt.Fprintf(&buf, "## %s\n\n", title)
		}

		meta := []string{postDate(p), p.Status}
		if author := p.AuthorName(); author != "" {
			meta = append(meta, "by "+author)
		}
		fmt.Fprintf(&buf, "_%s_\n\n", strings.Join(meta, " · "))

		if img := p.FeaturedImageURL(); img != "" {
			fmt.Fprintf(&buf, "![Featured image](%s)\n\n", img)
		}
		if excerpt := p.Excerpt.Text(); excerpt != "" {
			fmt.Fprintf(&buf, "%s\n\n", excerpt)
		}
	}

	return buf.Bytes(), nil
}

// ExportPostsToText converts posts to plain text, one per line
func ExportPostsToText(posts []models.Post) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Posts: %d\n\n", len(posts))
	for i, p := range posts {
		fmt.Fprintf(&buf, "%d. [%d] %s (%s, %s)\n", i+1, p.ID, p.Title.Text(), p.Status, postDate(p))
	}

	return buf.Bytes(), nil
}

// ExportPostToText renders a single post with its author, related posts and gallery
func ExportPostToText(p *models.Post, related []models.Post) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", p.Title.Text())
	fmt.Fprintf(&buf, "%s\n\n", strings.Repeat("=", len([]rune(p.Title.Text()))))
	fmt.Fprintf(&buf, "ID: %d\nSlug: %s\nStatus: %s\nDate: %s\n", p.ID, p.Slug, p.Status, postDate(*p))
	if author := p.AuthorName(); author != "" {
		fmt.Fprintf(&buf, "Author: %s\n", author)
	}
	if p.Link != "" {
		fmt.Fprintf(&buf, "Link: %s\n", p.Link)
	}
	if img := p.FeaturedImageURL(); img != "" {
		fmt.Fprintf(&buf, "Featured image: %s\n", img)
	}

	content := models.Rendered{Rendered: p.Content.Rendered}.Text()
	if content != "" {
		fmt.Fprintf(&buf, "\n%s\n", content)
	}

	if items := gallery.Extract(p.EditableContent()); len(items) > 0 {
		buf.WriteString("\nGallery\n-------\n")
		buf.Write(galleryLines(items))
	}

	if len(related) > 0 {
		buf.WriteString("\nRelated posts\n-------------\n")
		for _, r := range related {
			fmt.Fprintf(&buf, "- %s (%s)\n", r.Title.Text(), r.Slug)
		}
	}

	return buf.Bytes(), nil
}

// ExportGallery renders gallery items as json, text, or the gallery markup itself ("html").
func ExportGallery(items []gallery.Item, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return shared.MarshalJSON(items, true)
	case FormatYAML:
		return yaml.Marshal(items)
	case "html":
		markup, err := gallery.Serialize(items)
		if err != nil {
			return nil, err
		}
		return []byte(markup), nil
	case FormatText, "":
		if len(items) == 0 {
			return []byte("No gallery images found\n"), nil
		}
		return galleryLines(items), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q (expected json, yaml, html or text)", shared.ErrInvalidFlag, format)
	}
}

// ExportSettings renders settings as json or yaml.
func ExportSettings(s models.Settings, format string) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return shared.MarshalJSON(s, true)
	case FormatYAML, "yml":
		return yaml.Marshal(s)
	default:
		return nil, fmt.Errorf("%w: unknown format %q (expected json or yaml)", shared.ErrInvalidFlag, format)
	}
}

// WritePostsExport writes posts in format to path.
//
// Defaults to posts.{ext} as the filename.
func WritePostsExport(posts []models.Post, format, path string) (string, error) {
	data, err := ExportPosts(posts, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = "posts." + Extension(format)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// Extension returns the file extension for format.
func Extension(format string) string {
	switch format {
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	case FormatMarkdown:
		return "md"
	case FormatYAML:
		return "yaml"
	default:
		return "txt"
	}
}

func galleryLines(items []gallery.Item) []byte {
	var buf bytes.Buffer
	for i, it := range items {
		fmt.Fprintf(&buf, "%d. %s", i+1, it.URL)
		if it.Caption != "" {
			fmt.Fprintf(&buf, " - %s", it.Caption)
		}
		fmt.Fprintf(&buf, " [%s]\n", it.Origin)
	}
	return buf.Bytes()
}

func postDate(p models.Post) string {
	if t, err := p.PublishedAt(); err == nil {
		return t.Format("2006-01-02")
	}
	return p.Date
}
