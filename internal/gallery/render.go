package gallery

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/desertthunder/wpx/internal/shared"
)

// Serialize renders list as gallery markup.
//
// Captions are trimmed and an item with an empty caption gets no caption paragraph.
// URLs and captions are HTML-escaped, with carriage returns as &#13;, so [Extract] reads back the same values.
func Serialize(list []Item) (string, error) {
	if len(list) == 0 {
		return "", shared.ErrEmptyGallery
	}

	var b strings.Builder
	b.WriteString(`<div class="image-gallery">` + "\n")
	for _, it := range list {
		b.WriteString(`  <div class="gallery-item">` + "\n")
		fmt.Fprintf(&b, `    <img src="%s" alt="Gallery image" />`+"\n", escape(it.URL))
		if caption := strings.TrimSpace(it.Caption); caption != "" {
			fmt.Fprintf(&b, `    <p class="image-caption">%s</p>`+"\n", escape(caption))
		}
		b.WriteString("  </div>\n")
	}
	b.WriteString("</div>\n")
	return b.String(), nil
}

// InsertAtCaret replaces the selection [start, end) of content with markup framed by newlines.
//
// Offsets count runes and are clamped to the content; a reversed selection is swapped.
// The returned caret sits right after the inserted block.
func InsertAtCaret(markup, content string, start, end int) (string, int) {
	runes := []rune(content)
	start = clamp(start, 0, len(runes))
	end = clamp(end, 0, len(runes))
	if end < start {
		start, end = end, start
	}

	block := "\n" + markup + "\n"

	var b strings.Builder
	b.Grow(len(content) + len(block))
	b.WriteString(string(runes[:start]))
	b.WriteString(block)
	b.WriteString(string(runes[end:]))

	return b.String(), start + utf8.RuneCountInString(block)
}

// Insert serializes list and splices it into content at the selection.
//
// An empty list returns content unchanged along with [shared.ErrEmptyGallery].
func Insert(list []Item, content string, start, end int) (string, int, error) {
	markup, err := Serialize(list)
	if err != nil {
		return content, clamp(start, 0, utf8.RuneCountInString(content)), err
	}
	out, caret := InsertAtCaret(markup, content, start, end)
	return out, caret, nil
}

// escape HTML-escapes s and writes carriage returns as character references, which the
// parser would otherwise fold into newlines.
func escape(s string) string {
	return strings.ReplaceAll(html.EscapeString(s), "\r", "&#13;")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
