package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/wpx/internal/gallery"
	"github.com/desertthunder/wpx/internal/models"
)

var (
	_ list.Item = postItem{}
	_ list.Item = galleryItem{}
)

// postItem wraps [models.Post] to implement [list.Item].
type postItem struct {
	post models.Post
}

func (i postItem) FilterValue() string { return i.post.Title.Text() }
func (i postItem) Title() string {
	if t := i.post.Title.Text(); t != "" {
		return t
	}
	return "(untitled)"
}
func (i postItem) Description() string {
	desc := i.post.Status
	if t, err := i.post.PublishedAt(); err == nil {
		desc = fmt.Sprintf("%s • %s", desc, t.Format("Jan 2, 2006"))
	}
	return fmt.Sprintf("#%d • %s", i.post.ID, desc)
}

// galleryItem wraps [gallery.Item] to implement [list.Item].
type galleryItem struct {
	index int
	item  gallery.Item
}

func (i galleryItem) FilterValue() string { return i.item.Caption }
func (i galleryItem) Title() string {
	if i.item.Caption != "" {
		return fmt.Sprintf("%d. %s", i.index+1, i.item.Caption)
	}
	return fmt.Sprintf("%d. (no caption)", i.index+1)
}
func (i galleryItem) Description() string {
	return fmt.Sprintf("%s • %s", i.item.Origin, i.item.URL)
}

func postItems(posts []models.Post) []list.Item {
	items := make([]list.Item, len(posts))
	for i, p := range posts {
		items[i] = postItem{post: p}
	}
	return items
}

func galleryItems(src []gallery.Item) []list.Item {
	items := make([]list.Item, len(src))
	for i, it := range src {
		items[i] = galleryItem{index: i, item: it}
	}
	return items
}
