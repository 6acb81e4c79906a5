package models

import (
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var tagRe = regexp.MustCompile(`<[^>]*>`)

// Rendered is a WordPress text field. Raw is only present when requested with context=edit.
type Rendered struct {
	Rendered  string `json:"rendered"`
	Raw       string `json:"raw,omitempty"`
	Protected bool   `json:"protected,omitempty"`
}

// Text returns the rendered value with tags removed and entities decoded.
func (r Rendered) Text() string {
	return strings.TrimSpace(html.UnescapeString(tagRe.ReplaceAllString(r.Rendered, "")))
}

// Author is the embedded author of a post.
type Author struct {
	ID         int               `json:"id"`
	Name       string            `json:"name"`
	Slug       string            `json:"slug"`
	AvatarURLs map[string]string `json:"avatar_urls,omitempty"`
}

// Embedded holds the resources requested with _embed.
type Embedded struct {
	Author        []Author `json:"author,omitempty"`
	FeaturedMedia []Media  `json:"wp:featuredmedia,omitempty"`
}

// Post is a WordPress post as returned by /wp/v2/posts.
type Post struct {
	ID            int       `json:"id"`
	Date          string    `json:"date"`
	Modified      string    `json:"modified,omitempty"`
	Slug          string    `json:"slug"`
	Status        string    `json:"status"`
	Link          string    `json:"link"`
	Title         Rendered  `json:"title"`
	Content       Rendered  `json:"content"`
	Excerpt       Rendered  `json:"excerpt"`
	Author        int       `json:"author"`
	FeaturedMedia int       `json:"featured_media"`
	Categories    []int     `json:"categories"`
	Embedded      *Embedded `json:"_embedded,omitempty"`
}

// EditableContent prefers raw content, which keeps markup exactly as saved.
func (p Post) EditableContent() string {
	if p.Content.Raw != "" {
		return p.Content.Raw
	}
	return p.Content.Rendered
}

// EditableTitle prefers the raw title.
func (p Post) EditableTitle() string {
	if p.Title.Raw != "" {
		return p.Title.Raw
	}
	return p.Title.Text()
}

// EditableExcerpt prefers the raw excerpt.
func (p Post) EditableExcerpt() string {
	if p.Excerpt.Raw != "" {
		return p.Excerpt.Raw
	}
	return p.Excerpt.Text()
}

// AuthorName returns the embedded author's name or "".
func (p Post) AuthorName() string {
	if p.Embedded == nil || len(p.Embedded.Author) == 0 {
		return ""
	}
	return p.Embedded.Author[0].Name
}

// FeaturedImageURL returns the embedded featured media source or "".
func (p Post) FeaturedImageURL() string {
	if p.Embedded == nil || len(p.Embedded.FeaturedMedia) == 0 {
		return ""
	}
	return p.Embedded.FeaturedMedia[0].SourceURL
}

// PublishedAt parses Date, which WordPress sends without a zone in site local time.
func (p Post) PublishedAt() (time.Time, error) {
	return time.Parse("2006-01-02T15:04:05", p.Date)
}

// Category is a WordPress post category.
type Category struct {
	ID          int    `json:"id"`
	Count       int    `json:"count"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Parent      int    `json:"parent"`
}

// User is a WordPress user from /wp/v2/users.
type User struct {
	ID          int               `json:"id"`
	Username    string            `json:"username,omitempty"`
	Name        string            `json:"name"`
	Email       string            `json:"email,omitempty"`
	Description string            `json:"description"`
	Slug        string            `json:"slug"`
	Link        string            `json:"link"`
	AvatarURLs  map[string]string `json:"avatar_urls,omitempty"`
}

// UserUpdate is the profile payload for POST /wp/v2/users/{id}.
type UserUpdate struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Description string `json:"description"`
}

// Media is a WordPress media item.
type Media struct {
	ID        int      `json:"id"`
	SourceURL string   `json:"source_url"`
	Title     Rendered `json:"title"`
	MediaType string   `json:"media_type,omitempty"`
	MimeType  string   `json:"mime_type,omitempty"`
}

// SearchResult is one hit from /wp/v2/search.
type SearchResult struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
}

// PostPayload is the body of a post create or update.
type PostPayload struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	Excerpt       string `json:"excerpt"`
	Status        string `json:"status"`
	FeaturedMedia int    `json:"featured_media"`
}

// PostQuery filters /wp/v2/posts. Zero fields are not sent.
type PostQuery struct {
	Page       int
	PerPage    int
	Author     int
	Categories []int
	Exclude    []int
	Slug       string
	Search     string
	Status     string
	Embed      bool
	Edit       bool
}

// Values encodes the query parameters.
func (q PostQuery) Values() url.Values {
	v := url.Values{}
	if q.Embed {
		v.Set("_embed", "1")
	}
	if q.Edit {
		v.Set("context", "edit")
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	if q.Author > 0 {
		v.Set("author", strconv.Itoa(q.Author))
	}
	if len(q.Categories) > 0 {
		v.Set("categories", joinInts(q.Categories))
	}
	if len(q.Exclude) > 0 {
		v.Set("exclude", joinInts(q.Exclude))
	}
	if q.Slug != "" {
		v.Set("slug", q.Slug)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	return v
}

// PostPage is one page of posts with the totals from X-WP-Total and X-WP-TotalPages.
type PostPage struct {
	Posts      []Post `json:"posts"`
	Total      int    `json:"total"`
	TotalPages int    `json:"total_pages"`
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
