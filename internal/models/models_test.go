package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/desertthunder/wpx/internal/shared"
)

func TestPost(t *testing.T) {
	raw := `{
		"id": 12,
		"date": "2024-03-05T10:20:30",
		"slug": "hello",
		"status": "publish",
		"title": {"rendered": "Hello &amp; <em>welcome</em>"},
		"content": {"rendered": "<p>rendered</p>", "raw": "<p>raw</p>"},
		"excerpt": {"rendered": "<p>Short</p>\n"},
		"author": 3,
		"featured_media": 44,
		"categories": [2, 5],
		"_embedded": {
			"author": [{"id": 3, "name": "Alice"}],
			"wp:featuredmedia": [{"id": 44, "source_url": "https://blog.test/cover.jpg"}]
		}
	}`

	var p Post
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("failed to decode post: %v", err)
	}

	t.Run("editable fields", func(t *testing.T) {
		if got := p.EditableContent(); got != "<p>raw</p>" {
			t.Errorf("expected raw content, got %q", got)
		}
		if got := p.EditableTitle(); got != "Hello & welcome" {
			t.Errorf("expected plain title, got %q", got)
		}
		if got := p.EditableExcerpt(); got != "Short" {
			t.Errorf("expected plain excerpt, got %q", got)
		}

		p2 := p
		p2.Content.Raw = ""
		if got := p2.EditableContent(); got != "<p>rendered</p>" {
			t.Errorf("expected rendered fallback, got %q", got)
		}
	})

	t.Run("embedded", func(t *testing.T) {
		if got := p.AuthorName(); got != "Alice" {
			t.Errorf("expected Alice, got %q", got)
		}
		if got := p.FeaturedImageURL(); got != "https://blog.test/cover.jpg" {
			t.Errorf("unexpected featured image %q", got)
		}

		var bare Post
		if bare.AuthorName() != "" || bare.FeaturedImageURL() != "" {
			t.Error("expected empty values without _embedded")
		}
	})

	t.Run("published at", func(t *testing.T) {
		ts, err := p.PublishedAt()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ts.Year() != 2024 || ts.Month() != 3 || ts.Day() != 5 {
			t.Errorf("unexpected date %v", ts)
		}
	})
}

func TestPostQuery(t *testing.T) {
	tests := []struct {
		name  string
		query PostQuery
		want  string
	}{
		{"empty", PostQuery{}, ""},
		{"paging", PostQuery{Page: 2, PerPage: 5}, "page=2&per_page=5"},
		{
			"filters",
			PostQuery{Embed: true, Author: 3, Categories: []int{1, 2}, Exclude: []int{9}, Search: "go lang"},
			"_embed=1&author=3&categories=1%2C2&exclude=9&search=go+lang",
		},
		{"edit context", PostQuery{Slug: "hello", Edit: true}, "context=edit&slug=hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Values().Encode(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSettings(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s := DefaultSettings()
		if !s.EmailNotifications || s.Newsletter || s.DarkMode || s.Language != "en" || s.Timezone != "UTC" {
			t.Errorf("unexpected defaults: %+v", s)
		}
	})

	t.Run("set", func(t *testing.T) {
		s := DefaultSettings()
		for key, value := range map[string]string{
			"darkMode":           "true",
			"newsletter":         "1",
			"emailNotifications": "false",
			"language":           " fr ",
			"timezone":           "Europe/Paris",
		} {
			if err := s.Set(key, value); err != nil {
				t.Fatalf("Set(%s) failed: %v", key, err)
			}
		}

		want := Settings{DarkMode: true, Newsletter: true, Language: "fr", Timezone: "Europe/Paris"}
		if s != want {
			t.Errorf("expected %+v, got %+v", want, s)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		s := DefaultSettings()
		for _, kv := range [][2]string{{"darkMode", "maybe"}, {"language", " "}, {"timezone", ""}, {"theme", "dark"}} {
			if err := s.Set(kv[0], kv[1]); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("Set(%s, %q): expected ErrInvalidArgument, got %v", kv[0], kv[1], err)
			}
		}
		if s != DefaultSettings() {
			t.Errorf("failed sets should not change settings: %+v", s)
		}
	})
}

func TestUpload(t *testing.T) {
	if err := NewUpload(5, "https://blog.test/a.jpg", "a.jpg", "").Validate(); err != nil {
		t.Errorf("expected valid upload, got %v", err)
	}
	if err := NewUpload(0, "https://blog.test/a.jpg", "a.jpg", "").Validate(); !errors.Is(err, shared.ErrValidation) {
		t.Errorf("expected ErrValidation for missing media id, got %v", err)
	}
	if err := NewUpload(5, " ", "a.jpg", "").Validate(); !errors.Is(err, shared.ErrValidation) {
		t.Errorf("expected ErrValidation for missing url, got %v", err)
	}
}
