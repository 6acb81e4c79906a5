package gallery

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/desertthunder/wpx/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct {
	URL     string
	Caption string
}

func pairs(items []Item) []pair {
	out := make([]pair, len(items))
	for i, it := range items {
		out[i] = pair{URL: it.URL, Caption: it.Caption}
	}
	return out
}

func TestExtract(t *testing.T) {
	t.Run("gallery markup", func(t *testing.T) {
		markup := `<p>Intro</p>
<div class="image-gallery">
  <div class="gallery-item">
    <img src="https://blog.test/a.jpg" alt="Gallery image" />
    <p class="image-caption">  Sunset over the lake  </p>
  </div>
  <div class="gallery-item">
    <img src="https://blog.test/b.jpg" alt="Gallery image" />
  </div>
</div>
<img src="https://blog.test/ignored.jpg"><p>not a gallery caption</p>`

		items := Extract(markup)
		assert.Equal(t, []pair{
			{URL: "https://blog.test/a.jpg", Caption: "Sunset over the lake"},
			{URL: "https://blog.test/b.jpg", Caption: ""},
		}, pairs(items))

		for _, it := range items {
			assert.Equal(t, OriginExtracted, it.Origin)
			assert.True(t, strings.HasPrefix(it.ID, "existing-"), "id %q", it.ID)
		}
		assert.NotEqual(t, items[0].ID, items[1].ID)
	})

	t.Run("items without a source are dropped", func(t *testing.T) {
		markup := `<div class="image-gallery">
  <div class="gallery-item"><img alt="no src"><p class="image-caption">lost</p></div>
  <div class="gallery-item"><img src="   "></div>
  <div class="gallery-item"><p class="image-caption">no image</p></div>
  <div class="gallery-item"><img src="/kept.png"></div>
</div>`

		assert.Equal(t, []pair{{URL: "/kept.png"}}, pairs(Extract(markup)))
	})

	t.Run("multiple galleries keep document order", func(t *testing.T) {
		markup := `<div class="image-gallery"><div class="gallery-item"><img src="1.jpg"></div></div>
<p>between</p>
<div class="wide image-gallery"><div class="gallery-item extra"><img src="2.jpg"></div><div class="gallery-item"><img src="3.jpg"></div></div>`

		items := Extract(markup)
		require.Len(t, items, 3)
		assert.Equal(t, "1.jpg", items[0].URL)
		assert.Equal(t, "2.jpg", items[1].URL)
		assert.Equal(t, "3.jpg", items[2].URL)
	})

	t.Run("caption text spans nested elements", func(t *testing.T) {
		markup := `<div class="image-gallery"><div class="gallery-item"><img src="a.jpg"><p class="image-caption">Photo by <a href="#">Ana</a> &amp; co</p></div></div>`

		items := Extract(markup)
		require.Len(t, items, 1)
		assert.Equal(t, "Photo by Ana & co", items[0].Caption)
	})

	t.Run("empty and garbage input", func(t *testing.T) {
		assert.Empty(t, Extract(""))
		assert.Empty(t, Extract("   \n"))
		assert.Empty(t, Extract("<div><p>no images at all"))
		assert.Empty(t, Extract("<<<>>> </div></div> <img"))
	})
}

func TestExtractFallback(t *testing.T) {
	t.Run("bare images with adjacent paragraphs", func(t *testing.T) {
		markup := `<img src="a.jpg"><p>First caption</p><img src="b.jpg"><p>Second caption</p>`

		items := Extract(markup)
		assert.Equal(t, []pair{
			{URL: "a.jpg", Caption: "First caption"},
			{URL: "b.jpg", Caption: "Second caption"},
		}, pairs(items))
	})

	t.Run("skips non paragraph siblings and empty paragraphs", func(t *testing.T) {
		markup := `<div><img src="a.jpg"> some text <span>badge</span><p>   </p><br><p>Real caption</p><p>Later</p></div>`

		items := Extract(markup)
		require.Len(t, items, 1)
		assert.Equal(t, "Real caption", items[0].Caption)
	})

	t.Run("image without caption", func(t *testing.T) {
		items := Extract(`<div><p>Before</p><img src="a.jpg"></div>`)
		require.Len(t, items, 1)
		assert.Equal(t, "", items[0].Caption)
	})

	t.Run("paragraph is not claimed across another image", func(t *testing.T) {
		markup := `<div><img src="a.jpg"><img src="b.jpg"><p>Only for b</p></div>`

		assert.Equal(t, []pair{
			{URL: "a.jpg", Caption: ""},
			{URL: "b.jpg", Caption: "Only for b"},
		}, pairs(Extract(markup)))
	})

	t.Run("scan stops at a sibling holding an image", func(t *testing.T) {
		markup := `<div><img src="a.jpg"><a href="#"><img src="b.jpg"></a><p>After the link</p></div>`

		items := Extract(markup)
		require.Len(t, items, 2)
		assert.Equal(t, "", items[0].Caption)
		assert.Equal(t, "", items[1].Caption, "b has no following sibling inside the link")
	})

	t.Run("scanning skips other siblings but stops at one that holds another image", func(t *testing.T) {
		markup := `<div><img src="a.jpg"><span>badge</span><br><figure><img src="b.jpg"></figure><p>Not for a</p></div>`

		assert.Equal(t, []pair{
			{URL: "a.jpg", Caption: ""},
			{URL: "b.jpg", Caption: ""},
		}, pairs(Extract(markup)))

		without := Extract(`<div><img src="a.jpg"><span>badge</span><br><figure>chart</figure><p>For a</p></div>`)
		require.Len(t, without, 1)
		assert.Equal(t, "For a", without[0].Caption)
	})

	t.Run("figure captions", func(t *testing.T) {
		markup := `<figure class="wp-block-image"><img src="a.jpg" alt=""><figcaption>Block editor caption</figcaption></figure>`

		items := Extract(markup)
		require.Len(t, items, 1)
		assert.Equal(t, "Block editor caption", items[0].Caption)
	})
}

func TestExtractNoise(t *testing.T) {
	t.Run("commented out gallery", func(t *testing.T) {
		markup := `<p>Text</p>
<!--
<div class="image-gallery">
  <div class="gallery-item"><img src="fake.jpg"><p class="image-caption">fake</p></div>
</div>
-->`
		assert.Empty(t, Extract(markup))
	})

	t.Run("commented out gallery next to a real one", func(t *testing.T) {
		markup := `<!-- <div class="image-gallery"><div class="gallery-item"><img src="fake.jpg"></div></div> -->
<div class="image-gallery"><div class="gallery-item"><img src="real.jpg"></div></div>`

		assert.Equal(t, []pair{{URL: "real.jpg"}}, pairs(Extract(markup)))
	})

	t.Run("scripts and styles", func(t *testing.T) {
		markup := `<script type="text/javascript">
  document.write('<div class="image-gallery"><div class="gallery-item"><img src="s.jpg"></div></div>');
</script>
<STYLE>.image-gallery { display: grid }</STYLE>
<img src="kept.jpg"><p>kept</p>`

		assert.Equal(t, []pair{{URL: "kept.jpg", Caption: "kept"}}, pairs(Extract(markup)))
	})
}

func TestExtractorBaseURL(t *testing.T) {
	markup := `<div class="image-gallery">
  <div class="gallery-item"><img src="/wp-content/uploads/a.jpg"></div>
  <div class="gallery-item"><img src="b.jpg"></div>
  <div class="gallery-item"><img src="https://cdn.test/c.jpg"></div>
</div>`

	items := NewExtractor(WithBaseURL("https://blog.test/2024/post/")).Extract(markup)
	require.Len(t, items, 3)
	assert.Equal(t, "https://blog.test/wp-content/uploads/a.jpg", items[0].URL)
	assert.Equal(t, "https://blog.test/2024/post/b.jpg", items[1].URL)
	assert.Equal(t, "https://cdn.test/c.jpg", items[2].URL)

	t.Run("invalid base is ignored", func(t *testing.T) {
		items := NewExtractor(WithBaseURL("not a url"), WithBaseURL("")).Extract(markup)
		require.Len(t, items, 3)
		assert.Equal(t, "/wp-content/uploads/a.jpg", items[0].URL)
	})
}

func TestExtractIdempotent(t *testing.T) {
	for name, markup := range map[string]string{
		"gallery":  `<div class="image-gallery"><div class="gallery-item"><img src="a.jpg"><p class="image-caption">A</p></div><div class="gallery-item"><img src="a.jpg"></div></div>`,
		"fallback": `<img src="a.jpg"><p>A</p><img src="b.jpg">`,
	} {
		t.Run(name, func(t *testing.T) {
			first := Extract(markup)
			second := Extract(markup)
			require.NotEmpty(t, first)
			assert.Equal(t, first, second)

			ids := map[string]bool{}
			for _, it := range first {
				assert.False(t, ids[it.ID], "duplicate id %s", it.ID)
				ids[it.ID] = true
			}
		})
	}
}

func TestSerialize(t *testing.T) {
	t.Run("exact markup", func(t *testing.T) {
		list := []Item{
			{ID: "1", URL: "https://blog.test/a.jpg", Caption: "Sunset"},
			{ID: "2", URL: "https://blog.test/b.jpg"},
		}

		got, err := Serialize(list)
		require.NoError(t, err)

		want := "<div class=\"image-gallery\">\n" +
			"  <div class=\"gallery-item\">\n" +
			"    <img src=\"https://blog.test/a.jpg\" alt=\"Gallery image\" />\n" +
			"    <p class=\"image-caption\">Sunset</p>\n" +
			"  </div>\n" +
			"  <div class=\"gallery-item\">\n" +
			"    <img src=\"https://blog.test/b.jpg\" alt=\"Gallery image\" />\n" +
			"  </div>\n" +
			"</div>\n"
		assert.Equal(t, want, got)
	})

	t.Run("escapes values", func(t *testing.T) {
		got, err := Serialize([]Item{{URL: `https://blog.test/a.jpg?w=1&h="2"`, Caption: "<b>Bold</b> & more"}})
		require.NoError(t, err)
		assert.Contains(t, got, `src="https://blog.test/a.jpg?w=1&amp;h=&#34;2&#34;"`)
		assert.Contains(t, got, `&lt;b&gt;Bold&lt;/b&gt; &amp; more`)
	})

	t.Run("blank caption omits paragraph", func(t *testing.T) {
		got, err := Serialize([]Item{{URL: "a.jpg", Caption: "   "}})
		require.NoError(t, err)
		assert.NotContains(t, got, "image-caption")
	})

	t.Run("empty gallery", func(t *testing.T) {
		got, err := Serialize(nil)
		assert.ErrorIs(t, err, shared.ErrEmptyGallery)
		assert.Empty(t, got)
	})
}

func TestRoundTrip(t *testing.T) {
	list := []Item{
		{URL: "https://blog.test/wp-content/uploads/a.jpg", Caption: "First"},
		{URL: "https://blog.test/b.jpg?size=large&crop=1", Caption: `Quotes " and 'apostrophes' & <tags>`},
		{URL: "/relative/c.png"},
		{URL: "https://blog.test/d.jpg", Caption: "  padded  "},
		{URL: "https://blog.test/é.jpg", Caption: "Ünïcödé ✓"},
		{URL: "https://blog.test/e.jpg", Caption: "line1\r\nline2\rline3"},
	}

	markup, err := Serialize(list)
	require.NoError(t, err)

	got := Extract(markup)
	assert.Equal(t, []pair{
		{URL: "https://blog.test/wp-content/uploads/a.jpg", Caption: "First"},
		{URL: "https://blog.test/b.jpg?size=large&crop=1", Caption: `Quotes " and 'apostrophes' & <tags>`},
		{URL: "/relative/c.png"},
		{URL: "https://blog.test/d.jpg", Caption: "padded"},
		{URL: "https://blog.test/é.jpg", Caption: "Ünïcödé ✓"},
		{URL: "https://blog.test/e.jpg", Caption: "line1\r\nline2\rline3"},
	}, pairs(got))

	t.Run("survives being embedded in content", func(t *testing.T) {
		content, _ := InsertAtCaret(markup, "<p>Before</p><p>After</p>", 13, 13)
		assert.Equal(t, pairs(got), pairs(Extract(content)))
	})
}

func TestAppendUploaded(t *testing.T) {
	base := Extract(`<img src="a.jpg">`)
	require.Len(t, base, 1)

	next := AppendUploaded(Item{ID: "42", URL: "https://blog.test/new.jpg", Caption: "fresh"}, base)
	require.Len(t, next, 2)
	assert.Len(t, base, 1, "input must not change")
	assert.Equal(t, OriginExtracted, next[0].Origin)
	assert.Equal(t, OriginUploaded, next[1].Origin)
	assert.Equal(t, "42", next[1].ID)

	t.Run("no dedup", func(t *testing.T) {
		again := AppendUploaded(Item{ID: "42", URL: "https://blog.test/new.jpg"}, next)
		assert.Len(t, again, 3)
	})

	t.Run("generates missing id", func(t *testing.T) {
		out := AppendUploaded(Item{URL: "x.jpg"}, nil)
		require.Len(t, out, 1)
		assert.NotEmpty(t, out[0].ID)
	})

	extracted, uploaded := Count(next)
	assert.Equal(t, 1, extracted)
	assert.Equal(t, 1, uploaded)
}

func TestRemoveAt(t *testing.T) {
	list := []Item{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	out, err := RemoveAt(1, list)
	require.NoError(t, err)
	assert.Equal(t, []Item{{ID: "a"}, {ID: "c"}}, out)
	assert.Equal(t, []Item{{ID: "a"}, {ID: "b"}, {ID: "c"}}, list, "input must not change")

	for _, idx := range []int{-1, 3, 100} {
		same, err := RemoveAt(idx, list)
		assert.ErrorIs(t, err, shared.ErrIndexOutOfRange)
		assert.Equal(t, list, same)
	}

	_, err = RemoveAt(0, nil)
	assert.ErrorIs(t, err, shared.ErrIndexOutOfRange)
}

func TestInsertAtCaret(t *testing.T) {
	markup, err := Serialize([]Item{{URL: "https://blog.test/a.jpg", Caption: "A"}})
	require.NoError(t, err)

	t.Run("between two characters", func(t *testing.T) {
		content, caret := InsertAtCaret(markup, "AB", 1, 1)
		assert.True(t, strings.HasPrefix(content, "A"))
		assert.True(t, strings.HasSuffix(content, "B"))
		assert.Contains(t, content, markup)
		assert.Equal(t, "A\n"+markup+"\nB", content)
		assert.Equal(t, 1+utf8.RuneCountInString(markup)+2, caret)
	})

	t.Run("replaces the selection", func(t *testing.T) {
		content, caret := InsertAtCaret("X", "hello world", 6, 11)
		assert.Equal(t, "hello \nX\n", content)
		assert.Equal(t, 9, caret)
	})

	t.Run("reversed selection", func(t *testing.T) {
		content, _ := InsertAtCaret("X", "hello world", 11, 6)
		assert.Equal(t, "hello \nX\n", content)
	})

	t.Run("offsets are clamped", func(t *testing.T) {
		content, caret := InsertAtCaret("X", "abc", -5, 99)
		assert.Equal(t, "\nX\n", content)
		assert.Equal(t, 3, caret)

		content, caret = InsertAtCaret("X", "abc", 99, 99)
		assert.Equal(t, "abc\nX\n", content)
		assert.Equal(t, 6, caret)
	})

	t.Run("offsets count runes", func(t *testing.T) {
		content, caret := InsertAtCaret("X", "héllo", 2, 2)
		assert.Equal(t, "hé\nX\nllo", content)
		assert.Equal(t, 5, caret)
	})
}

func TestInsert(t *testing.T) {
	t.Run("empty gallery leaves content unchanged", func(t *testing.T) {
		content, caret, err := Insert(nil, "AB", 1, 1)
		assert.ErrorIs(t, err, shared.ErrEmptyGallery)
		assert.Equal(t, "AB", content)
		assert.Equal(t, 1, caret)
	})

	t.Run("inserts serialized list", func(t *testing.T) {
		list := []Item{{URL: "a.jpg"}}
		content, caret, err := Insert(list, "AB", 1, 1)
		require.NoError(t, err)

		markup, _ := Serialize(list)
		assert.Equal(t, "A\n"+markup+"\nB", content)
		assert.Equal(t, 1+len(markup)+2, caret)
		assert.Equal(t, []pair{{URL: "a.jpg"}}, pairs(Extract(content)))
	})
}

func TestOrigin(t *testing.T) {
	assert.Equal(t, "extracted", OriginExtracted.String())
	assert.Equal(t, "uploaded", OriginUploaded.String())

	text, err := OriginUploaded.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "uploaded", string(text))
}
