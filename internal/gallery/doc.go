// Package gallery recovers image galleries from WordPress post content and writes them back.
//
// # Markup
//
// Galleries are stored inside post content as plain HTML:
//
//	<div class="image-gallery">
//	  <div class="gallery-item">
//	    <img src="URL" alt="Gallery image" />
//	    <p class="image-caption">CAPTION</p>
//	  </div>
//	</div>
//
// This layout is a wire format: posts saved by earlier releases must keep parsing, so [Serialize] emits it byte for byte.
//
// # Extraction
//
// [Extract] strips comments, scripts and styles, parses the rest with golang.org/x/net/html and looks for
// .image-gallery > .gallery-item nodes. When none are found it falls back to every <img> in the document,
// taking the first non-empty following <p> (or <figcaption>) sibling as the caption. A paragraph is claimed by
// at most one image, and scanning stops at a sibling that holds another image.
//
// Extraction is pure and never fails; unparseable markup yields an empty list.
//
// # Editing
//
// [AppendUploaded], [RemoveAt] and [InsertAtCaret] never mutate their inputs.
package gallery
