package gallery

import (
	"fmt"

	"github.com/desertthunder/wpx/internal/shared"
	"github.com/google/uuid"
)

// Origin records where a gallery item came from.
type Origin int

const (
	// OriginExtracted items were parsed out of existing post content.
	OriginExtracted Origin = iota
	// OriginUploaded items were added by a media upload in this editing session.
	OriginUploaded
)

func (o Origin) String() string {
	switch o {
	case OriginExtracted:
		return "extracted"
	case OriginUploaded:
		return "uploaded"
	default:
		return ""
	}
}

// MarshalText renders the origin by name in JSON and YAML output.
func (o Origin) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Item is one image of a gallery.
type Item struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Caption string `json:"caption"`
	Origin  Origin `json:"origin"`
}

// AppendUploaded returns a new list with item appended as [OriginUploaded].
//
// No deduplication is done: uploading the same file twice yields two items.
func AppendUploaded(item Item, list []Item) []Item {
	item.Origin = OriginUploaded
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	out := make([]Item, len(list), len(list)+1)
	copy(out, list)
	return append(out, item)
}

// RemoveAt returns a new list without the item at index.
func RemoveAt(index int, list []Item) ([]Item, error) {
	if index < 0 || index >= len(list) {
		return list, fmt.Errorf("%w: %d (gallery has %d items)", shared.ErrIndexOutOfRange, index, len(list))
	}

	out := make([]Item, 0, len(list)-1)
	out = append(out, list[:index]...)
	return append(out, list[index+1:]...), nil
}

// Count tallies items by origin.
func Count(list []Item) (extracted, uploaded int) {
	for _, it := range list {
		if it.Origin == OriginUploaded {
			uploaded++
		} else {
			extracted++
		}
	}
	return extracted, uploaded
}
