package tasks

import (
	"fmt"
	"path/filepath"

	"github.com/desertthunder/wpx/internal/gallery"
	"github.com/desertthunder/wpx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	UploadGallery Phase = iota
	UploadFeatured
	SavePost
)

func (p Phase) String() string {
	switch p {
	case UploadGallery:
		return "upload_gallery"
	case UploadFeatured:
		return "upload_featured"
	case SavePost:
		return "save_post"
	default:
		return ""
	}
}

func uploadStartedUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadGallery,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Uploading %s...", step, total, filepath.Base(path)),
	}
}

func uploadCompletedUpdate(step, total int, path string, item gallery.Item) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadGallery,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (media %s)", step, total, filepath.Base(path), item.ID),
		Data:    item,
	}
}

func uploadFailedUpdate(step, total int, path string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadGallery,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, filepath.Base(path), err),
	}
}

func featuredUploadUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadFeatured,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Uploading featured image %s before saving post...", filepath.Base(path)),
	}
}

func savingPostUpdate(mode Mode) ProgressUpdate {
	msg := "Creating post..."
	if mode == ModeEdit {
		msg = "Updating post..."
	}
	return ProgressUpdate{
		Phase:   SavePost,
		Step:    0,
		Total:   1,
		Message: msg,
	}
}

func savedPostUpdate(mode Mode, post *models.Post) ProgressUpdate {
	msg := fmt.Sprintf("Post created successfully! (ID: %d)", post.ID)
	if mode == ModeEdit {
		msg = fmt.Sprintf("Post updated successfully! (ID: %d)", post.ID)
	}
	if post.FeaturedMedia > 0 {
		msg += " ✓ Featured image attached."
	}
	return ProgressUpdate{
		Phase:   SavePost,
		Step:    1,
		Total:   1,
		Message: msg,
		Data:    post,
	}
}
