// package models defines the data model for the WordPress client
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/wpx/internal/shared"
)

// Model defines the base interface for locally persisted models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Upload is the local record of a media item uploaded through this client.
type Upload struct {
	id        string
	sequence  int
	mediaID   int
	sourceURL string
	fileName  string
	caption   string
	createdAt time.Time
	deletedAt *time.Time
}

// NewUpload creates an [Upload] for a media item the backend accepted.
func NewUpload(mediaID int, sourceURL, fileName, caption string) *Upload {
	return &Upload{
		mediaID:   mediaID,
		sourceURL: sourceURL,
		fileName:  fileName,
		caption:   caption,
		createdAt: time.Now(),
	}
}

func (u *Upload) ID() string            { return u.id }
func (u *Upload) Sequence() int         { return u.sequence }
func (u *Upload) MediaID() int          { return u.mediaID }
func (u *Upload) SourceURL() string     { return u.sourceURL }
func (u *Upload) FileName() string      { return u.fileName }
func (u *Upload) Caption() string       { return u.caption }
func (u *Upload) CreatedAt() time.Time  { return u.createdAt }
func (u *Upload) DeletedAt() *time.Time { return u.deletedAt }

func (u *Upload) SetID(id string)           { u.id = id }
func (u *Upload) SetSequence(seq int)       { u.sequence = seq }
func (u *Upload) SetCaption(caption string) { u.caption = caption }
func (u *Upload) SetCreatedAt(t time.Time)  { u.createdAt = t }
func (u *Upload) SetDeletedAt(t *time.Time) { u.deletedAt = t }

// Validate checks that the upload points at a media item.
func (u *Upload) Validate() error {
	if u.mediaID <= 0 {
		return fmt.Errorf("%w: media id must be positive", shared.ErrValidation)
	}
	if strings.TrimSpace(u.sourceURL) == "" {
		return fmt.Errorf("%w: source url is required", shared.ErrValidation)
	}
	return nil
}
