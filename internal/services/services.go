// package services defines interface Service for interacting with the WordPress REST API
package services

import (
	"context"
	"io"

	"github.com/desertthunder/wpx/internal/models"
)

// Service is the WordPress backend as seen by the CLI and the editor TUI.
//
// [WordPressService] is the implementation; tests substitute httptest servers or small fakes.
type Service interface {
	// RequestToken exchanges credentials for a bearer token.
	RequestToken(ctx context.Context, username, password string) (*TokenResponse, error)

	// Me returns the authenticated user.
	Me(ctx context.Context) (*models.User, error)

	// Posts lists posts matching the query.
	Posts(ctx context.Context, q models.PostQuery) (*models.PostPage, error)

	// Post fetches one post; edit requests raw fields.
	Post(ctx context.Context, id int, edit bool) (*models.Post, error)

	// CreatePost and UpdatePost save a post.
	CreatePost(ctx context.Context, payload models.PostPayload) (*models.Post, error)
	UpdatePost(ctx context.Context, id int, payload models.PostPayload) (*models.Post, error)

	// UploadMedia uploads a file and returns the created media item.
	UploadMedia(ctx context.Context, fileName string, r io.Reader, title string) (*models.Media, error)

	// Name returns the name of the service
	Name() string
}

var _ Service = (*WordPressService)(nil)
