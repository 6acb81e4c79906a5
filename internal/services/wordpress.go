// WordPress REST API implementation of [Service]
//
// Endpoints are documented at https://developer.wordpress.org/rest-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/wpx/internal/models"
	"github.com/desertthunder/wpx/internal/session"
	"github.com/desertthunder/wpx/internal/shared"
	"golang.org/x/oauth2"
)

const (
	// DefaultJWTPath is the token route of the JWT Authentication for WP REST API plugin.
	DefaultJWTPath = "/jwt-auth/v1/token"

	headerTotal      = "X-WP-Total"
	headerTotalPages = "X-WP-TotalPages"
)

// TokenResponse is returned by the JWT token route.
type TokenResponse struct {
	Token           string `json:"token"`
	UserID          int    `json:"user_id"`
	UserEmail       string `json:"user_email"`
	UserNicename    string `json:"user_nicename"`
	UserDisplayName string `json:"user_display_name"`
}

// SessionUser normalizes the token response into the persisted user record.
func (t TokenResponse) SessionUser() session.User {
	return session.User{
		ID:          t.UserID,
		Email:       t.UserEmail,
		Username:    t.UserNicename,
		DisplayName: t.UserDisplayName,
	}
}

// UserToSession normalizes a REST user into the persisted user record.
func UserToSession(u *models.User) session.User {
	username := u.Username
	if username == "" {
		username = u.Slug
	}
	return session.User{
		ID:          u.ID,
		Email:       u.Email,
		Username:    username,
		DisplayName: u.Name,
		Description: u.Description,
		AvatarURLs:  u.AvatarURLs,
	}
}

// APIError is a non-2xx response from the REST API.
//
// WordPress error bodies look like {"code": "rest_forbidden", "message": "...", "data": {"status": 403}}.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", shared.ErrAPIRequest, e.Status)
	}
	return fmt.Sprintf("%s: %s (status %d)", shared.ErrAPIRequest, e.Message, e.Status)
}

// Unwrap exposes [shared.ErrAPIRequest] and a sentinel for the status class.
func (e *APIError) Unwrap() []error {
	errs := []error{shared.ErrAPIRequest}
	switch {
	case e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden:
		errs = append(errs, shared.ErrAuthFailed)
	case e.Status >= 500:
		errs = append(errs, shared.ErrServiceUnavailable)
	}
	return errs
}

// WordPressService talks to a WordPress site through its REST API.
//
// Public reads go through a plain client. Writes and user-scoped reads go through an [oauth2.Transport] that asks
// the token source for the bearer token on every request.
type WordPressService struct {
	baseURL string
	jwtPath string
	public  *http.Client
	auth    *http.Client
}

// NewWordPressService creates a service for the REST API rooted at baseURL (e.g. https://example.com/wp-json).
//
// client supplies the base transport and timeout and defaults to a client without a timeout. A nil tokens source
// makes every request anonymous.
func NewWordPressService(baseURL string, tokens oauth2.TokenSource, client *http.Client) *WordPressService {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	if client == nil {
		client = &http.Client{}
	}

	auth := client
	if tokens != nil {
		auth = &http.Client{
			Transport: &oauth2.Transport{Source: tokens, Base: client.Transport},
			Timeout:   client.Timeout,
		}
	}

	return &WordPressService{
		baseURL: strings.TrimRight(baseURL, "/"),
		jwtPath: DefaultJWTPath,
		public:  client,
		auth:    auth,
	}
}

// SetJWTPath overrides the token route.
func (s *WordPressService) SetJWTPath(path string) {
	if path != "" {
		s.jwtPath = "/" + strings.TrimLeft(path, "/")
	}
}

// BaseURL returns the REST API root.
func (s *WordPressService) BaseURL() string {
	return s.baseURL
}

// AuthClient returns the bearer-authenticated HTTP client.
func (s *WordPressService) AuthClient() *http.Client {
	return s.auth
}

// Name returns the service name.
func (s *WordPressService) Name() string {
	return "WordPress"
}

// request describes one REST call.
type request struct {
	method      string
	endpoint    string
	query       url.Values
	body        io.Reader
	contentType string
	authed      bool
}

// doRequest performs a REST call, decoding a 2xx body into result when non-nil, and returns the response headers.
func (s *WordPressService) doRequest(ctx context.Context, r request, result any) (http.Header, error) {
	apiURL := s.baseURL + r.endpoint
	if len(r.query) > 0 {
		apiURL += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, apiURL, r.body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	client := s.public
	if r.authed {
		client = s.auth
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) || errors.Is(err, shared.ErrTokenExpired) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.Header, decodeAPIError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return resp.Header, fmt.Errorf("%w: failed to decode response: %v", shared.ErrParseFailure, err)
		}
	}

	return resp.Header, nil
}

func (s *WordPressService) doJSON(ctx context.Context, method, endpoint string, authed bool, payload, result any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	_, err = s.doRequest(ctx, request{
		method:      method,
		endpoint:    endpoint,
		body:        bytes.NewReader(data),
		contentType: "application/json",
		authed:      authed,
	}, result)
	return err
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Message
	}
	return apiErr
}

// RequestToken exchanges a username and password for a JWT.
func (s *WordPressService) RequestToken(ctx context.Context, username, password string) (*TokenResponse, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", shared.ErrMissingCredentials)
	}

	var out TokenResponse
	err := s.doJSON(ctx, http.MethodPost, s.jwtPath, false, map[string]string{
		"username": username,
		"password": password,
	}, &out)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status < 500 {
		msg := stripTags(apiErr.Message)
		if msg == "" {
			msg = "wrong username or password"
		}
		return nil, fmt.Errorf("%w: %s", shared.ErrAuthFailed, msg)
	}
	if err != nil {
		return nil, err
	}

	if out.Token == "" {
		return nil, fmt.Errorf("%w: wrong username or password", shared.ErrAuthFailed)
	}
	return &out, nil
}

// Me returns the authenticated user with private fields (email, username).
func (s *WordPressService) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	_, err := s.doRequest(ctx, request{
		method:   http.MethodGet,
		endpoint: "/wp/v2/users/me",
		query:    url.Values{"context": {"edit"}},
		authed:   true,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// User returns the public profile of a user.
func (s *WordPressService) User(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	endpoint := fmt.Sprintf("/wp/v2/users/%d", id)
	if _, err := s.doRequest(ctx, request{method: http.MethodGet, endpoint: endpoint}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser saves profile fields of user id.
func (s *WordPressService) UpdateUser(ctx context.Context, id int, update models.UserUpdate) (*models.User, error) {
	var user models.User
	endpoint := fmt.Sprintf("/wp/v2/users/%d", id)
	if err := s.doJSON(ctx, http.MethodPost, endpoint, true, update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Posts lists posts. Queries for drafts or the edit context are sent authenticated.
func (s *WordPressService) Posts(ctx context.Context, q models.PostQuery) (*models.PostPage, error) {
	var posts []models.Post
	header, err := s.doRequest(ctx, request{
		method:   http.MethodGet,
		endpoint: "/wp/v2/posts",
		query:    q.Values(),
		authed:   q.Edit || (q.Status != "" && q.Status != "publish"),
	}, &posts)
	if err != nil {
		return nil, err
	}

	if posts == nil {
		posts = []models.Post{}
	}
	return &models.PostPage{
		Posts:      posts,
		Total:      headerInt(header, headerTotal, len(posts)),
		TotalPages: headerInt(header, headerTotalPages, 1),
	}, nil
}

// Post fetches a post with embedded author and media. With edit, raw fields are included (requires auth).
func (s *WordPressService) Post(ctx context.Context, id int, edit bool) (*models.Post, error) {
	q := url.Values{"_embed": {"1"}}
	if edit {
		q.Set("context", "edit")
	}

	var post models.Post
	_, err := s.doRequest(ctx, request{
		method:   http.MethodGet,
		endpoint: fmt.Sprintf("/wp/v2/posts/%d", id),
		query:    q,
		authed:   edit,
	}, &post)
	if err != nil {
		return nil, postErr(err, strconv.Itoa(id))
	}
	return &post, nil
}

// PostBySlug fetches the post with the given slug.
func (s *WordPressService) PostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	page, err := s.Posts(ctx, models.PostQuery{Slug: slug, Embed: true})
	if err != nil {
		return nil, err
	}
	if len(page.Posts) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrPostNotFound, slug)
	}
	return &page.Posts[0], nil
}

// RelatedPosts returns up to n posts sharing the first category of post, excluding post itself.
func (s *WordPressService) RelatedPosts(ctx context.Context, post *models.Post, n int) ([]models.Post, error) {
	if len(post.Categories) == 0 || n <= 0 {
		return []models.Post{}, nil
	}

	page, err := s.Posts(ctx, models.PostQuery{
		Categories: post.Categories[:1],
		Exclude:    []int{post.ID},
		PerPage:    n,
		Embed:      true,
	})
	if err != nil {
		return nil, err
	}
	return page.Posts, nil
}

// CreatePost creates a post.
func (s *WordPressService) CreatePost(ctx context.Context, payload models.PostPayload) (*models.Post, error) {
	var post models.Post
	if err := s.doJSON(ctx, http.MethodPost, "/wp/v2/posts", true, payload, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost replaces the editable fields of post id.
func (s *WordPressService) UpdatePost(ctx context.Context, id int, payload models.PostPayload) (*models.Post, error) {
	var post models.Post
	if err := s.doJSON(ctx, http.MethodPut, fmt.Sprintf("/wp/v2/posts/%d", id), true, payload, &post); err != nil {
		return nil, postErr(err, strconv.Itoa(id))
	}
	return &post, nil
}

// DeletePost moves post id to the trash, or deletes it permanently with force.
func (s *WordPressService) DeletePost(ctx context.Context, id int, force bool) error {
	var q url.Values
	if force {
		q = url.Values{"force": {"true"}}
	}

	_, err := s.doRequest(ctx, request{
		method:   http.MethodDelete,
		endpoint: fmt.Sprintf("/wp/v2/posts/%d", id),
		query:    q,
		authed:   true,
	}, nil)
	return postErr(err, strconv.Itoa(id))
}

// Categories lists up to 100 categories.
func (s *WordPressService) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	_, err := s.doRequest(ctx, request{
		method:   http.MethodGet,
		endpoint: "/wp/v2/categories",
		query:    url.Values{"per_page": {"100"}},
	}, &categories)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

// Search queries the site-wide search route.
func (s *WordPressService) Search(ctx context.Context, term string) ([]models.SearchResult, error) {
	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("%w: search term is required", shared.ErrMissingArgument)
	}

	var results []models.SearchResult
	_, err := s.doRequest(ctx, request{
		method:   http.MethodGet,
		endpoint: "/wp/v2/search",
		query:    url.Values{"search": {term}},
	}, &results)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	return results, nil
}

// Counts returns the total number of published posts and of categories from the X-WP-Total headers.
func (s *WordPressService) Counts(ctx context.Context) (posts, categories int, err error) {
	one := url.Values{"per_page": {"1"}}

	header, err := s.doRequest(ctx, request{method: http.MethodGet, endpoint: "/wp/v2/posts", query: one}, nil)
	if err != nil {
		return 0, 0, err
	}
	posts = headerInt(header, headerTotal, 0)

	header, err = s.doRequest(ctx, request{method: http.MethodGet, endpoint: "/wp/v2/categories", query: one}, nil)
	if err != nil {
		return posts, 0, err
	}
	return posts, headerInt(header, headerTotal, 0), nil
}

// UploadMedia uploads r as a media item named fileName with the given title.
func (s *WordPressService) UploadMedia(ctx context.Context, fileName string, r io.Reader, title string) (*models.Media, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filepath.Base(fileName))))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if title != "" {
		if err := mw.WriteField("title", title); err != nil {
			return nil, fmt.Errorf("failed to write title: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	var media models.Media
	_, err = s.doRequest(ctx, request{
		method:      http.MethodPost,
		endpoint:    "/wp/v2/media",
		body:        &buf,
		contentType: mw.FormDataContentType(),
		authed:      true,
	}, &media)
	if err != nil {
		return nil, err
	}
	if media.ID == 0 || media.SourceURL == "" {
		return nil, fmt.Errorf("%w: upload response has no id or source_url", shared.ErrAPIRequest)
	}
	return &media, nil
}

// UploadFile uploads the file at path, titled after its name when title is empty.
func (s *WordPressService) UploadFile(ctx context.Context, path, title string) (*models.Media, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	defer f.Close()

	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s.UploadMedia(ctx, filepath.Base(path), f, title)
}

func postErr(err error, id string) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrPostNotFound, id)
	}
	return err
}

func headerInt(h http.Header, key string, fallback int) int {
	if h == nil {
		return fallback
	}
	n, err := strconv.Atoi(h.Get(key))
	if err != nil {
		return fallback
	}
	return n
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func stripTags(s string) string {
	return strings.TrimSpace(models.Rendered{Rendered: s}.Text())
}
