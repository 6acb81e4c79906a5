package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tu "github.com/desertthunder/wpx/internal/testing"
	"golang.org/x/oauth2"
)

// restRoot serves a few routes of a WordPress REST API under /wp-json.
func restRoot(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("GET /wp-json/{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"Desert Notes","url":"https://blog.test","namespaces":["wp/v2","jwt-auth/v1"]}`))
	})

	mux.HandleFunc("GET /wp-json/wp/v2/posts", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("expected Accept application/json, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-WP-Total", "12")
		w.Header().Set("X-WP-TotalPages", "6")
		w.Write([]byte(`[{"id":7,"slug":"` + r.URL.Query().Get("search") + `"},{"id":8,"slug":"second"}]`))
	})

	mux.HandleFunc("POST /wp-json/wp/v2/posts", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("expected Content-Type application/json, got %q", got)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": 99, "status": payload["status"], "title": map[string]string{"raw": payload["title"]}})
	})

	mux.HandleFunc("POST /wp-json/wp/v2/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if len(body) != 0 {
			t.Errorf("expected empty body, got %d bytes", len(body))
		}
		w.Write([]byte(`{"id":` + r.PathValue("id") + `}`))
	})

	mux.HandleFunc("GET /wp-json/wp/v2/settings", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"rest_forbidden","message":"Sorry, you are not allowed to do that.","data":{"status":401}}`))
	})

	mux.HandleFunc("GET /wp-json/legacy/feed", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=UTF-8")
		w.Write([]byte("<html><body>Permalinks are not enabled</body></html>"))
	})

	mux.HandleFunc("DELETE /wp-json/wp/v2/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"code":"rest_cannot_delete","message":"Sorry, you are not allowed to delete this post."}`))
			return
		}
		w.Write([]byte(`{"deleted":true,"previous":{"id":` + r.PathValue("id") + `}}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("Trims Trailing Slash", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("https://blog.test/wp-json/", customClient)

			if srv.baseURL != "https://blog.test/wp-json" {
				t.Errorf("expected baseURL without trailing slash, got %s", srv.baseURL)
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("Defaults", func(t *testing.T) {
			srv := NewAPIService("", nil)

			if srv.baseURL != DefaultAPIURL {
				t.Errorf("expected default baseURL %s, got %s", DefaultAPIURL, srv.baseURL)
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		root := restRoot(t)
		srv := NewAPIService(root.URL+"/wp-json", nil)

		t.Run("Site Index", func(t *testing.T) {
			resp, err := srv.Get(context.Background(), "/")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			index, ok := resp.JSONData.(map[string]any)
			if !ok || index["name"] != "Desert Notes" {
				t.Errorf("unexpected site index %v", resp.JSONData)
			}
		})

		t.Run("Path Without Leading Slash And Query", func(t *testing.T) {
			resp, err := srv.Get(context.Background(), "wp/v2/posts?search=hello&per_page=2")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.OK() || !resp.IsJSON {
				t.Fatalf("expected a JSON 200, got %d (json=%t)", resp.StatusCode, resp.IsJSON)
			}
			posts, ok := resp.JSONData.([]any)
			if !ok || len(posts) != 2 {
				t.Fatalf("expected two posts, got %v", resp.JSONData)
			}
			if first := posts[0].(map[string]any); first["slug"] != "hello" {
				t.Errorf("expected the search term to reach the server, got %v", first)
			}
		})

		t.Run("Pagination Headers Are Preserved", func(t *testing.T) {
			resp, err := srv.Get(context.Background(), "/wp/v2/posts")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.Headers.Get("X-WP-Total") != "12" || resp.Headers.Get("X-WP-TotalPages") != "6" {
				t.Errorf("unexpected headers %v", resp.Headers)
			}
		})

		t.Run("Error Envelope Is Returned Not Raised", func(t *testing.T) {
			resp, err := srv.Get(context.Background(), "/wp/v2/settings")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.OK() || resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", resp.StatusCode)
			}
			envelope, _ := resp.JSONData.(map[string]any)
			if envelope["code"] != "rest_forbidden" {
				t.Errorf("expected rest_forbidden, got %v", resp.JSONData)
			}
		})

		t.Run("HTML Response", func(t *testing.T) {
			resp, err := srv.Get(context.Background(), "/legacy/feed")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON || resp.JSONData != nil {
				t.Error("expected an HTML body to not be treated as JSON")
			}
			if !strings.Contains(string(resp.Body), "Permalinks are not enabled") {
				t.Errorf("unexpected body %s", resp.Body)
			}
		})
	})

	t.Run("Post", func(t *testing.T) {
		root := restRoot(t)
		srv := NewAPIService(root.URL+"/wp-json", nil)

		t.Run("Creates A Post", func(t *testing.T) {
			payload, _ := json.Marshal(map[string]string{"title": "Dunes", "status": "draft"})
			resp, err := srv.Post(context.Background(), "/wp/v2/posts", payload)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.StatusCode != http.StatusCreated {
				t.Errorf("expected status 201, got %d", resp.StatusCode)
			}
			created, _ := resp.JSONData.(map[string]any)
			if created["id"] != float64(99) || created["status"] != "draft" {
				t.Errorf("unexpected response %v", resp.JSONData)
			}
		})

		t.Run("Nil Body Sends Nothing", func(t *testing.T) {
			resp, err := srv.Post(context.Background(), "/wp/v2/posts/7", nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.OK() {
				t.Errorf("expected 200, got %d", resp.StatusCode)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		root := restRoot(t)

		t.Run("Sends Bearer Token From Client", func(t *testing.T) {
			client := &http.Client{Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok", TokenType: "Bearer"}),
			}}
			srv := NewAPIService(root.URL+"/wp-json/", client)
			resp, err := srv.Delete(context.Background(), "wp/v2/posts/7")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.OK() {
				t.Errorf("expected OK response, got %d", resp.StatusCode)
			}
		})

		t.Run("Anonymous Delete Is Refused", func(t *testing.T) {
			srv := NewAPIService(root.URL+"/wp-json", nil)
			resp, err := srv.Delete(context.Background(), "/wp/v2/posts/7")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", resp.StatusCode)
			}
		})
	})

	t.Run("Transport Failures", func(t *testing.T) {
		calls := map[string]func(*APIService, context.Context, string) (*APIResponse, error){
			"GET":    (*APIService).Get,
			"DELETE": (*APIService).Delete,
			"POST": func(a *APIService, ctx context.Context, path string) (*APIResponse, error) {
				return a.Post(ctx, path, []byte(`{"title":"x"}`))
			},
		}

		for method, call := range calls {
			t.Run(method, func(t *testing.T) {
				t.Run("Invalid Path", func(t *testing.T) {
					srv := NewAPIService("https://blog.test/wp-json", nil)
					_, err := call(srv, context.Background(), "/wp/v2/posts\x00")
					if err == nil || !strings.Contains(err.Error(), "failed to create request") {
						t.Errorf("expected 'failed to create request' error, got %v", err)
					}
				})

				t.Run("Round Trip Error", func(t *testing.T) {
					client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
					srv := NewAPIService("https://blog.test/wp-json", client)
					_, err := call(srv, context.Background(), "/wp/v2/posts")
					if err == nil || !strings.Contains(err.Error(), "request failed") {
						t.Errorf("expected 'request failed' error, got %v", err)
					}
				})

				t.Run("Body Read Error", func(t *testing.T) {
					client := &http.Client{Transport: tu.NewMockRoundTripper(&http.Response{
						StatusCode: http.StatusOK,
						Body:       &tu.FCloser{},
						Header:     http.Header{},
					}, nil)}
					srv := NewAPIService("https://blog.test/wp-json", client)
					_, err := call(srv, context.Background(), "/wp/v2/posts")
					if err == nil || !strings.Contains(err.Error(), "failed to read response") {
						t.Errorf("expected 'failed to read response' error, got %v", err)
					}
				})

				t.Run("Canceled Context", func(t *testing.T) {
					root := restRoot(t)
					ctx, cancel := context.WithCancel(context.Background())
					cancel()

					srv := NewAPIService(root.URL+"/wp-json", nil)
					if _, err := call(srv, ctx, "/wp/v2/posts"); !errors.Is(err, context.Canceled) {
						t.Errorf("expected context.Canceled, got %v", err)
					}
				})
			})
		}
	})
}
