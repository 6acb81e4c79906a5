// Package services implements the HTTP clients wpx uses to talk to WordPress.
//
// # WordPress Implementation
//
// [WordPressService] wraps the REST API (wp/v2 routes plus the JWT authentication plugin's token route).
// Authenticated calls go through an [oauth2.Transport] whose token source is the session store, so the bearer
// token is read on every request and logging out takes effect immediately.
//
// # Raw API
//
// [APIService] sends raw GET/POST/DELETE requests relative to the REST root and returns the undecoded response.
// It backs the `api` commands.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : no session, the token source refused
//   - [shared.ErrTokenExpired] : the JWT exp claim has passed
//   - [shared.ErrNetworkFailure] : the server could not be reached
//   - [shared.ErrAPIRequest] : non-2xx response, see [APIError]
//   - [shared.ErrAuthFailed] : 401/403 or rejected credentials
//   - [shared.ErrPostNotFound] : post ID or slug not found
package services
