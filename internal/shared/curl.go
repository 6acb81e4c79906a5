// Utilities for parsing cURL commands copied from browser developer tools.
package shared

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	curlHeaderRe = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"|--header\s+'([^']+)'|--header\s+"([^"]+)"`)
	curlCookieRe = regexp.MustCompile(`-b\s+'([^']+)'|-b\s+"([^"]+)"|--cookie\s+'([^']+)'|--cookie\s+"([^"]+)"`)
	curlURLRe    = regexp.MustCompile(`curl\s+(?:'([^']+)'|"([^"]+)"|(https?://\S+))`)
	anyURLRe     = regexp.MustCompile(`(?:^|\s)(?:'(https?://[^']+)'|"(https?://[^"]+)"|(https?://[^\s'"]+))`)
)

// CurlRequest holds what a copied cURL command tells us about an authenticated WordPress request.
type CurlRequest struct {
	URL     string
	Headers map[string]string
	Cookie  string
}

// ParseCurlFile reads a .sh file containing a cURL command and parses it.
func ParseCurlFile(filepath string) (*CurlRequest, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(string(content))
}

// ParseCurlCommand extracts the target URL, headers and cookie from a cURL command.
//
// Cookie headers are kept out of Headers; a -b/--cookie flag wins over a Cookie header.
func ParseCurlCommand(curlCmd string) (*CurlRequest, error) {
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	req := &CurlRequest{Headers: make(map[string]string)}

	if m := curlURLRe.FindStringSubmatch(curlCmd); m != nil {
		req.URL = firstGroup(m)
	} else if all := anyURLRe.FindAllStringSubmatch(curlCmd, -1); len(all) > 0 {
		req.URL = firstGroup(all[len(all)-1])
	}

	var headerCookie string
	for _, m := range curlHeaderRe.FindAllStringSubmatch(curlCmd, -1) {
		key, value, ok := strings.Cut(firstGroup(m), ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if strings.EqualFold(key, "cookie") {
			if headerCookie == "" {
				headerCookie = value
			}
			continue
		}
		req.Headers[key] = value
	}

	if m := curlCookieRe.FindStringSubmatch(curlCmd); m != nil {
		req.Cookie = firstGroup(m)
	} else {
		req.Cookie = headerCookie
	}

	if len(req.Headers) == 0 && req.Cookie == "" {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrParseFailure)
	}

	return req, nil
}

// Header looks up a header by case-insensitive name.
func (c *CurlRequest) Header(name string) (string, bool) {
	for k, v := range c.Headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// BearerToken returns the token from an "Authorization: Bearer ..." header.
func (c *CurlRequest) BearerToken() (string, error) {
	auth, ok := c.Header("Authorization")
	if !ok {
		return "", fmt.Errorf("%w: no Authorization header in curl command", ErrMissingCredentials)
	}

	scheme, token, ok := strings.Cut(strings.TrimSpace(auth), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w: Authorization header is not a bearer token", ErrMissingCredentials)
	}
	return strings.TrimSpace(token), nil
}

// APIRoot returns the REST root ("https://site/wp-json") the request was sent to, or "" when the URL has none.
func (c *CurlRequest) APIRoot() string {
	idx := strings.Index(c.URL, "/wp-json")
	if idx < 0 {
		return ""
	}
	return c.URL[:idx+len("/wp-json")]
}

func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}
