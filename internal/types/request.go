package types

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Request describes one page load performed by a navigation session.
type Request struct {
	// URL is the target URL, without the query parameters in Params.
	URL *url.URL

	// Params are appended to the URL's query string before navigation.
	Params url.Values

	// Headers are extra HTTP headers to send with the navigation.
	Headers http.Header

	// Timeout overrides the session's page-load timeout for this request.
	Timeout time.Duration

	// WaitSelector is a container that signals the page has rendered
	// (for example the results container of a search page).
	WaitSelector string

	// WarmUp requests a navigation to a neutral landing page first.
	WarmUp bool

	// Tag categorizes this request ("serp", "detail", "article").
	Tag string

	// CreatedAt is when this request was created.
	CreatedAt time.Time
}

// NewRequest creates a new Request for an absolute http(s) URL.
func NewRequest(rawURL string) (*Request, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidURL, rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w %q: scheme must be http or https", ErrInvalidURL, rawURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w %q: missing host", ErrInvalidURL, rawURL)
	}

	return &Request{
		URL:       u,
		Params:    make(url.Values),
		Headers:   make(http.Header),
		CreatedAt: time.Now(),
	}, nil
}

// URLString returns the full URL including Params.
func (r *Request) URLString() string {
	if r.URL == nil {
		return ""
	}
	if len(r.Params) == 0 {
		return r.URL.String()
	}
	u := *r.URL
	q := u.Query()
	for k, vals := range r.Params {
		for _, v := range vals {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Domain returns the hostname of the request URL.
func (r *Request) Domain() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.Hostname()
}

// Clone creates a deep copy of the request.
func (r *Request) Clone() *Request {
	clone := *r
	if r.URL != nil {
		u := *r.URL
		clone.URL = &u
	}
	clone.Headers = r.Headers.Clone()
	clone.Params = make(url.Values, len(r.Params))
	for k, v := range r.Params {
		clone.Params[k] = append([]string(nil), v...)
	}
	return &clone
}
