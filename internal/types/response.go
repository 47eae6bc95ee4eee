package types

import (
	"bytes"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Response is what a navigation session hands back for one page load.
type Response struct {
	// StatusCode is the HTTP status of the main document.
	StatusCode int

	// Headers are the response HTTP headers, when the driver exposes them.
	Headers http.Header

	// Body is the final page markup.
	Body []byte

	// Request is a reference to the original request.
	Request *Request

	// FinalURL is the effective URL after redirects.
	FinalURL string

	// Doc is a parsed goquery document (lazily loaded).
	Doc *goquery.Document

	// FetchDuration is how long the load took.
	FetchDuration time.Duration

	// FetchedAt is when this response was received.
	FetchedAt time.Time
}

// NewResponse creates a Response from a driver's output.
func NewResponse(req *Request, statusCode int, headers http.Header, body []byte, finalURL string, duration time.Duration) *Response {
	if headers == nil {
		headers = make(http.Header)
	}
	return &Response{
		StatusCode:    statusCode,
		Headers:       headers,
		Body:          body,
		Request:       req,
		FinalURL:      finalURL,
		FetchDuration: duration,
		FetchedAt:     time.Now(),
	}
}

// Text returns the page markup as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// Document returns a parsed goquery document, lazily initializing it.
func (r *Response) Document() (*goquery.Document, error) {
	if r.Doc != nil {
		return r.Doc, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
	if err != nil {
		return nil, err
	}
	r.Doc = doc
	return doc, nil
}

// IsSuccess returns true if the response status is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsClientError returns true if the response status is 4xx.
func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

// IsServerError returns true if the response status is 5xx.
func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500 && r.StatusCode < 600
}
