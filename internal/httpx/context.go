// Package httpx holds the per-request context bag and the response builder
// exposed to handlers and parameter factories.
package httpx

import (
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/fresco-dev/fresco/internal/response"
)

// RequestContext is the per-invocation bag built fresh for every request
// and discarded after the response is produced. It is never shared across
// requests.
type RequestContext struct {
	Request *http.Request
	Builder *ResponseBuilder

	Params  map[string]string
	Query   url.Values
	Body    interface{}
	Cookies map[string]string
	Headers http.Header
	Files   map[string][]*multipart.FileHeader

	// Result set by a middleware that short-circuits the chain, or by the
	// dispatch core once the handler's value has been shaped.
	Result *response.Response
}

// NewRequestContext builds the context for one request, parsing cookies,
// query, and body eagerly. Body parse failures yield a nil Body rather than
// failing the request.
func NewRequestContext(r *http.Request) *RequestContext {
	rc := &RequestContext{
		Request: r,
		Builder: NewResponseBuilder(),
		Params:  make(map[string]string),
		Query:   r.URL.Query(),
		Cookies: make(map[string]string),
		Headers: r.Header,
	}

	for _, c := range r.Cookies() {
		rc.Cookies[c.Name] = c.Value
	}

	rc.Body, rc.Files = parseBody(r)

	return rc
}

// Param returns a bound path parameter.
func (rc *RequestContext) Param(name string) string {
	return rc.Params[name]
}

// QueryValue returns the first query value for a key.
func (rc *RequestContext) QueryValue(key string) string {
	return rc.Query.Get(key)
}

// Header returns a request header value.
func (rc *RequestContext) Header(name string) string {
	return rc.Headers.Get(name)
}

// Cookie returns a request cookie value.
func (rc *RequestContext) Cookie(name string) string {
	return rc.Cookies[name]
}

// ShortCircuit records a prepared response, ending the request without
// reaching the handler. Middleware uses this when it declines to call next.
func (rc *RequestContext) ShortCircuit(resp *response.Response) {
	rc.Result = resp
}

// ResponseBuilder accumulates status, headers, and cookies a handler wants
// on the outgoing response. The pipeline applies it to the shaped response
// at the end.
type ResponseBuilder struct {
	status  int
	header  http.Header
	cookies []*http.Cookie
}

// NewResponseBuilder creates a builder with no recorded status.
func NewResponseBuilder() *ResponseBuilder {
	return &ResponseBuilder{header: http.Header{}}
}

// Status records the status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.status = code
	return b
}

// Header sets a header on the response.
func (b *ResponseBuilder) Header(key, value string) *ResponseBuilder {
	b.header.Set(key, value)
	return b
}

// Cookie adds a Set-Cookie to the response.
func (b *ResponseBuilder) Cookie(c *http.Cookie) *ResponseBuilder {
	b.cookies = append(b.cookies, c)
	return b
}

// StatusCode returns the recorded status, or the fallback when none was
// recorded.
func (b *ResponseBuilder) StatusCode(fallback int) int {
	if b.status != 0 {
		return b.status
	}
	return fallback
}

// Apply copies recorded headers and cookies onto a prepared response and
// overrides its status when one was recorded.
func (b *ResponseBuilder) Apply(resp *response.Response) *response.Response {
	for key, values := range b.header {
		for _, v := range values {
			resp.Header.Add(key, v)
		}
	}
	for _, c := range b.cookies {
		resp.Header.Add("Set-Cookie", c.String())
	}
	if b.status != 0 {
		resp.Status = b.status
	}
	return resp
}
