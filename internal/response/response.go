// Package response defines the tagged response variant the pipeline and
// handlers construct explicitly, replacing heuristic content sniffing.
package response

import (
	"encoding/json"
	"net/http"
)

// Kind tags the response variant.
type Kind int

const (
	KindEmpty Kind = iota
	KindRaw
	KindText
	KindHTML
	KindJSON
	KindRedirect
)

// Response is a prepared response. Handlers may return one directly to
// bypass shaping; the pipeline passes it through unchanged.
type Response struct {
	Kind     Kind
	Status   int
	Header   http.Header
	Body     []byte
	Value    interface{} // JSON payload for KindJSON
	Location string      // redirect target for KindRedirect
}

// Empty creates a response with no body.
func Empty(status int) *Response {
	return &Response{Kind: KindEmpty, Status: status, Header: http.Header{}}
}

// Raw creates a response with an explicit content type and body.
func Raw(status int, contentType string, body []byte) *Response {
	r := &Response{Kind: KindRaw, Status: status, Header: http.Header{}, Body: body}
	r.Header.Set("Content-Type", contentType)
	return r
}

// Text creates a 200 text/plain response.
func Text(body string) *Response {
	return &Response{Kind: KindText, Status: http.StatusOK, Header: http.Header{}, Body: []byte(body)}
}

// HTML creates a 200 text/html response.
func HTML(markup string) *Response {
	return &Response{Kind: KindHTML, Status: http.StatusOK, Header: http.Header{}, Body: []byte(markup)}
}

// JSON creates a 200 application/json response; the value is serialized at
// write time.
func JSON(value interface{}) *Response {
	return &Response{Kind: KindJSON, Status: http.StatusOK, Header: http.Header{}, Value: value}
}

// Redirect creates a redirect response. A zero status defaults to 302.
func Redirect(location string, status int) *Response {
	if status == 0 {
		status = http.StatusFound
	}
	return &Response{Kind: KindRedirect, Status: status, Header: http.Header{}, Location: location}
}

// WithStatus overrides the status code.
func (r *Response) WithStatus(status int) *Response {
	r.Status = status
	return r
}

// WithHeader sets a header on the response.
func (r *Response) WithHeader(key, value string) *Response {
	if r.Header == nil {
		r.Header = http.Header{}
	}
	r.Header.Set(key, value)
	return r
}

// Write serializes the response onto an http.ResponseWriter.
func (r *Response) Write(w http.ResponseWriter) error {
	for key, values := range r.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}

	switch r.Kind {
	case KindRedirect:
		w.Header().Set("Location", r.Location)
		w.WriteHeader(r.Status)
		return nil

	case KindJSON:
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(r.Status)
		return json.NewEncoder(w).Encode(r.Value)

	case KindHTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(r.Status)
		_, err := w.Write(r.Body)
		return err

	case KindText:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(r.Status)
		_, err := w.Write(r.Body)
		return err

	case KindRaw:
		w.WriteHeader(r.Status)
		_, err := w.Write(r.Body)
		return err

	default:
		w.WriteHeader(r.Status)
		return nil
	}
}
