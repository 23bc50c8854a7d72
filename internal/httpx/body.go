package httpx

import (
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// maxBodyBytes caps how much of a request body is read into memory.
const maxBodyBytes = 10 << 20 // 10 MiB

// maxMultipartMemory is the in-memory threshold for multipart parsing;
// larger file parts spill to disk.
const maxMultipartMemory = 32 << 20

// parseBody parses the request body by content type. Malformed payloads
// yield a nil body; parse failures never fail the request at this stage, and
// the handler sees a nil argument instead.
func parseBody(r *http.Request) (interface{}, map[string][]*multipart.FileHeader) {
	if r.Body == nil || r.Method == http.MethodGet || r.Method == http.MethodHead {
		return nil, nil
	}

	contentType := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	}

	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return parseJSONBody(r), nil

	case mediaType == "application/x-www-form-urlencoded":
		return parseFormBody(r), nil

	case mediaType == "multipart/form-data":
		return parseMultipartBody(r)

	default:
		return nil, nil
	}
}

func parseJSONBody(r *http.Request) interface{} {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil || len(raw) == 0 {
		return nil
	}

	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}
	return value
}

func parseFormBody(r *http.Request) interface{} {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil
	}

	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil
	}
	return valuesToMap(values)
}

func parseMultipartBody(r *http.Request) (interface{}, map[string][]*multipart.FileHeader) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, nil
	}
	if r.MultipartForm == nil {
		return nil, nil
	}

	body := valuesToMap(url.Values(r.MultipartForm.Value))
	return body, r.MultipartForm.File
}

// valuesToMap flattens url.Values into a map, keeping single values as
// strings and repeated keys as slices.
func valuesToMap(values url.Values) map[string]interface{} {
	m := make(map[string]interface{}, len(values))
	for key, vals := range values {
		if len(vals) == 1 {
			m[key] = vals[0]
		} else {
			m[key] = vals
		}
	}
	return m
}
