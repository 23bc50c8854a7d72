package registry

import "github.com/fresco-dev/fresco/internal/httpx"

// ParamKind identifies the extraction strategy for one handler argument.
type ParamKind int

const (
	ParamPath ParamKind = iota
	ParamQuery
	ParamBody
	ParamHeader
	ParamCookie
	ParamRequest
	ParamResponseBuilder
	ParamCustom
)

// ParamFactory computes an argument from the request context. Used by the
// custom extraction kind, e.g. deriving the current locale.
type ParamFactory func(rc *httpx.RequestContext) interface{}

// ParamDescriptor describes how to fill one positional handler argument.
// Descriptors for a handler form an ordered-by-index list; extraction
// tolerates a missing descriptor at an index, which yields a nil argument.
type ParamDescriptor struct {
	Index   int
	Kind    ParamKind
	Key     string
	Factory ParamFactory
}

// Path extracts a bound path parameter into argument position index.
func Path(index int, name string) ParamDescriptor {
	return ParamDescriptor{Index: index, Kind: ParamPath, Key: name}
}

// Query extracts the first query value for a key.
func Query(index int, key string) ParamDescriptor {
	return ParamDescriptor{Index: index, Kind: ParamQuery, Key: key}
}

// Body extracts the whole parsed body.
func Body(index int) ParamDescriptor {
	return ParamDescriptor{Index: index, Kind: ParamBody}
}

// BodyKey extracts one key from a map-shaped parsed body.
func BodyKey(index int, key string) ParamDescriptor {
	return ParamDescriptor{Index: index, Kind: ParamBody, Key: key}
}

// Header extracts a request header value.
func Header(index int, name string) ParamDescriptor {
	return ParamDescriptor{Index: index, Kind: ParamHeader, Key: name}
}

// Cookie extracts a request cookie value.
func Cookie(index int, name string) ParamDescriptor {
	return ParamDescriptor{Index: index, Kind: ParamCookie, Key: name}
}

// Request passes the raw *http.Request.
func Request(index int) ParamDescriptor {
	return ParamDescriptor{Index: index, Kind: ParamRequest}
}

// ResponseBuilder passes the response builder so a handler can record
// status, headers, or cookies.
func ResponseBuilder(index int) ParamDescriptor {
	return ParamDescriptor{Index: index, Kind: ParamResponseBuilder}
}

// Custom computes the argument with an arbitrary factory.
func Custom(index int, factory ParamFactory) ParamDescriptor {
	return ParamDescriptor{Index: index, Kind: ParamCustom, Factory: factory}
}
