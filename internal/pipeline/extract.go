package pipeline

import (
	"github.com/fresco-dev/fresco/internal/httpx"
	"github.com/fresco-dev/fresco/internal/registry"
)

// extractArgs builds the handler's positional arguments from the route's
// parameter descriptor list. Positions without a descriptor stay nil.
func extractArgs(rc *httpx.RequestContext, descriptors []registry.ParamDescriptor) []interface{} {
	size := 0
	for _, d := range descriptors {
		if d.Index+1 > size {
			size = d.Index + 1
		}
	}

	args := make([]interface{}, size)
	for _, d := range descriptors {
		if d.Index < 0 {
			continue
		}
		args[d.Index] = extractOne(rc, d)
	}
	return args
}

func extractOne(rc *httpx.RequestContext, d registry.ParamDescriptor) interface{} {
	switch d.Kind {
	case registry.ParamPath:
		return rc.Param(d.Key)

	case registry.ParamQuery:
		if d.Key == "" {
			return rc.Query
		}
		return rc.QueryValue(d.Key)

	case registry.ParamBody:
		if d.Key == "" {
			return rc.Body
		}
		if m, ok := rc.Body.(map[string]interface{}); ok {
			return m[d.Key]
		}
		return nil

	case registry.ParamHeader:
		return rc.Header(d.Key)

	case registry.ParamCookie:
		return rc.Cookie(d.Key)

	case registry.ParamRequest:
		return rc.Request

	case registry.ParamResponseBuilder:
		return rc.Builder

	case registry.ParamCustom:
		if d.Factory == nil {
			return nil
		}
		return d.Factory(rc)

	default:
		return nil
	}
}
