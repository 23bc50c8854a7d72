package pipeline

import (
	"time"

	"github.com/fresco-dev/fresco/internal/httpx"
	"github.com/fresco-dev/fresco/internal/logging"
)

// RequestLogger logs one structured line per completed request: method,
// path, outcome, and elapsed time. Installed outermost so the duration
// covers the whole chain.
func RequestLogger(logger logging.Logger) Middleware {
	logger = logger.WithComponent("http")
	return func(rc *httpx.RequestContext, next Next) error {
		start := time.Now()
		err := next()

		fields := []interface{}{
			"method", rc.Request.Method,
			"path", rc.Request.URL.Path,
			"duration", time.Since(start).String(),
		}
		if rc.Result != nil {
			fields = append(fields, "status", rc.Result.Status)
		}

		ctx := rc.Request.Context()
		if err != nil {
			logger.Warn(ctx, err, "request errored", fields...)
		} else {
			logger.Info(ctx, "request completed", fields...)
		}
		return err
	}
}
