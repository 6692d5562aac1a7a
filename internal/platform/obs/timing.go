package obs

import (
	"context"
	"log"
	"time"
)

type ctxKey string

// RequestIDKey carries the per-request id injected by the API middleware.
const RequestIDKey ctxKey = "req_id"

// RequestID extracts the request id from ctx. Background work (route
// recompute, address retries, report rendering) runs without one and logs
// an empty req_id.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// Time logs the duration of an outbound call or render step. Use as
//
//	defer obs.Time(ctx, "ors.fetch_route")(&err)
//
// so the deferred close observes the named error result.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()
	reqID := RequestID(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Printf("req_id=%s op=%s dur=%dms err=%v", reqID, name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("req_id=%s op=%s dur=%dms", reqID, name, dur.Milliseconds())
	}
}
