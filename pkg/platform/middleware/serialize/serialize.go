// Package serialize dispatches wrapped handlers one at a time.
package serialize

import (
	"net/http"
)

// Dispatcher admits a single request at a time into the handlers it wraps.
// Registry operations load, mutate and save whole collections, so two
// interleaved requests in one process could lose an update.
type Dispatcher struct {
	slot chan struct{}
}

func New() *Dispatcher {
	return &Dispatcher{slot: make(chan struct{}, 1)}
}

// Middleware holds the dispatch slot for the duration of the request. A
// request whose context ends while queued is answered with 503.
func (d *Dispatcher) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.slot <- struct{}{}:
		case <-r.Context().Done():
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"unavailable","error_description":"request cancelled while queued"}`))
			return
		}
		defer func() { <-d.slot }()
		next.ServeHTTP(w, r)
	})
}
