package testutil

import (
	"net/http"
	"net/http/httptest"

	resqtalk "github.com/resqtalk/resqtalk-go"
)

// NewTestRegistry returns a Registry with panic recovery enabled and the
// given tools registered, suitable for tests.
func NewTestRegistry(tools ...resqtalk.Tool) *resqtalk.Registry {
	reg := resqtalk.NewRegistry(resqtalk.WithRecoverPanics(true))
	for _, t := range tools {
		reg.Register(t)
	}
	return reg
}

// StreamHandler returns a handler that frames each payload as one
// `data: <payload>\n` line of a text/event-stream response, flushing
// between frames so clients observe real chunking.
func StreamHandler(payloads ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, _ := w.(http.Flusher)
		for _, p := range payloads {
			_, _ = w.Write([]byte(resqtalk.DataPrefix + p + "\n"))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

// NewStreamBackend starts a backend stub whose /generate/text endpoint
// streams the given payloads. The caller must Close the server.
func NewStreamBackend(payloads ...string) *httptest.Server {
	mux := http.NewServeMux()
	mux.Handle("/generate/text", StreamHandler(payloads...))
	return httptest.NewServer(mux)
}
