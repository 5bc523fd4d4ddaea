package mockapi

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Transport returns a RoundTripper that answers matched requests in-process
// and sends everything else to next (http.DefaultTransport when nil).
func (r *Responder) Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &transport{responder: r, next: next}
}

type transport struct {
	responder *Responder
	next      http.RoundTripper
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	reply, matched, err := t.responder.Respond(req.Context(), req)
	if !matched {
		return t.next.RoundTrip(req)
	}
	if req.Body != nil {
		req.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", reply.Status, http.StatusText(reply.Status)),
		StatusCode:    reply.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        reply.Header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(reply.Body)),
		ContentLength: int64(len(reply.Body)),
		Request:       req,
	}, nil
}

// Middleware serves matched requests and passes the rest to next. A nil
// next answers unmatched requests with 404.
func (r *Responder) Middleware(next http.Handler) http.Handler {
	if next == nil {
		next = http.NotFoundHandler()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		reply, matched, err := r.Respond(req.Context(), req)
		if !matched {
			next.ServeHTTP(w, req)
			return
		}
		if err != nil {
			// client went away during the simulated delay
			r.logger.Debug("mock response abandoned",
				slog.String("path", req.URL.Path),
				slog.String("error", err.Error()),
			)
			return
		}

		for k, v := range reply.Header {
			w.Header()[k] = v
		}
		w.WriteHeader(reply.Status)
		w.Write(reply.Body)
	})
}
