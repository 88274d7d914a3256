package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const maxRedirects = 5

// Page is the outcome of an in-process navigation.
type Page struct {
	Path   string
	Status int
	Header http.Header
	Body   []byte
	// Hops lists the redirects followed, in order.
	Hops []string
}

// Navigate dispatches a request to handler without a network listener and
// follows 303 redirects the way a browser would.
func Navigate(ctx context.Context, handler http.Handler, method, target string, body []byte) (*Page, error) {
	var hops []string
	for i := 0; ; i++ {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return nil, fmt.Errorf("build request for %s: %w", target, err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		rec := newRecorder()
		handler.ServeHTTP(rec, req)

		location := rec.header.Get("Location")
		if !isRedirect(rec.status) || location == "" {
			return &Page{Path: req.URL.Path, Status: rec.status, Header: rec.header, Body: rec.body.Bytes(), Hops: hops}, nil
		}
		if i == maxRedirects {
			return nil, fmt.Errorf("stopped after %d redirects at %s", maxRedirects, location)
		}

		next, err := req.URL.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("bad redirect location %q: %w", location, err)
		}
		hops = append(hops, next.Path)
		target = (&url.URL{Path: next.Path, RawQuery: next.RawQuery}).String()
		method, body = http.MethodGet, nil
	}
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther, http.StatusTemporaryRedirect:
		return true
	}
	return false
}

type recorder struct {
	header      http.Header
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

func newRecorder() *recorder {
	return &recorder{header: make(http.Header), status: http.StatusOK}
}

func (r *recorder) Header() http.Header {
	return r.header
}

func (r *recorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.status = code
	r.wroteHeader = true
}

func (r *recorder) Write(b []byte) (int, error) {
	r.WriteHeader(http.StatusOK)
	return r.body.Write(b)
}
