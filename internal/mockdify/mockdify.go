// Package mockdify provides a recording TLS server that stands in for the
// Dify API in tests.
package mockdify

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Request is what the server received.
type Request struct {
	Method     string
	Path       string
	RawQuery   string
	RequestURI string
	Header     http.Header
	Body       []byte
}

// Server records every request and answers with a fixed status and body.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
	status   int
	body     string
}

// New starts a server that is closed when the test finishes. Its URL uses
// https; pass Client() to the client under test so the certificate is trusted.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{status: http.StatusOK, body: `{"result":"success"}`}
	s.Server = httptest.NewTLSServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:     r.Method,
		Path:       r.URL.Path,
		RawQuery:   r.URL.RawQuery,
		RequestURI: r.RequestURI,
		Header:     r.Header.Clone(),
		Body:       body,
	})
	status, respBody := s.status, s.body
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, respBody)
}

// RespondWith changes the status and body of subsequent responses.
func (s *Server) RespondWith(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.body = body
}

// Requests returns a copy of everything received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Last returns the most recent request, failing the test if there is none.
func (s *Server) Last(t testing.TB) Request {
	t.Helper()
	reqs := s.Requests()
	if len(reqs) == 0 {
		t.Fatal("expected the server to receive a request")
	}
	return reqs[len(reqs)-1]
}

// BaseURL is the server URL with the /v1 prefix the hosted API uses.
func (s *Server) BaseURL() string {
	return s.URL + "/v1"
}
