// Package shopifytest provides an in-process stand-in for the Admin GraphQL
// endpoint. Handlers are registered per operation name.
package shopifytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"

	"go.uber.org/zap"

	"inventorysync.com/pkg/shopify"
)

const (
	Shop  = "test-shop.myshopify.com"
	Token = "shpat_test"
)

var opName = regexp.MustCompile(`(?:query|mutation)\s+(\w+)`)

type Response struct {
	// Status defaults to 200.
	Status int
	Data   interface{}
	Errors []string
}

type Handler func(vars map[string]interface{}) Response

type Call struct {
	Op        string
	Query     string
	Variables map[string]interface{}
	Token     string
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
}

func NewServer() *Server {
	s := &Server{handlers: map[string]Handler{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
} // ./NewServer

func (s *Server) Handle(op string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[op] = h
} // ./Handle

// Data registers a handler that always answers with data.
func (s *Server) Data(op string, data interface{}) {
	s.Handle(op, func(map[string]interface{}) Response {
		return Response{Data: data}
	})
} // ./Data

// Calls returns the recorded calls for op, or every call when op is empty.
func (s *Server) Calls(op string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Call{}
	for _, c := range s.calls {
		if op == "" || c.Op == op {
			out = append(out, c)
		}
	}
	return out
} // ./Calls

// Config points a shopify.Service at this server.
func (s *Server) Config() shopify.Config {
	return shopify.Config{
		Shop:        Shop,
		AccessToken: Token,
		Endpoint:    s.URL,
		Logger:      zap.NewNop(),
	}
} // ./Config

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query     string                 `json:"query"`
		Variables map[string]interface{} `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	op := ""
	if m := opName.FindStringSubmatch(body.Query); m != nil {
		op = m[1]
	}

	s.mu.Lock()
	s.calls = append(s.calls, Call{
		Op:        op,
		Query:     body.Query,
		Variables: body.Variables,
		Token:     r.Header.Get("X-Shopify-Access-Token"),
	})
	h, ok := s.handlers[op]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"errors": []map[string]string{{"message": "unknown operation " + op}},
		})
		return
	}

	res := h(body.Variables)
	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}
	payload := map[string]interface{}{"data": res.Data}
	if len(res.Errors) > 0 {
		errs := make([]map[string]string, 0, len(res.Errors))
		for _, e := range res.Errors {
			errs = append(errs, map[string]string{"message": e})
		}
		payload["errors"] = errs
	}
	writeJSON(w, status, payload)
} // ./serve

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
} // ./writeJSON
