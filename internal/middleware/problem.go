package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/render"
)

// Problem represents an RFC 7807 problem details object
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Trace  string `json:"trace_id,omitempty"`
}

// Render implements the chi render.Renderer interface
func (p *Problem) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, p.Status)
	return nil
}

// ProblemFromStatus builds a problem whose type and title derive from status
func ProblemFromStatus(status int, detail string, traceID string) *Problem {
	title := http.StatusText(status)
	return &Problem{
		Type:   "/errors/" + strings.ReplaceAll(strings.ToLower(title), " ", "-"),
		Title:  title,
		Status: status,
		Detail: detail,
		Trace:  traceID,
	}
}

// WriteProblem renders a problem response carrying the request's trace ID
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	p := ProblemFromStatus(status, detail, GetRequestID(r.Context()))
	if err := render.Render(w, r, p); err != nil {
		http.Error(w, detail, status)
	}
}
