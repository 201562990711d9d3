package middleware

import (
	"net/http"

	"github.com/go-chi/render"
)

// Problem is the RFC 7807 body written by middleware that runs outside the
// central error handler.
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Trace  string `json:"trace_id,omitempty"`
}

// Render implements the chi render.Renderer interface
func (p Problem) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, p.Status)
	return nil
}

// problemTypes lists the statuses middleware answers with on its own.
var problemTypes = map[int]string{
	http.StatusBadRequest:            "/errors/bad-request",
	http.StatusUnauthorized:          "/errors/unauthorized",
	http.StatusRequestEntityTooLarge: "/errors/payload-too-large",
	http.StatusUnsupportedMediaType:  "/errors/unsupported-media-type",
	http.StatusTooManyRequests:       "/errors/rate-limit",
	http.StatusInternalServerError:   "/errors/internal",
	http.StatusServiceUnavailable:    "/errors/service-unavailable",
}

// ProblemFromStatus builds the problem for status, titled with the standard
// status text.
func ProblemFromStatus(status int, detail string, traceID string) Problem {
	problemType, ok := problemTypes[status]
	if !ok {
		problemType = "/errors/unknown"
	}
	return Problem{
		Type:   problemType,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
		Trace:  traceID,
	}
}
