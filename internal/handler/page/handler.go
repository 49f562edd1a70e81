package page

import (
	"embed"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TomasB/denylist/internal/data"
	"github.com/TomasB/denylist/internal/logging"
	"github.com/TomasB/denylist/internal/suppression"
	"github.com/TomasB/denylist/internal/view"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Title is the page heading and document title.
const Title = "Subscriber Utility"

// Templates parses the embedded page templates for gin's HTML renderer.
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.tmpl")
}

// Static returns the embedded assets served under /static.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// Data is the template context of index.tmpl.
type Data struct {
	Title    string
	State    *view.State
	Panel    view.Panel
	Endpoint string
}

// Handler renders the lookup form.
type Handler struct {
	svc      *suppression.Service
	endpoint string
}

// NewHandler creates a page handler. endpoint is the lookup URL the browser
// script calls.
func NewHandler(lookup data.RejectLookup, endpoint string) *Handler {
	return &Handler{svc: suppression.NewService(lookup), endpoint: endpoint}
}

// Index handles GET /. With an email query parameter the lookup runs server
// side so the form also works without JavaScript.
// GET /?email=<address>
func (h *Handler) Index(c *gin.Context) {
	var state view.State
	state.SetEmail(c.Query("email"))

	if state.CanSubmit() {
		seq := state.Submit()
		resp, status, err := h.svc.Respond(c.Request.Context(), state.Email)
		if err != nil {
			_ = c.Error(err)
			slog.Warn("page lookup failed", "email", logging.RedactEmail(state.Email), "status", status, "error", err)
		}
		state.Resolve(seq, resp)
	}

	c.HTML(http.StatusOK, "index.tmpl", Data{
		Title:    Title,
		State:    &state,
		Panel:    state.Panel(),
		Endpoint: h.endpoint,
	})
}
