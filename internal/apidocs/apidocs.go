// Package apidocs serves the OpenAPI document and a Swagger UI page for it.
package apidocs

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"
	"net/http"
)

//go:embed openapi.yaml
var schemaYAML []byte

const uiPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Bookstore API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({ url: "%s", dom_id: "#swagger-ui", withCredentials: true });
  </script>
</body>
</html>
`

type Handler struct {
	json []byte
}

// New parses the embedded document once; a broken document fails startup.
func New() (*Handler, error) {
	var doc any
	if err := yaml.Unmarshal(schemaYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse openapi.yaml: %w", err)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode openapi json: %w", err)
	}
	return &Handler{json: b}, nil
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/api-docs", h.ui)
	r.Get("/api-docs/", h.ui)
	r.Get("/api-docs/openapi.yaml", h.rawYAML)
	r.Get("/api-docs/openapi.json", h.rawJSON)
}

func (h *Handler) ui(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprintf(w, uiPage, "/api-docs/openapi.json")
}

func (h *Handler) rawYAML(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(schemaYAML)
}

func (h *Handler) rawJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(h.json)
}
