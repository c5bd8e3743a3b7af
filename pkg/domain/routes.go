package domain

import "net/http"

// Route is one HTTP endpoint of the assist service.
type Route struct {
	Method string
	Path   string
}

const (
	PathHealth   = "/healthz"
	PathModes    = "/api/ai/modes"
	PathGenerate = "/api/ai/generate"
)

var routeTable = []Route{
	{Method: http.MethodGet, Path: PathHealth},
	{Method: http.MethodGet, Path: PathModes},
	{Method: http.MethodPost, Path: PathGenerate},
}

// Routes lists the endpoints the server registers and api/openapi.yaml documents.
func Routes() []Route {
	out := make([]Route, len(routeTable))
	copy(out, routeTable)
	return out
}
