// package router provides a router wrapper that captures documentation data
package router

import (
	"net/http"
	"strings"
)

// RouteResponse represents a documented response for a specific HTTP status code
type RouteResponse struct {
	StatusCode  string    // HTTP status code (e.g., "200", "400")
	Description string    // Description of the response
	Schema      any       // Response schema/type (optional)
	Examples    []Example // Example responses (optional)
}

// Example represents an example response for documentation
type Example struct {
	ContentType string // Content type of the example (e.g., "application/json")
	Value       string // Example value as string
}

// RouteInfo stores documentation for a route
type RouteInfo struct {
	Method        string                   // HTTP method (GET, POST, etc.)
	Path          string                   // URL path
	Name          string                   // Friendly name for the endpoint
	Description   string                   // Description of what the endpoint does
	Handler       http.Handler             // The actual handler function
	RequestType   any                      // Example request type (for schema generation)
	ResponseType  any                      // Example success response type (for schema generation)
	SuccessStatus string                   // Status code of the success response, "200" when unset
	SuccessDesc   string                   // Description of the success response
	Responses     map[string]RouteResponse // Map of HTTP status codes to responses
	Tags          []string                 // Tags for grouping endpoints
}

// Server describes a server entry of the generated document
type Server struct {
	URL         string
	Description string
}

// Tag describes a tag entry of the generated document
type Tag struct {
	Name        string
	Description string
}

// RouteConfig is a builder for route configuration
type RouteConfig struct {
	router        *DocRouter
	method        string
	path          string
	handler       http.HandlerFunc
	name          string
	description   string
	requestType   any
	responseType  any
	successStatus string
	successDesc   string
	responses     map[string]RouteResponse
	tags          []string
}

// DocRouter wraps http.ServeMux to add documentation capabilities
type DocRouter struct {
	title       string
	description string
	version     string

	mux         *http.ServeMux
	handler     http.Handler
	middlewares []func(http.Handler) http.Handler
	routes      []RouteInfo

	servers []Server
	tags    []Tag

	schemaRegistry  *schemaRegistry
	customResponses map[string]map[string]any
	routeResponses  map[string]map[string]string // routeID -> statusCode -> responseName
}

// NewDocRouter creates a new documented router
func NewDocRouter(title, description, version string) *DocRouter {
	mux := http.NewServeMux()
	return &DocRouter{
		title:           title,
		description:     description,
		version:         version,
		mux:             mux,
		handler:         mux,
		routes:          []RouteInfo{},
		schemaRegistry:  newSchemaRegistry(),
		customResponses: make(map[string]map[string]any),
		routeResponses:  make(map[string]map[string]string),
	}
}

// WithServer adds a server entry to the generated document
func (dr *DocRouter) WithServer(url, description string) *DocRouter {
	dr.servers = append(dr.servers, Server{URL: url, Description: description})
	return dr
}

// WithTag adds a tag entry to the generated document
func (dr *DocRouter) WithTag(name, description string) *DocRouter {
	dr.tags = append(dr.tags, Tag{Name: name, Description: description})
	return dr
}

// RegisterResponse adds a named response that routes can reference
func (dr *DocRouter) RegisterResponse(name string, response map[string]any) {
	dr.customResponses[name] = response
}

// RegisterRouteResponse associates a named response with a route and status code
func (dr *DocRouter) RegisterRouteResponse(routePath, method, statusCode, responseName string) {
	id := routeID(method, routePath)
	if _, exists := dr.routeResponses[id]; !exists {
		dr.routeResponses[id] = make(map[string]string)
	}
	dr.routeResponses[id][statusCode] = responseName
}

// Route starts a route configuration chain
func (dr *DocRouter) Route(method, path string, handler http.HandlerFunc) *RouteConfig {
	return &RouteConfig{
		router:    dr,
		method:    method,
		path:      path,
		handler:   handler,
		responses: make(map[string]RouteResponse),
	}
}

// WithName adds a name to the route
func (rc *RouteConfig) WithName(name string) *RouteConfig {
	rc.name = name
	return rc
}

// WithDescription adds a description to the route
func (rc *RouteConfig) WithDescription(description string) *RouteConfig {
	rc.description = description
	return rc
}

// WithRequest adds a request type to the route
func (rc *RouteConfig) WithRequest(requestType any) *RouteConfig {
	rc.requestType = requestType
	return rc
}

// WithResponse adds a success response type to the route
func (rc *RouteConfig) WithResponse(responseType any) *RouteConfig {
	rc.responseType = responseType
	return rc
}

// WithStatus overrides the documented success status code, e.g. "201" or "204"
func (rc *RouteConfig) WithStatus(statusCode, description string) *RouteConfig {
	rc.successStatus = statusCode
	rc.successDesc = description
	return rc
}

// WithErrorResponse adds an error response to the route
func (rc *RouteConfig) WithErrorResponse(statusCode, description string, schema any, examples ...Example) *RouteConfig {
	rc.responses[statusCode] = RouteResponse{
		StatusCode:  statusCode,
		Description: description,
		Schema:      schema,
		Examples:    examples,
	}
	return rc
}

// WithTags adds tags to the route
func (rc *RouteConfig) WithTags(tags ...string) *RouteConfig {
	rc.tags = tags
	return rc
}

// Register finalizes the route configuration and registers it with the router
func (rc *RouteConfig) Register() {
	// Go 1.22 pattern with method
	pattern := rc.method + " " + rc.path
	rc.router.mux.Handle(pattern, rc.handler)

	successStatus := rc.successStatus
	if successStatus == "" {
		successStatus = "200"
	}
	successDesc := rc.successDesc
	if successDesc == "" {
		successDesc = "successful operation"
	}

	rc.router.routes = append(rc.router.routes, RouteInfo{
		Method:        rc.method,
		Path:          rc.path,
		Name:          rc.name,
		Description:   rc.description,
		Handler:       rc.handler,
		RequestType:   rc.requestType,
		ResponseType:  rc.responseType,
		SuccessStatus: successStatus,
		SuccessDesc:   successDesc,
		Responses:     rc.responses,
		Tags:          rc.tags,
	})
}

// GetRoutes returns all documented routes
func (dr *DocRouter) GetRoutes() []RouteInfo {
	return dr.routes
}

// ServeHTTP makes DocRouter implement the http.Handler interface
func (dr *DocRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	dr.handler.ServeHTTP(w, r)
}

// Use wraps the router in middleware. Middleware added first runs outermost,
// and routes registered after Use are still covered.
func (dr *DocRouter) Use(middleware ...func(http.Handler) http.Handler) {
	dr.middlewares = append(dr.middlewares, middleware...)

	var handler http.Handler = dr.mux
	for i := len(dr.middlewares) - 1; i >= 0; i-- {
		handler = dr.middlewares[i](handler)
	}
	dr.handler = handler
}

func routeID(method, path string) string {
	return strings.ToLower(method) + ":" + path
}
