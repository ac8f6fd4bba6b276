package router

import (
	"fmt"
	"strings"
)

const openAPIVersion = "3.0.3"

var operationIDReplacer = strings.NewReplacer("/", "_", "{", "", "}", "", ".", "")

// OpenAPI generates an OpenAPI document describing every registered route
func (dr *DocRouter) OpenAPI() map[string]any {
	// start from a clean registry so repeated calls are deterministic
	dr.schemaRegistry = newSchemaRegistry()

	spec := map[string]any{
		"openapi": openAPIVersion,
		"info": map[string]any{
			"title":       dr.title,
			"description": dr.description,
			"version":     dr.version,
		},
		"paths": dr.generatePaths(),
	}

	if len(dr.servers) > 0 {
		servers := make([]any, 0, len(dr.servers))
		for _, s := range dr.servers {
			servers = append(servers, map[string]any{
				"url":         s.URL,
				"description": s.Description,
			})
		}
		spec["servers"] = servers
	}

	if len(dr.tags) > 0 {
		tags := make([]any, 0, len(dr.tags))
		for _, t := range dr.tags {
			tags = append(tags, map[string]any{
				"name":        t.Name,
				"description": t.Description,
			})
		}
		spec["tags"] = tags
	}

	// components last: generating paths fills the schema registry
	spec["components"] = dr.generateComponents()

	return spec
}

// extractPathParams gets path parameters from a URL path
func extractPathParams(path string) []string {
	var params []string

	for _, part := range strings.Split(path, "/") {
		if len(part) > 2 && part[0] == '{' && part[len(part)-1] == '}' {
			name := strings.TrimSuffix(part[1:len(part)-1], "...")
			params = append(params, name)
		}
	}

	return params
}

// generatePathParameters creates parameter objects for path parameters
func generatePathParameters(params []string) []any {
	parameters := make([]any, 0, len(params))

	for _, param := range params {
		parameters = append(parameters, map[string]any{
			"name":     param,
			"in":       "path",
			"required": true,
			"schema": map[string]any{
				"type": "string",
			},
			"description": fmt.Sprintf("%s parameter", param),
		})
	}

	return parameters
}

// openAPIPath strips the "..." wildcard suffix ServeMux accepts
func openAPIPath(path string) string {
	return strings.ReplaceAll(path, "...}", "}")
}

// generatePaths creates the paths section of the OpenAPI spec
func (dr *DocRouter) generatePaths() map[string]any {
	paths := map[string]any{}

	for _, route := range dr.routes {
		path := openAPIPath(route.Path)

		if _, exists := paths[path]; !exists {
			paths[path] = map[string]any{}
		}

		pathItem := paths[path].(map[string]any)
		method := strings.ToLower(route.Method)

		operation := map[string]any{
			"summary":     route.Name,
			"description": route.Description,
			"operationId": method + operationIDReplacer.Replace(path),
			"responses":   dr.generateResponses(route),
		}

		if len(route.Tags) > 0 {
			operation["tags"] = route.Tags
		}

		if pathParams := extractPathParams(path); len(pathParams) > 0 {
			operation["parameters"] = generatePathParameters(pathParams)
		}

		// add request body for POST, PUT, PATCH
		if route.RequestType != nil && (method == "post" || method == "put" || method == "patch") {
			operation["requestBody"] = dr.generateRequestBody(route)
		}

		pathItem[method] = operation
	}

	return paths
}

// generateResponses creates response documentation
func (dr *DocRouter) generateResponses(route RouteInfo) map[string]any {
	responses := map[string]any{}

	for statusCode, routeResponse := range route.Responses {
		content := map[string]any{}

		if routeResponse.Schema != nil {
			content["schema"] = dr.schemaRef(routeResponse.Schema)
		}

		if len(routeResponse.Examples) > 0 {
			examples := map[string]any{}
			for _, example := range routeResponse.Examples {
				examples[example.ContentType] = map[string]any{
					"value": example.Value,
				}
			}
			content["examples"] = examples
		}

		response := map[string]any{
			"description": routeResponse.Description,
		}

		if len(content) > 0 {
			response["content"] = map[string]any{
				"application/json": content,
			}
		}

		responses[statusCode] = response
	}

	// success response unless the route overrode it explicitly
	status := route.SuccessStatus
	if status == "" {
		status = "200"
	}
	if _, exists := responses[status]; !exists {
		response := map[string]any{
			"description": route.SuccessDesc,
		}
		if route.ResponseType != nil {
			response["content"] = map[string]any{
				"application/json": map[string]any{
					"schema": dr.schemaRef(route.ResponseType),
				},
			}
		}
		responses[status] = response
	}

	// named responses registered for this route
	if routeResps, exists := dr.routeResponses[routeID(route.Method, route.Path)]; exists {
		for statusCode, responseName := range routeResps {
			if _, exists := responses[statusCode]; exists {
				continue
			}
			responses[statusCode] = map[string]any{
				"$ref": fmt.Sprintf("#/components/responses/%s", responseName),
			}
		}
	}

	return responses
}

// generateRequestBody creates request body documentation
func (dr *DocRouter) generateRequestBody(route RouteInfo) map[string]any {
	return map[string]any{
		"description": fmt.Sprintf("request body for %s", route.Name),
		"required":    true,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": dr.schemaRef(route.RequestType),
			},
		},
	}
}

// generateComponents creates reusable components
func (dr *DocRouter) generateComponents() map[string]any {
	components := map[string]any{
		"schemas": dr.schemaRegistry.getSchemas(),
	}

	if len(dr.customResponses) > 0 {
		responses := make(map[string]any, len(dr.customResponses))
		for name, response := range dr.customResponses {
			responses[name] = response
		}
		components["responses"] = responses
	}

	return components
}
