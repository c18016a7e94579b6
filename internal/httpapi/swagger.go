package httpapi

import (
	"github.com/go-chi/chi/v5"
	"github.com/swaggo/swag"
	httpSwagger "github.com/swaggo/http-swagger"
)

// openAPIDoc describes the routes served by NewMux.
const openAPIDoc = `{
  "swagger": "2.0",
  "info": {
    "title": "crystal",
    "description": "Liveness, readiness and status of a bootstrapped application",
    "version": "1.0"
  },
  "basePath": "/",
  "paths": {
    "/healthz": {"get": {"summary": "Liveness probe", "produces": ["text/plain"], "responses": {"200": {"description": "ok"}}}},
    "/readyz": {"get": {
      "summary": "Readiness probe",
      "produces": ["text/plain"],
      "parameters": [{"name": "wait", "in": "query", "type": "string", "required": false, "description": "maximum time to wait, e.g. 5s"}],
      "responses": {"200": {"description": "ready"}, "400": {"description": "invalid wait duration", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}, "503": {"description": "loading or failed"}}
    }},
    "/status": {"get": {"summary": "Application status", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}}}},
    "/metrics": {"get": {"summary": "Prometheus metrics", "produces": ["text/plain"], "responses": {"200": {"description": "OK"}}}}
  },
  "definitions": {
    "types.ErrorResponse": {"type": "object", "properties": {"error": {"type": "string"}, "code": {"type": "integer"}}},
    "types.Paths": {"type": "object", "properties": {"root": {"type": "string"}, "src": {"type": "string"}, "config": {"type": "string"}, "init": {"type": "string"}, "db": {"type": "string"}}},
    "types.Resource": {"type": "object", "properties": {"name": {"type": "string"}, "handle": {"type": "string"}}},
    "types.StatusResponse": {"type": "object", "properties": {
      "id": {"type": "string"}, "state": {"type": "string", "enum": ["pending", "ready", "failed"]}, "ready": {"type": "boolean"},
      "env": {"type": "string"}, "phase": {"type": "string"}, "paths": {"$ref": "#/definitions/types.Paths"},
      "resources": {"type": "array", "items": {"$ref": "#/definitions/types.Resource"}}, "error": {"type": "string"},
      "init_duration_ms": {"type": "integer"}, "uptime_seconds": {"type": "integer"}, "server_time_unix": {"type": "integer"}
    }}
  }
}`

type staticDoc string

func (d staticDoc) ReadDoc() string { return string(d) }

func init() {
	swag.Register(swag.Name, staticDoc(openAPIDoc))
}

// MountSwagger serves the API description and Swagger UI under /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
