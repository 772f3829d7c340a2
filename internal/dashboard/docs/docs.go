// Package docs contains the swagger documentation for the Dashboard
// Bridge's read-only HTTP surface.
// Run `swag init -g internal/dashboard/server.go -o internal/dashboard/docs` to regenerate.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ccw Dashboard Bridge API",
        "description": "Read-only status endpoints and WebSocket ticket issuance for the ccw dashboard.",
        "version": "1.0"
    },
    "host": "localhost:8784",
    "basePath": "/",
    "paths": {
        "/api/status/all": {
            "get": {
                "description": "Lists every known session across all locations, with parsed header metadata",
                "produces": ["application/json"],
                "tags": ["status"],
                "summary": "List all sessions",
                "responses": {
                    "200": {"description": "OK"},
                    "500": {"description": "Store error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/api/session-detail": {
            "get": {
                "description": "Reads one piece of a session's content by type (session, task, context, plan, review, summary)",
                "produces": ["application/json"],
                "tags": ["status"],
                "summary": "Read session content",
                "parameters": [
                    {"name": "sessionId", "in": "query", "required": true, "type": "string"},
                    {"name": "type", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/api/hook": {
            "post": {
                "description": "Fire-and-forget ingress: publishes the given envelope onto the Event Bus",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["hook"],
                "summary": "Publish an external state-change event",
                "responses": {
                    "200": {"description": "Accepted"},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/api/ws/ticket": {
            "post": {
                "description": "Issues a short-lived, single-use ticket for authenticating the /ws upgrade",
                "produces": ["application/json"],
                "tags": ["ws"],
                "summary": "Issue a WebSocket auth ticket",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ws": {
            "get": {
                "description": "Upgrades to WebSocket and streams every Event Bus event as a JSON text frame",
                "tags": ["ws"],
                "summary": "Subscribe to live Event Bus traffic",
                "parameters": [
                    {"name": "ticket", "in": "query", "required": false, "type": "string"}
                ],
                "responses": {
                    "101": {"description": "Switching Protocols"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8784",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "ccw Dashboard Bridge API",
	Description:      "Read-only status endpoints and WebSocket ticket issuance for the ccw dashboard.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
