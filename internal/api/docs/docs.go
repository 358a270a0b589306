// Package docs holds the OpenAPI description served at /swagger/*.
// Regenerate with: swag init -g internal/api/router.go -o internal/api/docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register a new user", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Login", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "404": {"description": "Not Found"}}}},
        "/health": {"get": {"tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}},
        "/health/ready": {"get": {"tags": ["health"], "summary": "Readiness probe", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}},
        "/v1/me": {"get": {"tags": ["auth"], "summary": "Current user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/v1/catalog": {
            "get": {"tags": ["shop"], "summary": "List catalog items", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["shop"], "summary": "Add a catalog item (admin)", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "403": {"description": "Forbidden"}}}
        },
        "/v1/purchases": {"post": {"tags": ["shop"], "summary": "Buy one unit of a catalog item", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "Idempotency-Key", "in": "header"}], "responses": {"200": {"description": "Replayed"}, "201": {"description": "Created"}, "422": {"description": "Insufficient funds"}, "500": {"description": "Grant failed or needs reconciliation"}, "503": {"description": "Busy"}}}},
        "/v1/inventory": {"get": {"tags": ["shop"], "summary": "List the caller's inventory", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/v1/users/{id}/credit": {"post": {"tags": ["admin"], "summary": "Credit a user's balance (admin)", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/v1/admin/purchases/unreconciled": {"get": {"tags": ["admin"], "summary": "Purchases whose refund failed (admin)", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/v1/rooms": {
            "get": {"tags": ["rooms"], "summary": "Rooms waiting for players with a free seat", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["rooms"], "summary": "Host a new room", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/v1/rooms/{id}": {"get": {"tags": ["rooms"], "summary": "Room with its members", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/v1/rooms/{id}/start": {"post": {"tags": ["rooms"], "summary": "Start the game (host or admin)", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "422": {"description": "Invalid transition"}}}},
        "/v1/rooms/{id}/join": {"post": {"tags": ["rooms"], "summary": "Put the caller's character into a room", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Room full, closed, or character elsewhere"}, "503": {"description": "Busy"}}}},
        "/v1/presence/leave": {"post": {"tags": ["rooms"], "summary": "Take the caller's character out of its room", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/v1/rooms/{id}/ws": {"get": {"tags": ["rooms"], "summary": "Websocket feed of room events (members only)", "security": [{"BearerAuth": []}], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"101": {"description": "Switching Protocols"}, "403": {"description": "Forbidden"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "roomhub API",
	Description:      "Rooms, presence, currency and item purchases for a multiplayer social space.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
