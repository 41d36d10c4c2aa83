// Package swagger holds the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/portfee/main.go -o api/swagger
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {"get": {"tags": ["ops"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}},
        "/login": {"post": {"tags": ["auth"], "summary": "Login user", "consumes": ["application/json"], "produces": ["application/json"], "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/service.LoginRequest"}}], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/logout": {"post": {"tags": ["auth"], "summary": "Logout", "responses": {"200": {"description": "OK"}}}},
        "/api/me": {"get": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Get current user", "responses": {"200": {"description": "OK"}}}},
        "/api/users": {"post": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Create a new user", "responses": {"201": {"description": "Created"}, "403": {"description": "Forbidden"}}}},
        "/api/forms": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["forms"], "summary": "List harbor dues forms", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["forms"], "summary": "Create a harbor dues form", "responses": {"201": {"description": "Created"}}}
        },
        "/api/forms/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["forms"], "summary": "Get a harbor dues form", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["forms"], "summary": "Update a harbor dues form", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["forms"], "summary": "Delete a harbor dues form", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/forms/{id}/submit": {"post": {"security": [{"BearerAuth": []}], "tags": ["forms"], "summary": "Submit a form", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/api/forms/{id}/approve": {"post": {"security": [{"BearerAuth": []}], "tags": ["forms"], "summary": "Approve a form", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/api/forms/{id}/reject": {"post": {"security": [{"BearerAuth": []}], "tags": ["forms"], "summary": "Reject a form", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/api/forms/{id}/invoice": {"post": {"security": [{"BearerAuth": []}], "tags": ["forms"], "summary": "Mark a form invoiced", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/api/forms/{id}/paid": {"post": {"security": [{"BearerAuth": []}], "tags": ["forms"], "summary": "Mark a form paid", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/api/forms/{id}/reopen": {"post": {"security": [{"BearerAuth": []}], "tags": ["forms"], "summary": "Reopen a rejected form", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/api/forms/{id}/taxes": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["forms"], "summary": "Preview form taxes", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["forms"], "summary": "Recalculate form taxes", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/forms/{id}/history": {"get": {"security": [{"BearerAuth": []}], "tags": ["forms"], "summary": "Form history", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/api/tax-rates": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["tax-rates"], "summary": "List tax rate schedules", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["tax-rates"], "summary": "Create a tax rate schedule", "responses": {"201": {"description": "Created"}}}
        },
        "/api/tax-rates/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["tax-rates"], "summary": "Get a tax rate schedule", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["tax-rates"], "summary": "Update a tax rate schedule", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["tax-rates"], "summary": "Delete a tax rate schedule", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/tax-rates/{id}/port-tax-rate": {"get": {"security": [{"BearerAuth": []}], "tags": ["tax-rates"], "summary": "Look up a port tax rate", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "string", "name": "port_id", "in": "query"}, {"type": "string", "name": "vessel_type", "in": "query", "required": true}, {"type": "integer", "name": "gross_tonnage", "in": "query", "required": true}], "responses": {"200": {"description": "OK"}}}},
        "/api/port-authorities": {"get": {"security": [{"BearerAuth": []}], "tags": ["reference"], "summary": "List port authorities", "responses": {"200": {"description": "OK"}}}, "post": {"security": [{"BearerAuth": []}], "tags": ["reference"], "summary": "Create a port authority", "responses": {"201": {"description": "Created"}}}},
        "/api/ports": {"get": {"security": [{"BearerAuth": []}], "tags": ["reference"], "summary": "List ports", "responses": {"200": {"description": "OK"}}}, "post": {"security": [{"BearerAuth": []}], "tags": ["reference"], "summary": "Create a port", "responses": {"201": {"description": "Created"}}}},
        "/api/shipping-agents": {"get": {"security": [{"BearerAuth": []}], "tags": ["reference"], "summary": "List shipping agents", "responses": {"200": {"description": "OK"}}}, "post": {"security": [{"BearerAuth": []}], "tags": ["reference"], "summary": "Create a shipping agent", "responses": {"201": {"description": "Created"}}}},
        "/api/disembarkment-sites": {"get": {"security": [{"BearerAuth": []}], "tags": ["reference"], "summary": "List disembarkment sites", "responses": {"200": {"description": "OK"}}}, "post": {"security": [{"BearerAuth": []}], "tags": ["reference"], "summary": "Create a disembarkment site", "responses": {"201": {"description": "Created"}}}},
        "/api/audit-logs": {"get": {"security": [{"BearerAuth": []}], "tags": ["audit"], "summary": "Get audit logs", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}}
    },
    "definitions": {
        "service.LoginRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {"password": {"type": "string"}, "username": {"type": "string"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Port Fee API",
	Description:      "Harbour dues forms, tax rate schedules and tax calculation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
