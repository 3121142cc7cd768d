// Package docs registers the OpenAPI document served under /swagger.
// Regenerate the paths section with `swag init -g cmd/server/main.go` after
// changing handler annotations.
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
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/health": {"get": {"tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}},
        "/health/ready": {"get": {"tags": ["health"], "summary": "Readiness probe", "responses": {"200": {"description": "OK"}, "503": {"description": "Degraded"}}}},
        "/api/users/register": {"post": {"tags": ["users"], "summary": "Register the caller", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}, "422": {"description": "Validation failed"}}}},
        "/api/users/profile": {
            "get": {"tags": ["users"], "summary": "Caller profile", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "Not registered"}}},
            "put": {"tags": ["users"], "summary": "Update caller profile", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/api/clients": {
            "get": {"tags": ["clients"], "summary": "List clients", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["clients"], "summary": "Create a client", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/api/clients/{id}": {
            "get": {"tags": ["clients"], "summary": "Get a client", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "put": {"tags": ["clients"], "summary": "Update a client", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
        },
        "/api/clients/{id}/documents": {"post": {"tags": ["clients"], "summary": "Attach a document link", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/api/clients/{id}/documents/upload": {"post": {"tags": ["clients"], "summary": "Upload a document", "consumes": ["multipart/form-data"], "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "file", "in": "formData", "required": true, "type": "file"}], "responses": {"200": {"description": "OK"}, "503": {"description": "Storage not configured"}}}},
        "/api/cases": {
            "get": {"tags": ["cases"], "summary": "List cases", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["cases"], "summary": "Open a case", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "202": {"description": "Created, client link pending"}}}
        },
        "/api/cases/{id}": {
            "get": {"tags": ["cases"], "summary": "Get a case", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["cases"], "summary": "Update a case", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/cases/{id}/updates": {"post": {"tags": ["cases"], "summary": "Append a case update", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/api/invoices": {
            "get": {"tags": ["invoices"], "summary": "List invoices", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["invoices"], "summary": "Issue an invoice", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}
        },
        "/api/invoices/{id}": {"get": {"tags": ["invoices"], "summary": "Get an invoice", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/api/invoices/{id}/status": {"put": {"tags": ["invoices"], "summary": "Change invoice status", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "422": {"description": "Invalid status"}}}},
        "/api/attendance/check-in": {"post": {"tags": ["attendance"], "summary": "Record a check-in", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}},
        "/api/attendance/check-out": {"post": {"tags": ["attendance"], "summary": "Record a check-out", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}},
        "/api/attendance/report": {"get": {"tags": ["attendance"], "summary": "Caller attendance in a range", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/reports/generate": {"post": {"tags": ["reports"], "summary": "Generate a report artifact", "produces": ["application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "text/csv"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "Artifact"}, "400": {"description": "Invalid report type"}}}},
        "/api/reports/revenue": {"get": {"tags": ["reports"], "summary": "Monthly revenue", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/reports/cases": {"get": {"tags": ["reports"], "summary": "Case status distribution", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/reports/clients": {"get": {"tags": ["reports"], "summary": "Monthly client acquisition", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/email/test": {"post": {"tags": ["email"], "summary": "Send a diagnostics email", "responses": {"200": {"description": "OK"}, "503": {"description": "Mail not configured"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Law Firm CRM API",
	Description:      "Clients, cases, invoices, attendance and reports for a law practice.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
