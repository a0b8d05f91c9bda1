package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Enrollment Leads API",
        "description": "Student enrollment lead capture and admin dashboard API",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Leads", "description": "Lead capture and dashboard queries"},
        {"name": "Authentication", "description": "Admin session management"}
    ],
    "paths": {
        "/leads": {
            "post": {
                "tags": ["Leads"],
                "summary": "Submit an enrollment lead",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateLeadRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed"},
                    "409": {"description": "A lead with this email already exists"},
                    "429": {"description": "Rate limited"}
                }
            },
            "get": {
                "tags": ["Leads"],
                "summary": "List leads",
                "parameters": [
                    {"in": "query", "name": "search", "type": "string", "description": "Substring match on name or email"},
                    {"in": "query", "name": "course", "type": "string", "description": "Exact course filter"},
                    {"in": "query", "name": "status", "type": "string", "enum": ["NEW", "CONTACTED"]},
                    {"in": "query", "name": "page", "type": "integer", "default": 1},
                    {"in": "query", "name": "limit", "type": "integer", "default": 10, "maximum": 100}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/leads/export": {
            "get": {
                "tags": ["Leads"],
                "summary": "Export leads as CSV or PDF",
                "parameters": [
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"], "default": "csv"},
                    {"in": "query", "name": "search", "type": "string"},
                    {"in": "query", "name": "course", "type": "string"},
                    {"in": "query", "name": "status", "type": "string", "enum": ["NEW", "CONTACTED"]}
                ],
                "produces": ["text/csv", "application/pdf"],
                "responses": {
                    "200": {"description": "File download"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/leads/{id}": {
            "get": {
                "tags": ["Leads"],
                "summary": "Get a lead",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Lead not found"}
                }
            }
        },
        "/leads/{id}/status": {
            "patch": {
                "tags": ["Leads"],
                "summary": "Update lead status",
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Lead not found"},
                    "409": {"description": "Invalid status transition"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate admin",
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Session cookie issued"},
                    "401": {"description": "Invalid email or password"},
                    "429": {"description": "Rate limited"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Clear the admin session",
                "responses": {
                    "204": {"description": "Session cleared"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current admin identity",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthorized"}
                }
            }
        }
    },
    "definitions": {
        "Lead": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "course": {"type": "string"},
                "college": {"type": "string"},
                "year": {"type": "string"},
                "status": {"type": "string", "enum": ["NEW", "CONTACTED"]},
                "sheetRowId": {"type": "string", "x-nullable": true},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "CreateLeadRequest": {
            "type": "object",
            "required": ["name", "email", "phone", "course", "college", "year"],
            "properties": {
                "name": {"type": "string", "minLength": 2, "maxLength": 100},
                "email": {"type": "string", "format": "email"},
                "phone": {"type": "string", "minLength": 7, "maxLength": 20},
                "course": {"type": "string", "maxLength": 100},
                "college": {"type": "string", "maxLength": 200},
                "year": {"type": "string", "maxLength": 20}
            }
        },
        "UpdateStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["NEW", "CONTACTED"]}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "format": "email"},
                "password": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"},
                "totalPages": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
