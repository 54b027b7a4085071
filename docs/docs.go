// Package docs registers the OpenAPI document served at /swagger/doc.json.
package docs

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
        "/register/": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/models.UserCreateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.User"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/login/": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/services.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.TokenPair"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/token/refresh/": {
            "post": {
                "tags": ["auth"],
                "summary": "Refresh an access token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/services.RefreshRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/user/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "List users",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.User"}}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/user/{id}/": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Update my profile",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "integer", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/models.UserUpdateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.User"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/user/{id}/role/": {
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["users"],
                "summary": "Change a user's role",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "integer", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/models.UserRoleUpdateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.User"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/events/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["events"],
                "summary": "List events",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Event"}}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["events"],
                "summary": "Create an event",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/models.EventCreateRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Event"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/events/{id}/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["events"],
                "summary": "Get an event",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Event"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["events"],
                "summary": "Update an event",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "integer", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/models.EventUpdateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Event"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["events"],
                "summary": "Delete an event",
                "parameters": [
                    {"in": "path", "name": "id", "type": "integer", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/tickets/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["tickets"],
                "summary": "List my tickets",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Ticket"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/tickets/{id}/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["tickets"],
                "summary": "Get one of my tickets",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Ticket"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/tickets/{id}/purchase/": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["tickets"],
                "summary": "Purchase tickets",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "integer", "required": true, "description": "Event ID"},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/models.TicketPurchaseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Ticket"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/audit/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["audit"],
                "summary": "List audit entries",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "query", "name": "limit", "type": "integer", "description": "Maximum entries (default 50, max 200)"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.AuditLog"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.ErrorBody"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/response.ErrorBody"}}
                }
            }
        },
        "/health": {
            "get": {
                "tags": ["platform"],
                "summary": "Health check",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "auth.TokenPair": {
            "type": "object",
            "properties": {
                "access": {"type": "string"},
                "refresh": {"type": "string"}
            }
        },
        "models.AuditLog": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "actor_user_id": {"type": "integer"},
                "action": {"type": "string"},
                "target_type": {"type": "string"},
                "target_id": {"type": "integer"},
                "details": {"type": "object"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "models.Event": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "location": {"type": "string"},
                "date": {"type": "string", "format": "date-time"},
                "total_tickets": {"type": "integer"},
                "tickets_sold": {"type": "integer"},
                "available_tickets": {"type": "integer"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "models.EventCreateRequest": {
            "type": "object",
            "required": ["name", "total_tickets"],
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "location": {"type": "string"},
                "date": {"type": "string", "format": "date-time"},
                "total_tickets": {"type": "integer", "minimum": 0}
            }
        },
        "models.EventUpdateRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "location": {"type": "string"},
                "date": {"type": "string", "format": "date-time"},
                "total_tickets": {"type": "integer", "minimum": 0}
            }
        },
        "models.Ticket": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "user_id": {"type": "integer"},
                "event_id": {"type": "integer"},
                "quantity": {"type": "integer"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "models.TicketPurchaseRequest": {
            "type": "object",
            "required": ["quantity"],
            "properties": {
                "quantity": {"type": "integer", "minimum": 1, "maximum": 10}
            }
        },
        "models.User": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "email": {"type": "string"},
                "username": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "role": {"type": "string", "enum": ["Admin", "User"]},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "models.UserCreateRequest": {
            "type": "object",
            "required": ["email", "password", "first_name", "last_name"],
            "properties": {
                "username": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string", "enum": ["User"]},
                "password": {"type": "string"}
            }
        },
        "models.UserRoleUpdateRequest": {
            "type": "object",
            "required": ["role"],
            "properties": {
                "role": {"type": "string", "enum": ["Admin", "User"]}
            }
        },
        "models.UserUpdateRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "response.ErrorBody": {
            "type": "object",
            "properties": {
                "detail": {"type": "string"},
                "code": {"type": "string"},
                "field": {"type": "string"}
            }
        },
        "services.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "services.RefreshRequest": {
            "type": "object",
            "required": ["refresh"],
            "properties": {
                "refresh": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Event Ticketing API",
	Description:      "Event management and ticket purchase backend with JWT authentication.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
