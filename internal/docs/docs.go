// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with `swag init -g cmd/api/main.go -o internal/docs` after changing handler annotations.
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
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a new user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handlers.RegisterRequest"}}],
                "responses": {
                    "201": {"description": "User registered and tokens generated", "schema": {"$ref": "#/definitions/handlers.AuthResponse"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Login user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handlers.LoginRequest"}}],
                "responses": {
                    "200": {"description": "User authenticated and tokens generated", "schema": {"$ref": "#/definitions/handlers.AuthResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "423": {"description": "Account locked", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["auth"],
                "summary": "Refresh tokens",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handlers.RefreshRequest"}}],
                "responses": {
                    "200": {"description": "New token pair", "schema": {"$ref": "#/definitions/handlers.AuthResponse"}},
                    "401": {"description": "Invalid or reused refresh token", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/profile": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["user"],
                "summary": "Get user profile",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "User profile", "schema": {"$ref": "#/definitions/handlers.ProfileResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/transactions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "List transactions",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Inclusive start (YYYY-MM-DD or RFC3339)", "name": "startDate", "in": "query"},
                    {"type": "string", "description": "Inclusive end (YYYY-MM-DD covers the whole day, or RFC3339)", "name": "endDate", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Transactions", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Transaction"}}},
                    "400": {"description": "Invalid date", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "Create a transaction",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handlers.TransactionRequest"}}],
                "responses": {
                    "200": {"description": "Transaction created", "schema": {"$ref": "#/definitions/models.Transaction"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "Update a transaction",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/handlers.UpdateTransactionRequest"}}],
                "responses": {
                    "200": {"description": "Transaction updated", "schema": {"$ref": "#/definitions/models.Transaction"}},
                    "400": {"description": "Missing id or invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Transaction not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "Delete a transaction",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "Transaction id", "name": "id", "in": "query", "required": true}],
                "responses": {
                    "200": {"description": "Transaction deleted", "schema": {"$ref": "#/definitions/handlers.MessageResponse"}},
                    "400": {"description": "Missing id", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Transaction not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/transactions/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["transactions"],
                "summary": "Transaction summary",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Restrict to a calendar month (YYYY-MM)", "name": "month", "in": "query"},
                    {"type": "string", "description": "Inclusive start", "name": "startDate", "in": "query"},
                    {"type": "string", "description": "Inclusive end", "name": "endDate", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Totals", "schema": {"$ref": "#/definitions/summary.Summary"}},
                    "400": {"description": "Invalid month or date", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorDetail": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}}
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"$ref": "#/definitions/handlers.ErrorDetail"}}
        },
        "handlers.MessageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "handlers.RegisterRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}, "name": {"type": "string"}}
        },
        "handlers.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "handlers.RefreshRequest": {
            "type": "object",
            "required": ["refresh_token"],
            "properties": {"refresh_token": {"type": "string"}}
        },
        "handlers.UserResponse": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "email": {"type": "string"}, "name": {"type": "string"}, "last_login_at": {"type": "string"}}
        },
        "handlers.AuthResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "refresh_token": {"type": "string"},
                "user": {"$ref": "#/definitions/handlers.UserResponse"}
            }
        },
        "handlers.ProfileResponse": {
            "type": "object",
            "properties": {"user": {"$ref": "#/definitions/handlers.UserResponse"}}
        },
        "handlers.TransactionRequest": {
            "type": "object",
            "required": ["type", "amount", "description", "date", "category"],
            "properties": {
                "type": {"type": "string", "enum": ["INCOME", "EXPENSE"]},
                "amount": {"type": "string", "example": "1000.50"},
                "description": {"type": "string"},
                "date": {"type": "string", "example": "2024-05-03"},
                "category": {"type": "string"},
                "isRecurring": {"type": "boolean"},
                "recurringFrequency": {"type": "string"},
                "creditCycle": {"type": "integer"}
            }
        },
        "handlers.UpdateTransactionRequest": {
            "type": "object",
            "required": ["id", "type", "amount", "description", "date", "category"],
            "properties": {
                "id": {"type": "string"},
                "type": {"type": "string", "enum": ["INCOME", "EXPENSE"]},
                "amount": {"type": "string", "example": "1000.50"},
                "description": {"type": "string"},
                "date": {"type": "string", "example": "2024-05-03"},
                "category": {"type": "string"},
                "isRecurring": {"type": "boolean"},
                "recurringFrequency": {"type": "string"},
                "creditCycle": {"type": "integer"}
            }
        },
        "models.Transaction": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "userId": {"type": "string"},
                "type": {"type": "string", "enum": ["INCOME", "EXPENSE"]},
                "amount": {"type": "string"},
                "description": {"type": "string"},
                "date": {"type": "string"},
                "category": {"type": "string"},
                "isRecurring": {"type": "boolean"},
                "recurringFrequency": {"type": "string"},
                "creditCycle": {"type": "integer"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "summary.Summary": {
            "type": "object",
            "properties": {
                "income": {"type": "string"},
                "expenses": {"type": "string"},
                "balance": {"type": "string"},
                "balanceToDate": {"type": "string"},
                "pendingIncome": {"type": "string"},
                "count": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Paisa API",
	Description:      "Paisa tracks personal income and expenses and reports balances over time.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
