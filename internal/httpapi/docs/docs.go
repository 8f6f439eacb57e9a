// Package docs holds the OpenAPI document served by the swagger UI.
// Regenerate with `swag init -g cmd/modelregd/docs.go -o internal/httpapi/docs`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/models": {
            "get": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "List models",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelsResponse"}}
                }
            },
            "post": {
                "description": "Registers a model and loads it. With synchronous=false the load runs in the background and 202 is returned with an operation id.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "Register a model",
                "parameters": [
                    {"description": "Model", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.RegisterRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.RegisterResponse"}},
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/types.RegisterResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/models/{id}/{version}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "Describe a model",
                "parameters": [
                    {"type": "string", "description": "Model id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Model version", "name": "version", "in": "path"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            },
            "put": {
                "description": "Applies tuning changes, loads additional devices, then propagates the configuration to the worker pool.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "Reconfigure a model",
                "parameters": [
                    {"type": "string", "description": "Model id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Model version", "name": "version", "in": "path"},
                    {"description": "Changes", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.ConfigureRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.ModelView"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            },
            "delete": {
                "description": "Without a version every registered version of the id is removed.",
                "produces": ["application/json"],
                "tags": ["models"],
                "summary": "Unregister a model",
                "parameters": [
                    {"type": "string", "description": "Model id", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Model version", "name": "version", "in": "path"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/operations/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["operations"],
                "summary": "Background operation status",
                "parameters": [
                    {"type": "string", "description": "Operation id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.OperationStatus"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["status"],
                "summary": "Registry status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 404},
                "error": {"type": "string", "example": "model not found: resnet18"}
            }
        },
        "types.MessageResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            }
        },
        "types.ModelView": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "resnet18"},
                "version": {"type": "string", "example": "1.0"},
                "url": {"type": "string", "example": "file:///opt/models/resnet18/"},
                "engine": {"type": "string", "example": "file"},
                "status": {"type": "string", "example": "READY"},
                "devices": {"type": "array", "items": {"type": "string"}},
                "batch_size": {"type": "integer", "example": 1},
                "max_batch_delay_ms": {"type": "integer", "example": 100},
                "max_idle_time_ms": {"type": "integer", "example": 60000},
                "queue_size": {"type": "integer", "example": 1000},
                "config_version": {"type": "integer", "example": 0},
                "applied_config_version": {"type": "integer", "example": 0}
            }
        },
        "types.ModelsResponse": {
            "type": "object",
            "properties": {
                "models": {"type": "array", "items": {"$ref": "#/definitions/types.ModelView"}}
            }
        },
        "types.RegisterRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "version": {"type": "string"},
                "url": {"type": "string", "example": "file:///opt/models/resnet18/"},
                "engine": {"type": "string"},
                "application": {"type": "string"},
                "model_name": {"type": "string"},
                "translator": {"type": "string"},
                "translator_factory": {"type": "string"},
                "filters": {"type": "object", "additionalProperties": {"type": "string"}},
                "arguments": {"type": "object", "additionalProperties": true},
                "options": {"type": "object", "additionalProperties": {"type": "string"}},
                "batch_size": {"type": "integer"},
                "max_batch_delay_ms": {"type": "integer"},
                "max_idle_time_ms": {"type": "integer"},
                "queue_size": {"type": "integer"},
                "devices": {"type": "array", "items": {"type": "string"}},
                "synchronous": {"type": "boolean", "example": true}
            }
        },
        "types.RegisterResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "operation_id": {"type": "string"},
                "model": {"$ref": "#/definitions/types.ModelView"}
            }
        },
        "types.ConfigureRequest": {
            "type": "object",
            "properties": {
                "batch_size": {"type": "integer", "example": 8},
                "max_batch_delay_ms": {"type": "integer", "example": 50},
                "max_idle_time_ms": {"type": "integer", "example": 120000},
                "queue_size": {"type": "integer", "example": 500},
                "devices": {"type": "array", "items": {"type": "string"}}
            }
        },
        "types.OperationStatus": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "model": {"type": "string"},
                "state": {"type": "string", "example": "done"},
                "error": {"type": "string"},
                "started_unix": {"type": "integer"},
                "finished_unix": {"type": "integer"}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "models": {"type": "array", "items": {"$ref": "#/definitions/types.ModelView"}},
                "ready_count": {"type": "integer"},
                "failed_count": {"type": "integer"},
                "pending_operations": {"type": "integer"},
                "last_error": {"type": "string"},
                "engines": {"type": "array", "items": {"type": "string"}},
                "uptime_seconds": {"type": "integer"},
                "server_time_unix": {"type": "integer"},
                "loads_total": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "modelreg API",
	Description:      "HTTP API for registering, loading and reconfiguring models.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
