package api

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
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/APIResponse"}}}
            }
        },
        "/plugins": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "summary": "List the served load order",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/APIResponse"}}}
            }
        },
        "/plugins/{plugin}/records": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "summary": "List the records owned by a plugin",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Plugin name or load order index", "name": "plugin", "in": "path", "required": true},
                    {"type": "string", "description": "Only records with this tag", "name": "tag", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/APIResponse"}},
                    "404": {"description": "Plugin not in the load order", "schema": {"$ref": "#/definitions/APIResponse"}}
                }
            }
        },
        "/records/{plugin}/{local}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "summary": "Get the winning version of a record",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Plugin name or load order index", "name": "plugin", "in": "path", "required": true},
                    {"type": "string", "description": "Local ID in hex", "name": "local", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/APIResponse"}},
                    "400": {"description": "Invalid local ID", "schema": {"$ref": "#/definitions/APIResponse"}},
                    "404": {"description": "Record not found", "schema": {"$ref": "#/definitions/APIResponse"}}
                }
            }
        },
        "/editor-ids/{editorID}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "summary": "Find records by editor ID",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "Editor ID, matched ignoring case", "name": "editorID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/APIResponse"}},
                    "404": {"description": "No record has that editor ID", "schema": {"$ref": "#/definitions/APIResponse"}}
                }
            }
        },
        "/runs": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "summary": "List indexing runs",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/APIResponse"}}}
            }
        }
    },
    "definitions": {
        "APIResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "error": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "X-API-Key", "in": "header"}
    }
}`

// SwaggerInfo holds the exported API description. StartServer sets Host.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "espkit REST API",
	Description:      "Read-only access to a record index built from Bethesda plugin files.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
