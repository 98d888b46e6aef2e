// Package docs registers the OpenAPI description served under /swagger.
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
    "security": [{"BearerAuth": []}],
    "paths": {
        "/v1/houses": {
            "get": {
                "tags": ["houses"],
                "summary": "List house documents",
                "parameters": [
                    {"type": "string", "name": "id", "in": "query"},
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "master_number", "in": "query"},
                    {"type": "string", "name": "house_number", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["houses"],
                "summary": "Register a house document",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.HouseDocumentInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.HouseWriteResult"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "409": {"description": "Duplicate house number", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "422": {"description": "Unknown directory code", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        },
        "/v1/houses/delete": {
            "post": {
                "tags": ["houses"],
                "summary": "Delete house documents in batch",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.DeleteHousesRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.HouseDeleteResult"}}}
            }
        },
        "/v1/houses/{id}": {
            "get": {
                "tags": ["houses"],
                "summary": "Get a house document with its active line items",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["houses"],
                "summary": "Update a house document",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.HouseDocumentInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.HouseWriteResult"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/common.ErrorResponse"}},
                    "409": {"description": "Duplicate house number", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["houses"],
                "summary": "Delete a house document",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.HouseDeleteResult"}}}
            }
        },
        "/v1/houses/{id}/history": {
            "get": {
                "tags": ["houses"],
                "summary": "Audit trail of a house document",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/jobs": {
            "get": {
                "tags": ["jobs"],
                "summary": "List background jobs",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/jobs/{name}/run": {
            "post": {
                "tags": ["jobs"],
                "summary": "Trigger a background job now",
                "parameters": [{"type": "string", "name": "name", "in": "path", "required": true}],
                "responses": {
                    "202": {"description": "Accepted"},
                    "404": {"description": "Unknown job", "schema": {"$ref": "#/definitions/common.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "common.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "details": {"type": "object", "additionalProperties": {"type": "string"}}
                    }
                }
            }
        },
        "handlers.DeleteHousesRequest": {
            "type": "object",
            "properties": {"ids": {"type": "array", "items": {"type": "string"}}}
        },
        "models.HouseDocumentInput": {
            "type": "object",
            "required": ["master_number", "house_number", "port_of_loading", "port_of_discharge"],
            "properties": {
                "master_id": {"type": "string"},
                "master_number": {"type": "string"},
                "house_number": {"type": "string"},
                "port_of_loading": {"type": "string"},
                "port_of_discharge": {"type": "string"},
                "customer_code": {"type": "string"},
                "carrier_code": {"type": "string"},
                "vessel_name": {"type": "string"},
                "voyage_number": {"type": "string"},
                "etd": {"type": "string", "format": "date-time"},
                "eta": {"type": "string", "format": "date-time"},
                "containers": {"type": "array", "items": {"type": "object"}},
                "charges": {"type": "array", "items": {"type": "object"}}
            }
        },
        "models.HouseWriteResult": {
            "type": "object",
            "properties": {
                "house_id": {"type": "string"},
                "house_number": {"type": "string"},
                "master_id": {"type": "string"},
                "master_number": {"type": "string"},
                "master_created": {"type": "boolean"}
            }
        },
        "models.HouseDeleteResult": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "deleted": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {"id": {"type": "string"}, "house_number": {"type": "string"}}
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "freightdesk document API",
	Description:      "House and master shipping document registration.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
