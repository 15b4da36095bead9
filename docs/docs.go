// Package docs registers the OpenAPI document served under /swagger.
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
        "/articles": {
            "get": {
                "description": "Returns cached articles for (kind, keywords) or fetches them from the news source and caches them. Keywords are order- and case-insensitive.",
                "produces": ["application/json"],
                "tags": ["Articles"],
                "summary": "Look up articles by keywords",
                "operationId": "getArticles",
                "parameters": [
                    {"enum": ["everything", "headlines", "all"], "type": "string", "default": "everything", "description": "Source kind", "name": "kind", "in": "query"},
                    {"type": "string", "example": "nvidia,ai", "description": "Comma-separated keywords (repeatable)", "name": "q", "in": "query"},
                    {"maximum": 100, "minimum": 1, "type": "integer", "description": "Max articles kept on fetch", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ArticlesResponse"}, "headers": {"X-Cache": {"type": "string", "description": "HIT or MISS"}}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "News source failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "503": {"description": "News source quota exhausted", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/cache": {
            "get": {
                "description": "Returns entry metadata, most recently written first. Supports weak ETag via If-None-Match and may return 304.",
                "produces": ["application/json"],
                "tags": ["Cache"],
                "summary": "List cache entries (paginated)",
                "operationId": "listCache",
                "parameters": [
                    {"type": "string", "description": "Return 304 if ETag matches", "name": "If-None-Match", "in": "header"},
                    {"minimum": 1, "type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"maximum": 100, "minimum": 1, "type": "integer", "default": 20, "description": "Items per page", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ListCacheResponse"}, "headers": {"ETag": {"type": "string", "description": "Weak ETag for current cache state"}}},
                    "304": {"description": "Not Modified", "schema": {"type": "string"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/cache/related": {
            "get": {
                "description": "Ranks cached keyword sets by Jaccard similarity to q.",
                "produces": ["application/json"],
                "tags": ["Cache"],
                "summary": "Find related cached keyword sets",
                "operationId": "relatedKeys",
                "parameters": [
                    {"type": "string", "example": "nvidia,ai", "description": "Comma-separated keywords", "name": "q", "in": "query", "required": true},
                    {"maximum": 50, "minimum": 1, "type": "integer", "default": 5, "description": "Max results", "name": "k", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RelatedResponse"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/cache/{kind}": {
            "put": {
                "description": "Stores the given articles under (kind, q), replacing any existing entry.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Cache"],
                "summary": "Seed or overwrite a cache entry",
                "operationId": "putCacheEntry",
                "parameters": [
                    {"enum": ["everything", "headlines", "all"], "type": "string", "description": "Source kind", "name": "kind", "in": "path", "required": true},
                    {"type": "string", "example": "nvidia,ai", "description": "Comma-separated keywords", "name": "q", "in": "query"},
                    {"description": "Articles to store", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.PutEntryRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content", "schema": {"type": "string"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Cache write failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["Cache"],
                "summary": "Remove a cache entry",
                "operationId": "deleteCacheEntry",
                "parameters": [
                    {"type": "string", "description": "Source kind", "name": "kind", "in": "path", "required": true},
                    {"type": "string", "example": "nvidia,ai", "description": "Comma-separated keywords", "name": "q", "in": "query"}
                ],
                "responses": {
                    "204": {"description": "No Content", "schema": {"type": "string"}},
                    "404": {"description": "Entry not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.EntryInfo": {
            "type": "object",
            "properties": {
                "normalized_keywords": {"type": "string", "example": "ai,nvidia"},
                "payload_bytes": {"type": "integer", "example": 5120},
                "source_kind": {"type": "string", "example": "everything"},
                "updated_at": {"type": "string"}
            }
        },
        "handlers.ArticlesResponse": {
            "type": "object",
            "properties": {
                "articles": {"type": "array", "items": {"type": "object"}},
                "count": {"type": "integer", "example": 10},
                "from_cache": {"type": "boolean", "example": false},
                "keywords": {"type": "string", "example": "ai,nvidia"},
                "kind": {"type": "string", "example": "everything"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "bad_request"},
                "message": {"type": "string", "example": "q is required for kind everything"},
                "request_id": {"type": "string", "example": "123e4567-e89b-12d3-a456-426614174000"}
            }
        },
        "handlers.ListCacheResponse": {
            "type": "object",
            "properties": {
                "entries": {"type": "array", "items": {"$ref": "#/definitions/domain.EntryInfo"}},
                "pagination": {"$ref": "#/definitions/utils.Page"}
            }
        },
        "handlers.PutEntryRequest": {
            "type": "object",
            "properties": {
                "articles": {"type": "array", "items": {"type": "object"}}
            }
        },
        "handlers.RelatedResponse": {
            "type": "object",
            "properties": {
                "query": {"type": "string", "example": "ai,nvidia"},
                "results": {"type": "array", "items": {"$ref": "#/definitions/search.Result"}}
            }
        },
        "search.Result": {
            "type": "object",
            "properties": {
                "key": {"type": "string", "example": "ai,nvidia"},
                "score": {"type": "number", "example": 0.5}
            }
        },
        "utils.Page": {
            "type": "object",
            "properties": {
                "has_next": {"type": "boolean", "example": true},
                "page": {"type": "integer", "example": 1},
                "page_size": {"type": "integer", "example": 20},
                "total": {"type": "integer", "example": 42},
                "total_pages": {"type": "integer", "example": 3}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "News Aggregator API",
	Description:      "Keyword-normalized article cache in front of newsapi.org.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
