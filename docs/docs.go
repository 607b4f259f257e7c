// Package docs registers the Swagger document for the sonar REST API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "description": "REST API for the sonar TCP connect scanner.",
    "title": "sonar API",
    "version": "1.0"
  },
  "host": "localhost:8080",
  "basePath": "/api/v1",
  "schemes": ["http"],
  "securityDefinitions": {
    "ApiKeyAuth": {
      "type": "apiKey",
      "name": "Authorization",
      "in": "header"
    }
  },
  "paths": {
    "/scans": {
      "post": {
        "consumes": ["application/json"],
        "produces": ["application/json"],
        "summary": "Create a new scan task",
        "description": "Submit a host and an inclusive port range (startPort-endPort). The scan executes asynchronously; poll GET /scans/{id} for progress and results.",
        "operationId": "createScan",
        "tags": ["Scans"],
        "security": [{"ApiKeyAuth": []}],
        "parameters": [
          {
            "description": "Scan request parameters",
            "name": "scanRequest",
            "in": "body",
            "required": true,
            "schema": {"$ref": "#/definitions/CreateScanRequest"}
          }
        ],
        "responses": {
          "202": {"description": "Scan task accepted", "schema": {"$ref": "#/definitions/ScanAcceptedResponse"}},
          "400": {"description": "Malformed body or invalid port range", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "429": {"description": "Rate limit exceeded", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
        }
      }
    },
    "/scans/{id}": {
      "get": {
        "produces": ["application/json"],
        "summary": "Get scan status and results",
        "description": "Retrieve a task snapshot. done/total reflect probe completion while the task runs; results and report are attached once completed.",
        "operationId": "getScan",
        "tags": ["Scans"],
        "security": [{"ApiKeyAuth": []}],
        "parameters": [
          {"type": "string", "description": "Scan Task ID (UUID v4)", "name": "id", "in": "path", "required": true}
        ],
        "responses": {
          "200": {"description": "Current task snapshot", "schema": {"$ref": "#/definitions/ScanTask"}},
          "400": {"description": "Malformed task identifier", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "404": {"description": "Task not found", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "429": {"description": "Rate limit exceeded", "schema": {"$ref": "#/definitions/ErrorResponse"}},
          "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/ErrorResponse"}}
        }
      }
    }
  },
  "definitions": {
    "CreateScanRequest": {
      "type": "object",
      "required": ["host", "ports"],
      "properties": {
        "host": {"type": "string", "example": "scanme.nmap.org"},
        "ports": {"type": "string", "example": "0-1023"}
      },
      "additionalProperties": false
    },
    "ScanAcceptedResponse": {
      "type": "object",
      "properties": {
        "id": {"type": "string", "example": "a3f5c62e-1234-4f72-a84a-1c2d3e4f5678"},
        "status": {"type": "string", "example": "pending"}
      },
      "additionalProperties": false
    },
    "ErrorResponse": {
      "type": "object",
      "properties": {
        "error": {"type": "string", "example": "task not found"}
      },
      "additionalProperties": false
    },
    "ReportEntry": {
      "type": "object",
      "properties": {
        "port": {"type": "integer", "example": 22},
        "service": {"type": "string", "example": "ssh"}
      },
      "additionalProperties": false
    },
    "ScanTask": {
      "type": "object",
      "properties": {
        "id": {"type": "string", "example": "a3f5c62e-1234-4f72-a84a-1c2d3e4f5678"},
        "status": {"type": "string", "example": "running"},
        "host": {"type": "string", "example": "scanme.nmap.org"},
        "ports": {"type": "string", "example": "0-1023"},
        "done": {"type": "integer", "example": 512},
        "total": {"type": "integer", "example": 1024},
        "results": {
          "type": "array",
          "items": {"$ref": "#/definitions/ReportEntry"}
        },
        "report": {"type": "string", "example": "Port 22: Open - Service: ssh"},
        "created_at": {"type": "string", "example": "2024-01-02T15:04:05Z"},
        "completed_at": {"type": "string", "example": "2024-01-02T15:06:30Z"},
        "error": {"type": "string", "example": "invalid host address"}
      },
      "additionalProperties": false
    }
  }
}
`

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}

type swaggerDoc struct{}

func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}
