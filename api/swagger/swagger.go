package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Exam Complaints API",
        "description": "Complaint lifecycle and access-scoping service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Complaints", "description": "Complaint lifecycle and review"},
        {"name": "Notifications", "description": "Recipient-owned notification inbox"}
    ],
    "paths": {
        "/complaints": {
            "get": {
                "tags": ["Complaints"],
                "summary": "List complaints visible to the caller",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Not authenticated"}
                }
            }
        },
        "/complaints/export": {
            "get": {
                "tags": ["Complaints"],
                "summary": "Export visible complaints as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File attachment"},
                    "403": {"description": "Admins only"}
                }
            }
        },
        "/complaints/{id}": {
            "get": {
                "tags": ["Complaints"],
                "summary": "Get complaint detail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found or out of scope"}
                }
            }
        },
        "/complaints/{id}/status": {
            "patch": {
                "tags": ["Complaints"],
                "summary": "Transition complaint status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TransitionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid status"},
                    "403": {"description": "Admins only"},
                    "404": {"description": "Not found or out of scope"}
                }
            }
        },
        "/complaints/{id}/history": {
            "get": {
                "tags": ["Complaints"],
                "summary": "List status history for a complaint",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found or out of scope"}
                }
            }
        },
        "/complaints/{id}/responses": {
            "get": {
                "tags": ["Complaints"],
                "summary": "List responses for a complaint",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found or out of scope"}
                }
            },
            "post": {
                "tags": ["Complaints"],
                "summary": "Add a response to a complaint",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddResponseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Admins only"},
                    "404": {"description": "Not found or out of scope"}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List own notifications",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/notifications/read-all": {
            "patch": {
                "tags": ["Notifications"],
                "summary": "Mark all notifications read",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/notifications/{id}/read": {
            "patch": {
                "tags": ["Notifications"],
                "summary": "Mark a notification read",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not found or not owned by caller"}
                }
            }
        },
        "/notifications/{id}": {
            "delete": {
                "tags": ["Notifications"],
                "summary": "Delete a notification",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not found or not owned by caller"}
                }
            }
        }
    },
    "definitions": {
        "Complaint": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "reference_number": {"type": "string"},
                "student_id": {"type": "string"},
                "student_name": {"type": "string"},
                "exam_name": {"type": "string"},
                "course": {"type": "string"},
                "department": {"type": "string"},
                "faculty": {"type": "string"},
                "level": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "under-review", "resolved", "rejected"]},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "StatusHistoryEntry": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "complaint_id": {"type": "string"},
                "old_status": {"type": "string"},
                "new_status": {"type": "string"},
                "changed_by": {"type": "string"},
                "changed_by_name": {"type": "string"},
                "notes": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "Response": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "complaint_id": {"type": "string"},
                "text": {"type": "string"},
                "author_id": {"type": "string"},
                "author_name": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "Notification": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "type": {"type": "string", "enum": ["info", "success", "error"]},
                "title": {"type": "string"},
                "message": {"type": "string"},
                "read": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        },
        "TransitionRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["pending", "under-review", "resolved", "rejected"]},
                "notes": {"type": "string"}
            },
            "required": ["status"]
        },
        "AddResponseRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string"}
            },
            "required": ["text"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
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
