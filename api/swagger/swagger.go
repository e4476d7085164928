package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Portal API",
        "description": "Grades, attendance, schedules and invite codes for parents, students and staff",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Children", "description": "Parent's linked students"},
        {"name": "Students", "description": "Student-scoped read models"},
        {"name": "Attendance", "description": "Attendance records and excuses"},
        {"name": "Invite Codes", "description": "Invite code lifecycle"}
    ],
    "paths": {
        "/children": {
            "get": {
                "tags": ["Children"],
                "summary": "List the caller's children",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/children/refresh": {
            "post": {
                "tags": ["Children"],
                "summary": "Reload the caller's children",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{studentId}/grades": {
            "get": {
                "tags": ["Students"],
                "summary": "Grades grouped by subject with weighted averages",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not found or access denied", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{studentId}/attendance": {
            "get": {
                "tags": ["Students"],
                "summary": "Attendance calendar for a month",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "month", "in": "query", "required": true, "type": "string", "description": "YYYY-MM"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid month", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{studentId}/attendance/range": {
            "get": {
                "tags": ["Students"],
                "summary": "Attendance records and stats for a date range",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "from", "in": "query", "required": true, "type": "string", "description": "YYYY-MM-DD"},
                    {"name": "to", "in": "query", "required": true, "type": "string", "description": "YYYY-MM-DD"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{studentId}/attendance/export": {
            "get": {
                "tags": ["Students"],
                "summary": "Download a month of attendance as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "month", "in": "query", "required": true, "type": "string", "description": "YYYY-MM"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "Report file", "schema": {"type": "file"}}
                }
            }
        },
        "/students/{studentId}/schedule": {
            "get": {
                "tags": ["Students"],
                "summary": "Weekly timetable",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "week", "in": "query", "type": "string", "description": "Any date in the week, YYYY-MM-DD"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{studentId}/assignments": {
            "get": {
                "tags": ["Students"],
                "summary": "Assignments with submission status",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Record attendance for a lesson",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordAttendanceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/{id}/excuse": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Submit an excuse for a child's absence",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitExcuseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not found or access denied", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/{id}/excuse/review": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Approve or reject a pending excuse",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewExcuseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No pending excuse", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/invite-codes": {
            "get": {
                "tags": ["Invite Codes"],
                "summary": "List the school's invite codes",
                "parameters": [
                    {"name": "active", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Invite Codes"],
                "summary": "Issue an invite code",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/IssueInviteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/invite-codes/{code}": {
            "get": {
                "tags": ["Invite Codes"],
                "summary": "Check an invite code",
                "parameters": [
                    {"name": "code", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Invite Codes"],
                "summary": "Deactivate an invite code",
                "parameters": [
                    {"name": "code", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/invite-codes/{code}/redeem": {
            "post": {
                "tags": ["Invite Codes"],
                "summary": "Redeem an invite code for the caller",
                "parameters": [
                    {"name": "code", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Code exhausted, expired or inactive", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "RecordAttendanceRequest": {
            "type": "object",
            "required": ["student_id", "lesson_id", "date", "status"],
            "properties": {
                "student_id": {"type": "string"},
                "lesson_id": {"type": "string"},
                "date": {"type": "string", "example": "2024-03-04"},
                "status": {"type": "string", "enum": ["present", "absent", "late", "left_early", "excused"]},
                "note": {"type": "string"}
            }
        },
        "SubmitExcuseRequest": {
            "type": "object",
            "required": ["note"],
            "properties": {
                "note": {"type": "string"},
                "attachment_url": {"type": "string"}
            }
        },
        "ReviewExcuseRequest": {
            "type": "object",
            "required": ["approve"],
            "properties": {
                "approve": {"type": "boolean"}
            }
        },
        "IssueInviteRequest": {
            "type": "object",
            "required": ["role", "usage_limit"],
            "properties": {
                "role": {"type": "string", "enum": ["superadmin", "bigadmin", "admin", "teacher", "student", "parent"]},
                "usage_limit": {"type": "integer", "minimum": 1},
                "expires_at": {"type": "string", "format": "date-time"},
                "expiry_days": {"type": "integer", "minimum": 1},
                "class_id": {"type": "string"}
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
