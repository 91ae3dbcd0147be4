package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "EduHub Reporting API",
        "description": "Dashboard reporting aggregation service",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Dashboard", "description": "Aggregated dashboard reports"}
    ],
    "paths": {
        "/dashboard/admin": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Admin dashboard report",
                "parameters": [
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "windowDays", "in": "query", "type": "integer"},
                    {"name": "topLimit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Reporting source unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/admin/export": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Export the admin dashboard report",
                "parameters": [
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "year", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/student": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Student dashboard report",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Identity unresolved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "AdminDashboard": {
            "type": "object",
            "properties": {
                "generatedAt": {"type": "string"},
                "totals": {"type": "object"},
                "changes": {"type": "object"},
                "weekSignups": {"type": "object"},
                "revenue": {"type": "object"},
                "topCourses": {"type": "array", "items": {"type": "object"}},
                "recentActivities": {"type": "array", "items": {"type": "object"}},
                "attendanceRate": {"type": "string"},
                "pendingPayments": {"type": "string"}
            }
        },
        "StudentDashboard": {
            "type": "object",
            "properties": {
                "generatedAt": {"type": "string"},
                "studentId": {"type": "string"},
                "studentName": {"type": "string"},
                "activeCourses": {"type": "integer"},
                "completedCourses": {"type": "integer"},
                "pendingCount": {"type": "integer"},
                "attendanceRate": {"type": "string"},
                "averageGrade": {"type": "string"},
                "enrollments": {"type": "array", "items": {"type": "object"}},
                "pendingAssignments": {"type": "array", "items": {"type": "object"}}
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
