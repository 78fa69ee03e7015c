package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Hostel Management API",
        "description": "REST API for hostel room assignment and administration",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and password management"},
        {"name": "Users", "description": "Account administration"},
        {"name": "Floors", "description": "Floor management"},
        {"name": "Rooms", "description": "Room management and occupancy"},
        {"name": "Assignments", "description": "Student room assignment"},
        {"name": "RoomChanges", "description": "Room change request workflow"},
        {"name": "Notices", "description": "Role-targeted notices"},
        {"name": "Complaints", "description": "Mess complaints"},
        {"name": "Documents", "description": "Student document verification"},
        {"name": "Reports", "description": "Occupancy exports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "responses": {
                    "200": {"description": "Token issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/admin/room/assign": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Assign a student to a room",
                "responses": {
                    "201": {"description": "Assigned"},
                    "400": {"description": "Room full or student already assigned"},
                    "404": {"description": "Room not found"}
                }
            }
        },
        "/admin/room/assigned/{roomId}": {
            "get": {
                "tags": ["Rooms"],
                "summary": "Check whether a room has occupants",
                "responses": {
                    "200": {"description": "Occupancy flag"},
                    "404": {"description": "Room not found"}
                }
            }
        },
        "/student/room-change-request": {
            "post": {
                "tags": ["RoomChanges"],
                "summary": "Submit a room change request",
                "responses": {
                    "201": {"description": "Submitted"},
                    "400": {"description": "Duplicate pending request"},
                    "404": {"description": "No active assignment"}
                }
            }
        },
        "/admin/room-change-request/status": {
            "put": {
                "tags": ["RoomChanges"],
                "summary": "Approve or reject a room change request",
                "responses": {
                    "200": {"description": "Decided"},
                    "400": {"description": "Room full or invalid status"},
                    "404": {"description": "No pending request with this id"}
                }
            }
        }
    },
    "definitions": {
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
                "pagination": {"type": "object"},
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
