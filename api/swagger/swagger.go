package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ScrimPlan API",
        "description": "Training availability and schedule planning for esports teams",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Availability", "description": "Recurring weekly training windows"},
        {"name": "Absence", "description": "Concrete date-range blocks"},
        {"name": "Preference", "description": "Team training cadence"},
        {"name": "Schedule", "description": "Training slot computation and retrieval"},
        {"name": "Ops", "description": "Operational metrics"}
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
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/teams/{teamId}/availability": {
            "get": {
                "tags": ["Availability"],
                "summary": "List every member's availability windows",
                "parameters": [
                    {"name": "teamId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Availability"],
                "summary": "Add a recurring weekly availability window",
                "parameters": [
                    {"name": "teamId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAvailabilityRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teams/{teamId}/availability/me": {
            "get": {
                "tags": ["Availability"],
                "summary": "List the caller's own availability windows",
                "parameters": [
                    {"name": "teamId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/availability/{id}": {
            "delete": {
                "tags": ["Availability"],
                "summary": "Delete an availability window owned by the caller",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/teams/{teamId}/absences": {
            "get": {
                "tags": ["Absence"],
                "summary": "List every member's absences",
                "parameters": [
                    {"name": "teamId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Absence"],
                "summary": "Block the caller for a concrete date range",
                "parameters": [
                    {"name": "teamId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAbsenceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teams/{teamId}/absences/me": {
            "get": {
                "tags": ["Absence"],
                "summary": "List the caller's own absences",
                "parameters": [
                    {"name": "teamId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/absences/{id}": {
            "delete": {
                "tags": ["Absence"],
                "summary": "Delete an absence owned by the caller",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/teams/{teamId}/preferences": {
            "get": {
                "tags": ["Preference"],
                "summary": "Get the team's training cadence preference",
                "parameters": [
                    {"name": "teamId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Preference"],
                "summary": "Set the team's training cadence preference",
                "parameters": [
                    {"name": "teamId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertTeamPreferenceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teams/{teamId}/schedule": {
            "get": {
                "tags": ["Schedule"],
                "summary": "List the team's persisted training slots",
                "parameters": [
                    {"name": "teamId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teams/{teamId}/schedule/compute": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Recompute the team's training schedule",
                "parameters": [
                    {"name": "teamId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teams/{teamId}/schedule/next": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Return the next upcoming training slot",
                "parameters": [
                    {"name": "teamId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No upcoming slot"}
                }
            }
        },
        "/teams/{teamId}/schedule/export": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Download the team's schedule as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "teamId", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "Rendered file"}
                }
            }
        },
        "/ops/metrics": {
            "get": {
                "tags": ["Ops"],
                "summary": "Aggregated runtime metrics snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateAvailabilityRequest": {
            "type": "object",
            "required": ["weekday", "endTime"],
            "properties": {
                "weekday": {"type": "string", "enum": ["MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"]},
                "startTime": {"type": "integer", "minimum": 0, "maximum": 1439},
                "endTime": {"type": "integer", "minimum": 1, "maximum": 1440},
                "priority": {"type": "integer", "minimum": 1, "maximum": 10}
            }
        },
        "CreateAbsenceRequest": {
            "type": "object",
            "required": ["start", "end"],
            "properties": {
                "start": {"type": "string", "format": "date-time"},
                "end": {"type": "string", "format": "date-time"},
                "reason": {"type": "string"}
            }
        },
        "UpsertTeamPreferenceRequest": {
            "type": "object",
            "required": ["daysPerWeek", "hoursPerWeek", "minSlotMinutes", "maxSlotMinutes"],
            "properties": {
                "daysPerWeek": {"type": "integer", "minimum": 1, "maximum": 7},
                "hoursPerWeek": {"type": "integer", "minimum": 1},
                "minSlotMinutes": {"type": "integer", "minimum": 30},
                "maxSlotMinutes": {"type": "integer"}
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
