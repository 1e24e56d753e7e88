// Package docs registers the OpenAPI document served under /swagger/.
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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/groups": {
            "post": {"summary": "Register a group", "tags": ["groups"], "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterGroupRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/GroupResponse"}}, "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/ErrorResponse"}}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/groups/{group_id}/leaderless": {
            "post": {"summary": "Convert a group to leaderless mode", "tags": ["groups"], "parameters": [{"in": "path", "name": "group_id", "type": "string", "required": true}, {"in": "body", "name": "body", "schema": {"$ref": "#/definitions/ConvertToLeaderlessRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/RoleOutcomeListResponse"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ErrorResponse"}}, "422": {"description": "Mode transition forbidden", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/groups/{group_id}/members": {
            "post": {"summary": "Add a member to the group directory", "tags": ["groups"], "parameters": [{"in": "path", "name": "group_id", "type": "string", "required": true}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/AddMemberRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/MemberResponse"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ErrorResponse"}}, "404": {"description": "Group not found", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/groups/{group_id}/members/{user_id}": {
            "delete": {"summary": "Remove a member from the group directory", "tags": ["groups"], "parameters": [{"in": "path", "name": "group_id", "type": "string", "required": true}, {"in": "path", "name": "user_id", "type": "string", "required": true}], "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/groups/{group_id}/roles": {
            "post": {"summary": "Define a role", "tags": ["roles"], "parameters": [{"in": "path", "name": "group_id", "type": "string", "required": true}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/DefineRoleRequest"}}], "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/RoleResponse"}}, "400": {"description": "Invalid role definition", "schema": {"$ref": "#/definitions/ErrorResponse"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/groups/{group_id}/recalculate": {
            "post": {"summary": "Re-evaluate every trust-activated role in a group", "tags": ["groups"], "parameters": [{"in": "path", "name": "group_id", "type": "string", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/RoleOutcomeListResponse"}}}}
        },
        "/groups/{group_id}/users/{user_id}/responsibilities": {
            "get": {"summary": "List a user's responsibilities", "tags": ["capabilities"], "parameters": [{"in": "path", "name": "group_id", "type": "string", "required": true}, {"in": "path", "name": "user_id", "type": "string", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponsibilitiesResponse"}}}}
        },
        "/groups/{group_id}/users/{user_id}/responsibilities/{responsibility}": {
            "get": {"summary": "Check one responsibility", "tags": ["capabilities"], "parameters": [{"in": "path", "name": "group_id", "type": "string", "required": true}, {"in": "path", "name": "user_id", "type": "string", "required": true}, {"in": "path", "name": "responsibility", "type": "string", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/HasResponsibilityResponse"}}}}
        },
        "/roles/{role_id}": {
            "patch": {"summary": "Change threshold and capacity", "tags": ["roles"], "parameters": [{"in": "path", "name": "role_id", "type": "string", "required": true}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/ConfigureRoleRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/RoleOutcomeResponse"}}, "503": {"description": "Role busy", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/roles/{role_id}/trust": {
            "get": {"summary": "Trust data for a role", "tags": ["trust"], "parameters": [{"in": "path", "name": "role_id", "type": "string", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/TrustDataResponse"}}, "404": {"description": "Role not found", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/roles/{role_id}/candidacy": {
            "post": {"summary": "Declare candidacy", "tags": ["trust"], "parameters": [{"in": "path", "name": "role_id", "type": "string", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/RoleOutcomeResponse"}}, "409": {"description": "Already holder or role full", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/roles/{role_id}/nominations": {
            "post": {"summary": "Nominate another member as candidate", "tags": ["trust"], "parameters": [{"in": "path", "name": "role_id", "type": "string", "required": true}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/UserRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/RoleOutcomeResponse"}}, "403": {"description": "Not a member", "schema": {"$ref": "#/definitions/ErrorResponse"}}, "409": {"description": "Already holder", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/roles/{role_id}/trust/{trustee_id}": {
            "put": {"summary": "Express trust", "tags": ["trust"], "parameters": [{"in": "path", "name": "role_id", "type": "string", "required": true}, {"in": "path", "name": "trustee_id", "type": "string", "required": true}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/ExpressTrustRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/RoleOutcomeResponse"}}, "400": {"description": "Invalid weight", "schema": {"$ref": "#/definitions/ErrorResponse"}}, "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ErrorResponse"}}, "503": {"description": "Role busy", "schema": {"$ref": "#/definitions/ErrorResponse"}}}},
            "delete": {"summary": "Retract trust", "tags": ["trust"], "parameters": [{"in": "path", "name": "role_id", "type": "string", "required": true}, {"in": "path", "name": "trustee_id", "type": "string", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/RoleOutcomeResponse"}}}}
        },
        "/roles/{role_id}/resign": {
            "post": {"summary": "Resign from a role", "tags": ["trust"], "parameters": [{"in": "path", "name": "role_id", "type": "string", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/RoleOutcomeResponse"}}}}
        },
        "/roles/{role_id}/bootstrap": {
            "post": {"summary": "Seed a bootstrap holder", "tags": ["roles"], "parameters": [{"in": "path", "name": "role_id", "type": "string", "required": true}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/UserRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/RoleOutcomeResponse"}}, "422": {"description": "Bootstrap unavailable", "schema": {"$ref": "#/definitions/ErrorResponse"}}}}
        },
        "/roles/{role_id}/holders": {
            "post": {"summary": "Assign a holder", "tags": ["roles"], "parameters": [{"in": "path", "name": "role_id", "type": "string", "required": true}, {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/UserRequest"}}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/RoleOutcomeResponse"}}}}
        },
        "/roles/{role_id}/holders/{user_id}": {
            "delete": {"summary": "Unassign a holder", "tags": ["roles"], "parameters": [{"in": "path", "name": "role_id", "type": "string", "required": true}, {"in": "path", "name": "user_id", "type": "string", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/RoleOutcomeResponse"}}}}
        },
        "/roles/{role_id}/recalculate": {
            "post": {"summary": "Re-evaluate one role", "tags": ["roles"], "parameters": [{"in": "path", "name": "role_id", "type": "string", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/RoleOutcomeResponse"}}}}
        }
    },
    "definitions": {
        "RegisterGroupRequest": {"type": "object", "properties": {"group_id": {"type": "string"}, "name": {"type": "string"}, "mode": {"type": "string", "enum": ["admin_managed", "leaderless"]}, "min_member_age_days": {"type": "integer"}, "trust_rate_limit_hours": {"type": "integer"}}},
        "GroupResponse": {"type": "object", "properties": {"group_id": {"type": "string"}, "name": {"type": "string"}, "mode": {"type": "string"}, "min_member_age_days": {"type": "integer"}, "trust_rate_limit_hours": {"type": "integer"}, "created_at": {"type": "string", "format": "date-time"}}},
        "ConvertToLeaderlessRequest": {"type": "object", "properties": {"threshold_required": {"type": "integer"}}},
        "DefineRoleRequest": {"type": "object", "properties": {"name": {"type": "string"}, "responsibilities": {"type": "array", "items": {"type": "string"}}, "assignment": {"type": "string", "enum": ["admin_assigned", "trust_activated"]}, "threshold_required": {"type": "integer"}, "capacity": {"type": "integer"}, "bootstrap": {"type": "boolean"}}},
        "RoleResponse": {"type": "object", "properties": {"role_id": {"type": "string"}, "group_id": {"type": "string"}, "name": {"type": "string"}, "responsibilities": {"type": "array", "items": {"type": "string"}}, "assignment": {"type": "string"}, "status": {"type": "string"}, "threshold_current": {"type": "integer"}, "threshold_required": {"type": "integer"}, "bootstrap": {"type": "boolean"}, "capacity": {"type": "integer"}}},
        "ConfigureRoleRequest": {"type": "object", "properties": {"threshold_required": {"type": "integer"}, "capacity": {"type": "integer"}}},
        "ExpressTrustRequest": {"type": "object", "required": ["weight"], "properties": {"weight": {"type": "integer", "minimum": 0, "maximum": 100}}},
        "UserRequest": {"type": "object", "properties": {"user_id": {"type": "string"}}},
        "AddMemberRequest": {"type": "object", "required": ["user_id"], "properties": {"user_id": {"type": "string"}, "is_admin": {"type": "boolean"}, "joined_at": {"type": "string", "format": "date-time"}}},
        "MemberResponse": {"type": "object", "properties": {"group_id": {"type": "string"}, "user_id": {"type": "string"}, "is_admin": {"type": "boolean"}, "joined_at": {"type": "string", "format": "date-time"}}},
        "RoleOutcomeResponse": {"type": "object", "properties": {"role_id": {"type": "string"}, "group_id": {"type": "string"}, "status": {"type": "string", "enum": ["vacant", "pending", "active"]}, "threshold_current": {"type": "integer"}, "threshold_required": {"type": "integer"}, "capacity": {"type": "integer"}, "holders": {"type": "array", "items": {"type": "string"}}, "role_full": {"type": "boolean"}}},
        "RoleOutcomeListResponse": {"type": "object", "properties": {"roles": {"type": "array", "items": {"$ref": "#/definitions/RoleOutcomeResponse"}}}},
        "ResponsibilitiesResponse": {"type": "object", "properties": {"user_id": {"type": "string"}, "group_id": {"type": "string"}, "responsibilities": {"type": "array", "items": {"type": "string"}}}},
        "HasResponsibilityResponse": {"type": "object", "properties": {"user_id": {"type": "string"}, "group_id": {"type": "string"}, "responsibility": {"type": "string"}, "allowed": {"type": "boolean"}}},
        "TrustDataResponse": {"type": "object", "properties": {"role": {"$ref": "#/definitions/RoleResponse"}, "holders": {"type": "array", "items": {"type": "object"}}, "candidates": {"type": "array", "items": {"type": "object"}}, "expressions": {"type": "array", "items": {"type": "object"}}, "my_trust_expressions": {"type": "array", "items": {"type": "object"}}}},
        "ErrorResponse": {"type": "object", "properties": {"code": {"type": "string"}, "message": {"type": "string"}, "retryable": {"type": "boolean"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/stewardship/v1",
	Schemes:          []string{},
	Title:            "Role Stewardship API",
	Description:      "Trust-weighted role activation for self-governing groups.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
