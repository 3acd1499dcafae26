// Package docs holds the Swagger document served at /api/swagger.
// Regenerate with: swag init -g cmd/server/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "support@hearth.dev"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/feed": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["feed"],
                "summary": "Personalized activity feed",
                "parameters": [
                    {"type": "integer", "description": "Max items", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.ActivityFeedItem"}}}
                }
            }
        },
        "/leaderboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "Top members by reputation",
                "parameters": [
                    {"type": "integer", "description": "Max entries", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/service.LeaderboardEntry"}}}
                }
            }
        },
        "/profiles/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "Profile with reputation, level and badges",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ProfileView"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/forum/topics": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["forum"],
                "summary": "List visible topics",
                "parameters": [
                    {"type": "string", "description": "Tag filter", "name": "tag", "in": "query"},
                    {"type": "string", "description": "Group filter", "name": "group_id", "in": "query"},
                    {"type": "integer", "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.ForumTopic"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["forum"],
                "summary": "Start a discussion",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.ForumTopic"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/forum/topics/{id}/vote": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["forum"],
                "summary": "Vote on a topic",
                "parameters": [
                    {"type": "string", "description": "Topic ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.VoteTally"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/forum/topics/{id}/summary": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["insights"],
                "summary": "Generate a summary of a discussion",
                "parameters": [
                    {"type": "string", "description": "Topic ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.TopicSummary"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/moderation/queue": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["moderation"],
                "summary": "Content awaiting review",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/groups/{id}/documents": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["groups"],
                "summary": "Create or edit a shared document",
                "parameters": [
                    {"type": "string", "description": "Group ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.SharedDocument"}},
                    "409": {"description": "Stale version", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/mentorships": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["mentorship"],
                "summary": "Ask a mentor for mentorship in a skill",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.MentorshipPairing"}},
                    "409": {"description": "An open pairing already exists", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/insights/health": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["insights"],
                "summary": "Community activity stats with an optional narrative",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.CommunityHealthReport"}}
                }
            }
        }
    },
    "definitions": {
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "models.VoteTally": {
            "type": "object",
            "properties": {
                "downvotes": {"type": "integer"},
                "upvotes": {"type": "integer"},
                "votes": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "models.TopicSummary": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "generated_at": {"type": "string"},
                "status": {"type": "string", "enum": ["idle", "ready", "error"]},
                "text": {"type": "string"}
            }
        },
        "models.ForumTopic": {
            "type": "object",
            "properties": {
                "author_id": {"type": "string"},
                "author_name": {"type": "string"},
                "content": {"type": "string"},
                "created_at": {"type": "string"},
                "downvotes": {"type": "integer"},
                "group_id": {"type": "string"},
                "id": {"type": "string"},
                "last_activity_at": {"type": "string"},
                "locked": {"type": "boolean"},
                "moderation_status": {"type": "string", "enum": ["pending_review", "safe", "inappropriate"]},
                "pinned": {"type": "boolean"},
                "summary": {"$ref": "#/definitions/models.TopicSummary"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "title": {"type": "string"},
                "upvotes": {"type": "integer"},
                "view_count": {"type": "integer"}
            }
        },
        "models.ProfileView": {
            "type": "object",
            "properties": {
                "badges": {"type": "array", "items": {"type": "object"}},
                "community_level_name": {"type": "string"},
                "display_name": {"type": "string"},
                "id": {"type": "string"},
                "mentorship_role": {"type": "string", "enum": ["none", "mentor", "mentee"]},
                "reputation_score": {"type": "integer"}
            }
        },
        "models.ActivityFeedItem": {
            "type": "object",
            "properties": {
                "content_type": {"type": "string"},
                "id": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "models.SharedDocument": {
            "type": "object",
            "properties": {
                "body": {"type": "string"},
                "id": {"type": "string"},
                "last_edited_at": {"type": "string"},
                "last_edited_by_id": {"type": "string"},
                "title": {"type": "string"},
                "version": {"type": "integer"}
            }
        },
        "models.MentorshipPairing": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "mentee_id": {"type": "string"},
                "mentor_id": {"type": "string"},
                "skill": {"type": "string"},
                "status": {"type": "string", "enum": ["requested", "active", "completed", "declined"]}
            }
        },
        "service.LeaderboardEntry": {
            "type": "object",
            "properties": {
                "badge_count": {"type": "integer"},
                "display_name": {"type": "string"},
                "level": {"type": "string"},
                "score": {"type": "integer"},
                "user_id": {"type": "string"}
            }
        },
        "service.CommunityHealthReport": {
            "type": "object",
            "properties": {
                "narrative": {"type": "string"},
                "narrative_status": {"type": "string"},
                "stats": {"type": "object"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8375",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Hearth API",
	Description:      "Community engagement engine: forum, groups, mentorship, events and insights",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
