// Package docs is generated by swaggo/swag from the handler annotations.
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
		"/me": {
			"get": {
				"tags": [
					"profile"
				],
				"summary": "Get my profile",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"401": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/sets": {
			"post": {
				"tags": [
					"sets"
				],
				"summary": "Create a flashcard set from a document",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK"
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					},
					"503": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"parameters": [
					{
						"type": "file",
						"description": "PDF, PNG, JPEG, WebP or plain text document",
						"name": "file",
						"in": "formData",
						"required": true
					},
					{
						"type": "string",
						"description": "Set title",
						"name": "title",
						"in": "formData",
						"required": false
					}
				],
				"consumes": [
					"multipart/form-data"
				]
			},
			"get": {
				"tags": [
					"sets"
				],
				"summary": "List my flashcard sets",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/sets/{setID}": {
			"get": {
				"tags": [
					"sets"
				],
				"summary": "Get a flashcard set with its cards",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Set ID",
						"name": "setID",
						"in": "path",
						"required": true
					}
				]
			},
			"patch": {
				"tags": [
					"sets"
				],
				"summary": "Rename a flashcard set",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Set ID",
						"name": "setID",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.RenameSetRequest"
						}
					}
				]
			},
			"delete": {
				"tags": [
					"sets"
				],
				"summary": "Delete a flashcard set",
				"produces": [
					"application/json"
				],
				"responses": {
					"204": {
						"description": "OK"
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Set ID",
						"name": "setID",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/sets/{setID}/quiz": {
			"post": {
				"tags": [
					"quiz"
				],
				"summary": "Start a quiz",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK"
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					},
					"422": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Set ID",
						"name": "setID",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/sets/{setID}/attempts": {
			"get": {
				"tags": [
					"quiz"
				],
				"summary": "List my quiz attempts for a set",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Set ID",
						"name": "setID",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Page size (max 100)",
						"name": "limit",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Offset",
						"name": "offset",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "1-based page, overrides offset",
						"name": "page",
						"in": "query"
					}
				]
			}
		},
		"/quiz/{sessionID}/answers": {
			"post": {
				"tags": [
					"quiz"
				],
				"summary": "Answer a quiz question",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					},
					"409": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Quiz session ID",
						"name": "sessionID",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/dto.SubmitAnswerRequest"
						}
					}
				]
			}
		},
		"/quiz/{sessionID}/restart": {
			"post": {
				"tags": [
					"quiz"
				],
				"summary": "Restart a quiz",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK"
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Quiz session ID",
						"name": "sessionID",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/quiz/{sessionID}/finish": {
			"post": {
				"tags": [
					"quiz"
				],
				"summary": "Finish a quiz",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Quiz session ID",
						"name": "sessionID",
						"in": "path",
						"required": true
					}
				]
			}
		},
		"/subscription/proof": {
			"post": {
				"tags": [
					"subscription"
				],
				"summary": "Submit a payment screenshot",
				"produces": [
					"application/json"
				],
				"responses": {
					"201": {
						"description": "OK"
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					},
					"409": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"parameters": [
					{
						"type": "file",
						"description": "PNG, JPEG or WebP screenshot",
						"name": "screenshot",
						"in": "formData",
						"required": true
					}
				],
				"consumes": [
					"multipart/form-data"
				]
			}
		},
		"/subscription": {
			"get": {
				"tags": [
					"subscription"
				],
				"summary": "Get my subscription status",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				]
			}
		},
		"/admin/subscriptions": {
			"get": {
				"tags": [
					"admin"
				],
				"summary": "List subscription requests",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "pending, approved or rejected",
						"name": "status",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page size (max 100)",
						"name": "limit",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Offset",
						"name": "offset",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "1-based page, overrides offset",
						"name": "page",
						"in": "query"
					}
				]
			}
		},
		"/admin/subscriptions/{requestID}/approve": {
			"post": {
				"tags": [
					"admin"
				],
				"summary": "Approve a subscription request",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					},
					"409": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Request ID",
						"name": "requestID",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": false,
						"schema": {
							"$ref": "#/definitions/dto.ReviewSubscriptionRequest"
						}
					}
				]
			}
		},
		"/admin/subscriptions/{requestID}/reject": {
			"post": {
				"tags": [
					"admin"
				],
				"summary": "Reject a subscription request",
				"produces": [
					"application/json"
				],
				"responses": {
					"200": {
						"description": "OK"
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					},
					"409": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/middleware.ErrorResponse"
						}
					}
				},
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "Request ID",
						"name": "requestID",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": false,
						"schema": {
							"$ref": "#/definitions/dto.ReviewSubscriptionRequest"
						}
					}
				]
			}
		}
	},
	"definitions": {
		"middleware.ErrorResponse": {
			"type": "object",
			"properties": {
				"code": {
					"type": "string"
				},
				"message": {
					"type": "string"
				},
				"status": {
					"type": "integer"
				},
				"details": {
					"type": "object",
					"additionalProperties": true
				}
			}
		},
		"dto.RenameSetRequest": {
			"type": "object",
			"properties": {
				"title": {
					"type": "string"
				}
			}
		},
		"dto.SubmitAnswerRequest": {
			"type": "object",
			"properties": {
				"question_index": {
					"type": "integer"
				},
				"selected_index": {
					"type": "integer"
				}
			}
		},
		"dto.ReviewSubscriptionRequest": {
			"type": "object",
			"properties": {
				"note": {
					"type": "string"
				}
			}
		}
	},
	"securityDefinitions": {
		"ApiKeyAuth": {
			"description": "Type 'Bearer YOUR_ACCESS_TOKEN' to authorize.",
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8090",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Study Deck API",
	Description:      "Turns study documents into flashcard sets and multiple-choice quizzes.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
