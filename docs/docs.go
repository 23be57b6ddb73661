// Package docs registers the OpenAPI document served under /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o docs
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
        "/healthz": {"get": {"tags": ["Health"], "summary": "Liveness probe", "responses": {"200": {"description": "Application is alive"}}}},
        "/readyz": {"get": {"tags": ["Health"], "summary": "Readiness probe", "responses": {"200": {"description": "Application is ready"}, "503": {"description": "Service unavailable"}}}},
        "/api/v1/plans": {"get": {"tags": ["Plans"], "summary": "List plans", "responses": {"200": {"description": "Active plans"}}}},
        "/api/v1/quota": {"get": {"security": [{"BearerAuth": []}], "tags": ["Quota"], "summary": "Current period usage", "responses": {"200": {"description": "Usage"}}}},
        "/api/v1/quota/reserve": {"post": {"security": [{"BearerAuth": []}], "tags": ["Quota"], "summary": "Reserve credits for an action", "responses": {"200": {"description": "Reserved"}, "429": {"description": "Quota exceeded"}}}},
        "/api/v1/mealplans": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["MealPlans"], "summary": "List meal plans", "responses": {"200": {"description": "Meal plans"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["MealPlans"], "summary": "Generate meal plan", "responses": {"201": {"description": "Generated meal plan"}, "429": {"description": "Quota exceeded"}, "502": {"description": "Generator failed"}}}
        },
        "/api/v1/mealplans/{id}": {"get": {"security": [{"BearerAuth": []}], "tags": ["MealPlans"], "summary": "Get meal plan", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "Meal plan"}, "404": {"description": "Not found or expired"}}}},
        "/api/v1/payments/verify": {"post": {"security": [{"BearerAuth": []}], "tags": ["Payments"], "summary": "Verify a checkout result", "responses": {"200": {"description": "Reconciled"}, "400": {"description": "Signature invalid"}, "402": {"description": "Not captured or amount mismatch"}, "503": {"description": "Store unavailable"}}}},
        "/api/v1/payments/callback": {"get": {"security": [{"BearerAuth": []}], "tags": ["Payments"], "summary": "Gateway redirect callback", "responses": {"200": {"description": "Reconciled"}, "303": {"description": "Redirect to frontend with state"}}}},
        "/api/v1/subscription/cancel": {"post": {"security": [{"BearerAuth": []}], "tags": ["Payments"], "summary": "Cancel subscription", "responses": {"200": {"description": "Subscription"}, "409": {"description": "Not active"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Meal Planner API",
	Description:      "Credit-metered meal plan generation with paid subscriptions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
