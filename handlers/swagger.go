package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the portal backend.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.JSON(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>clinic-portal — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the portal surface.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "clinic-portal-backend", "version": "v0.1.0" },
  "paths": {
    "/auth/login": {
      "post": {
        "summary": "Exchange authorization code / login",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"mode":{"type":"string"},"username":{"type":"string"},"password":{"type":"string"},"code":{"type":"string"},"redirect_uri":{"type":"string"}}}}}},
        "responses": { "200": { "description": "tokens returned" } }
      }
    },
    "/auth/refresh": {
      "post": { "summary": "Refresh access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refresh_token":{"type":"string"}}}}}}, "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh" } } }
    },
    "/auth/logout": {
      "post": { "summary": "Logout and invalidate refresh token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refresh_token":{"type":"string"}}}}}}, "responses": { "200": { "description": "logged out" } } }
    },
    "/api/v1/me": {
      "get": { "summary": "Get user info and resolved role", "responses": { "200": { "description": "user or claims" } } }
    },
    "/api/v1/clinic-updates": {
      "get": { "summary": "List clinic updates (signed-in)", "responses": { "200": { "description": "records" } } },
      "post": { "summary": "Create clinic update (officer/master)", "responses": { "201": { "description": "created" }, "403": { "description": "access denied" } } }
    },
    "/api/v1/clinic-updates/grouped": {
      "get": { "summary": "Clinic updates grouped per category and date", "responses": { "200": { "description": "category -> date groups" } } }
    },
    "/api/v1/patients-tabs": {
      "get": { "summary": "List patient tabs (public)", "responses": { "200": { "description": "records in manual order" } } }
    },
    "/api/v1/patients-tabs/reorder": {
      "post": { "summary": "Move a tab up or down (officer/master)", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"index":{"type":"integer"},"direction":{"type":"string"}}}}}}, "responses": { "200": { "description": "reordered" } } }
    },
    "/api/v1/counselling-tabs": {
      "get": { "summary": "List counselling tabs (public)", "responses": { "200": { "description": "records in manual order" } } }
    },
    "/api/v1/officer-resources": {
      "get": { "summary": "List officer resources (officer/master)", "responses": { "200": { "description": "records" }, "403": { "description": "access denied" } } }
    },
    "/api/v1/support-resources": {
      "get": { "summary": "List support resources (public)", "responses": { "200": { "description": "records" } } }
    },
    "/api/v1/team": {
      "get": { "summary": "List team members (public)", "responses": { "200": { "description": "members in rank order" } } }
    },
    "/api/v1/audit/{study}/records": {
      "get": { "summary": "List audit study rows (officer/master)", "responses": { "200": { "description": "schema and rows" } } },
      "post": { "summary": "Add an audit study row (officer/master)", "responses": { "201": { "description": "created" } } }
    },
    "/api/v1/audit/{study}/export": {
      "get": { "summary": "Export an audit study as CSV (officer/master)", "responses": { "200": { "description": "text/csv attachment" } } }
    },
    "/api/v1/uploads": {
      "post": { "summary": "Upload an image (officer/master)", "responses": { "201": { "description": "url and path" }, "503": { "description": "storage unavailable" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
