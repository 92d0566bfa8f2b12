package docs

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

const openapiJSON = `{
  "openapi": "3.0.3",
  "info": {
    "title": "Edu Market API",
    "version": "0.1.0"
  },
  "servers": [ { "url": "/" } ],
  "tags": [
    {"name": "auth", "description": "Accounts and sessions"},
    {"name": "resources", "description": "Browse, upload and download"},
    {"name": "dashboard", "description": "Signed-in user"},
    {"name": "admin", "description": "Moderation"}
  ],
  "components": {
    "securitySchemes": {
      "bearerAuth": {
        "type": "http",
        "scheme": "bearer",
        "bearerFormat": "JWT"
      }
    }
  },
  "paths": {
    "/api/register": {
      "post": {"summary": "Register a user","tags": ["auth"],"requestBody": {"required": true},"responses": {"201": {"description": "Created"},"409": {"description": "Email taken"}}}
    },
    "/api/login": {
      "post": {"summary": "Login","tags": ["auth"],"responses": {"200": {"description": "OK"},"401": {"description": "Invalid credentials"}}}
    },
    "/api/admin/login": {
      "post": {"summary": "Admin login","tags": ["auth"],"responses": {"200": {"description": "OK"}}}
    },
    "/api/logout": {
      "post": {"summary": "Logout","tags": ["auth"],"security": [{"bearerAuth": []}],"responses": {"200": {"description": "OK"}}}
    },
    "/api/me": {
      "get": {"summary": "Current session","tags": ["auth"],"security": [{"bearerAuth": []}],"responses": {"200": {"description": "OK"}}}
    },
    "/api/me/password": {
      "put": {"summary": "Change password","tags": ["auth"],"security": [{"bearerAuth": []}],"responses": {"200": {"description": "OK"}}}
    },
    "/api/landing": {
      "get": {"summary": "Landing page data","tags": ["resources"],"responses": {"200": {"description": "OK"}}}
    },
    "/api/categories": {
      "get": {"summary": "Resource categories","tags": ["resources"],"responses": {"200": {"description": "OK"}}}
    },
    "/api/resources": {
      "get": {"summary": "Browse resources","tags": ["resources"],"parameters": [{"name":"q","in":"query","schema":{"type":"string"}},{"name":"category","in":"query","schema":{"type":"string"}}],"responses": {"200": {"description": "OK"}}},
      "post": {"summary": "Upload a resource (multipart)","tags": ["resources"],"security": [{"bearerAuth": []}],"responses": {"201": {"description": "Created"},"400": {"description": "Validation failed"}}}
    },
    "/api/resources/{id}": {
      "get": {"summary": "View a resource","tags": ["resources"],"parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string","format":"uuid"}}],"responses": {"200": {"description": "OK"}}}
    },
    "/api/resources/{id}/download": {
      "post": {"summary": "Download a resource","tags": ["resources"],"security": [{"bearerAuth": []}],"parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string","format":"uuid"}}],"responses": {"200": {"description": "OK"},"401": {"description": "Login required"}}}
    },
    "/api/dashboard": {
      "get": {"summary": "User dashboard","tags": ["dashboard"],"security": [{"bearerAuth": []}],"responses": {"200": {"description": "OK"}}}
    },
    "/api/dashboard/resources/{id}": {
      "delete": {"summary": "Delete own resource","tags": ["dashboard"],"security": [{"bearerAuth": []}],"parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string","format":"uuid"}}],"responses": {"200": {"description": "OK"},"403": {"description": "Not the owner"}}}
    },
    "/api/admin/overview": {
      "get": {"summary": "Admin overview","tags": ["admin"],"security": [{"bearerAuth": []}],"responses": {"200": {"description": "OK"}}}
    },
    "/api/admin/resources/{id}/status": {
      "patch": {"summary": "Moderate a resource","tags": ["admin"],"security": [{"bearerAuth": []}],"parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string","format":"uuid"}}],"responses": {"200": {"description": "OK"}}}
    },
    "/api/admin/users/{id}/status": {
      "patch": {"summary": "Suspend or activate a user","tags": ["admin"],"security": [{"bearerAuth": []}],"parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string","format":"uuid"}}],"responses": {"200": {"description": "OK"}}}
    },
    "/api/admin/resources/{id}": {
      "delete": {"summary": "Delete any resource","tags": ["admin"],"security": [{"bearerAuth": []}],"parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string","format":"uuid"}}],"responses": {"200": {"description": "OK"}}}
    }
  }
}`

const specPath = "/openapi.json"

// RegisterRoutes serves the API description at /openapi.json and a
// Swagger UI page at /docs. The bare root redirects to /docs.
func RegisterRoutes(r *gin.Engine) {
	spec := []byte(openapiJSON)
	page := []byte(fmt.Sprintf(swaggerPage, specPath))

	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/docs") })
	r.GET(specPath, func(c *gin.Context) {
		c.Data(http.StatusOK, gin.MIMEJSON+"; charset=utf-8", spec)
	})
	r.GET("/docs", func(c *gin.Context) {
		c.Data(http.StatusOK, gin.MIMEHTML+"; charset=utf-8", page)
	})
}

// swaggerPage loads swagger-ui from unpkg; %s is the OpenAPI document URL.
// persistAuthorization keeps the bearer token across reloads.
const swaggerPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Edu Market API</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body style="margin:0">
<div id="docs"></div>
<script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
<script>
SwaggerUIBundle({ url: "%s", dom_id: "#docs", persistAuthorization: true });
</script>
</body>
</html>
`
