package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RigelNana/edumarket/gateway/handler"
	"github.com/RigelNana/edumarket/pkg/database/dbtest"
	"github.com/RigelNana/edumarket/pkg/logging"
	"github.com/RigelNana/edumarket/pkg/session"
	authmodels "github.com/RigelNana/edumarket/services/auth-service/models"
	authrepo "github.com/RigelNana/edumarket/services/auth-service/repository"
	authservice "github.com/RigelNana/edumarket/services/auth-service/service"
	"github.com/RigelNana/edumarket/services/auth-service/utils"
	"github.com/RigelNana/edumarket/services/resource-service/events"
	resourcemodels "github.com/RigelNana/edumarket/services/resource-service/models"
	resourcerepo "github.com/RigelNana/edumarket/services/resource-service/repository"
	resourceservice "github.com/RigelNana/edumarket/services/resource-service/service"
	usermodels "github.com/RigelNana/edumarket/services/user-service/models"
	userrepo "github.com/RigelNana/edumarket/services/user-service/repository"
	userservice "github.com/RigelNana/edumarket/services/user-service/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "admin@edumarket.dev"
	adminPassword = "admin123"
)

type testApp struct {
	engine    *gin.Engine
	resources resourcerepo.ResourceRepository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logging.New("error", io.Discard)
	db := dbtest.New(t,
		&resourcemodels.Resource{},
		&resourcemodels.Activity{},
		&usermodels.User{},
		&authmodels.Auth{},
	)

	resources := resourcerepo.NewResourceRepository(db)
	activities := resourcerepo.NewActivityRepository(db)
	recorder := resourceservice.NewActivityRecorder(activities)
	resourceSvc := resourceservice.NewResourceService(resources, activities, nil, nil,
		events.NewDirectPublisher(recorder.Handle), resourceservice.Options{}, log)

	users := userservice.NewUserService(userrepo.NewUserRepository(db))
	auth := authservice.NewAuthService(
		authrepo.NewAuthRepository(db),
		users,
		utils.NewTokenManager("test-secret", "edumarket-test", time.Hour),
		session.NewMemoryStore(),
		authservice.Options{BcryptCost: bcrypt.MinCost},
		log,
	)
	require.NoError(t, auth.EnsureAdmin(context.Background(), adminEmail, adminPassword))

	engine := Setup(Handlers{
		Auth:      handler.NewAuthHandler(auth, log),
		Resources: handler.NewResourceHandler(resourceSvc, log),
		Dashboard: handler.NewDashboardHandler(resourceSvc, log),
		Admin:     handler.NewAdminHandler(resourceSvc, users, log),
		Landing:   handler.NewLandingHandler(resourceSvc, log),
	}, auth, log)

	return &testApp{engine: engine, resources: resources}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.serve(t, req, token)
}

func (a *testApp) serve(t *testing.T, req *http.Request, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func (a *testApp) register(t *testing.T, name, email, password string) string {
	t.Helper()
	w, _ := a.do(t, http.MethodPost, "/api/register", "", map[string]string{"name": name, "email": email, "password": password})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return a.login(t, "/api/login", email, password)
}

func (a *testApp) login(t *testing.T, path, email, password string) string {
	t.Helper()
	w, body := a.do(t, http.MethodPost, path, "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return body["token"].(string)
}

func (a *testApp) upload(t *testing.T, token, title, fileName string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", title))
	require.NoError(t, mw.WriteField("description", "Lecture notes"))
	require.NoError(t, mw.WriteField("category", "notes"))
	require.NoError(t, mw.WriteField("subject", "Physics"))
	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write(bytes.Repeat([]byte("x"), 1536))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/resources", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w, _ := a.serve(t, req, token)
	return w
}

func resourceID(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Resource struct {
			ID string `json:"id"`
		} `json:"resource"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Resource.ID
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)

	token := app.register(t, "Sarah", "sarah@example.com", "secret1")

	w, body := app.do(t, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	sess := body["session"].(map[string]any)
	assert.Equal(t, "user", sess["kind"])
	assert.Equal(t, "Sarah", sess["display_name"])

	w, body = app.do(t, http.MethodPost, "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/", body["redirect"])

	w, body = app.do(t, http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/login", body["redirect"])

	w, _ = app.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "sarah@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = app.do(t, http.MethodPost, "/api/register", "", map[string]string{"name": "Again", "email": "sarah@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBrowseAndDownload(t *testing.T) {
	app := newTestApp(t)
	token := app.register(t, "Sarah", "sarah@example.com", "secret1")

	w := app.upload(t, token, "Quantum Physics Notes", "quantum.pdf")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := resourceID(t, w)

	w, body := app.do(t, http.MethodGet, "/api/resources?q=physics&category=notes", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["total"])
	assert.EqualValues(t, 1, body["shown"])
	assert.Len(t, body["categories"], 5)

	w, body = app.do(t, http.MethodGet, "/api/resources?q=chemistry", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, body["shown"])
	assert.Empty(t, body["resources"])

	t.Run("anonymous download is refused and not counted", func(t *testing.T) {
		w, body := app.do(t, http.MethodPost, "/api/resources/"+id+"/download", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "/login", body["redirect"])
		notice := body["notice"].(map[string]any)
		assert.Equal(t, "Login Required", notice["title"])

		r, err := app.resources.ListResources(context.Background(), resourcerepo.ResourceFilter{})
		require.NoError(t, err)
		assert.Zero(t, r[0].Downloads)
	})

	t.Run("signed-in download counts once and returns the fresh listing", func(t *testing.T) {
		w, body := app.do(t, http.MethodPost, "/api/resources/"+id+"/download?q=quantum", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, true, body["counted"])
		notice := body["notice"].(map[string]any)
		assert.Equal(t, "Download Started", notice["title"])
		assert.Equal(t, "Downloading Quantum Physics Notes...", notice["description"])

		listed := body["resources"].([]any)
		require.Len(t, listed, 1)
		assert.EqualValues(t, 1, listed[0].(map[string]any)["downloads"])
	})

	t.Run("unknown resource", func(t *testing.T) {
		w, _ := app.do(t, http.MethodPost, "/api/resources/00000000-0000-0000-0000-000000000000/download", token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		w, _ := app.do(t, http.MethodGet, "/api/resources/not-a-uuid", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUploadValidation(t *testing.T) {
	app := newTestApp(t)
	token := app.register(t, "Sarah", "sarah@example.com", "secret1")

	w := app.upload(t, token, "Malware", "setup.exe")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.upload(t, "", "Notes", "notes.pdf")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	count, err := app.resources.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	w = app.upload(t, token, "Slides", "slides.PPTX")
	require.Equal(t, http.StatusCreated, w.Code)
	var body struct {
		Resource struct {
			FileSize string `json:"file_size"`
			FileType string `json:"file_type"`
		} `json:"resource"`
		Redirect string `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "1.5 KB", body.Resource.FileSize)
	assert.Equal(t, "PPTX", body.Resource.FileType)
	assert.Equal(t, "/browse", body.Redirect)
}

func TestDashboard(t *testing.T) {
	app := newTestApp(t)
	sarah := app.register(t, "Sarah", "sarah@example.com", "secret1")
	mike := app.register(t, "", "mike@example.com", "secret1")

	first := resourceID(t, app.upload(t, sarah, "Notes A", "a.pdf"))
	app.upload(t, sarah, "Notes B", "b.pdf")

	w, body := app.do(t, http.MethodGet, "/api/dashboard", sarah, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Welcome back, Sarah!", body["welcome"])
	assert.EqualValues(t, 2, body["stats"].(map[string]any)["total_uploads"])

	_, body = app.do(t, http.MethodGet, "/api/dashboard", mike, nil)
	assert.Equal(t, "Welcome back, mike@example.com!", body["welcome"])

	t.Run("others cannot delete", func(t *testing.T) {
		w, _ := app.do(t, http.MethodDelete, "/api/dashboard/resources/"+first, mike, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("owner delete returns refreshed stats", func(t *testing.T) {
		w, body := app.do(t, http.MethodDelete, "/api/dashboard/resources/"+first, sarah, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.EqualValues(t, 1, body["stats"].(map[string]any)["total_uploads"])
		assert.Len(t, body["uploads"], 1)
	})

	t.Run("admin sessions are sent to login", func(t *testing.T) {
		admin := app.login(t, "/api/admin/login", adminEmail, adminPassword)
		w, body := app.do(t, http.MethodGet, "/api/dashboard", admin, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "/login", body["redirect"])
	})

	t.Run("anonymous", func(t *testing.T) {
		w, _ := app.do(t, http.MethodGet, "/api/dashboard", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAdmin(t *testing.T) {
	app := newTestApp(t)
	sarah := app.register(t, "Sarah", "sarah@example.com", "secret1")
	id := resourceID(t, app.upload(t, sarah, "Notes A", "a.pdf"))

	w, _ := app.do(t, http.MethodGet, "/api/admin/overview", sarah, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = app.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{"email": "sarah@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	admin := app.login(t, "/api/admin/login", adminEmail, adminPassword)

	w, body := app.do(t, http.MethodPatch, "/api/admin/resources/"+id+"/status", admin, map[string]string{"status": "pending"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "bg-yellow-100 text-yellow-800", body["status_color"])

	w, _ = app.do(t, http.MethodPatch, "/api/admin/resources/"+id+"/status", admin, map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = app.do(t, http.MethodGet, "/api/admin/overview", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := body["stats"].([]any)
	require.Len(t, stats, 4)
	assert.Equal(t, "Pending Reviews", stats[3].(map[string]any)["title"])
	assert.EqualValues(t, 1, stats[3].(map[string]any)["value"])

	var sarahID string
	for _, u := range body["users"].([]any) {
		row := u.(map[string]any)
		if row["email"] == "sarah@example.com" {
			sarahID = row["id"].(string)
			assert.EqualValues(t, 1, row["uploads"])
		}
	}
	require.NotEmpty(t, sarahID)
	rows := body["resources"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "Sarah", rows[0].(map[string]any)["uploader"])

	t.Run("rejected resources leave browse", func(t *testing.T) {
		w, _ := app.do(t, http.MethodPatch, "/api/admin/resources/"+id+"/status", admin, map[string]string{"status": "rejected"})
		require.Equal(t, http.StatusOK, w.Code)
		_, body := app.do(t, http.MethodGet, "/api/resources", "", nil)
		assert.EqualValues(t, 0, body["total"])

		w, _ = app.do(t, http.MethodGet, "/api/resources/"+id, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		w, _ = app.do(t, http.MethodGet, "/api/resources/"+id, sarah, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		w, _ = app.do(t, http.MethodGet, "/api/resources/"+id, admin, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("suspended users cannot log in", func(t *testing.T) {
		w, _ := app.do(t, http.MethodPatch, "/api/admin/users/"+sarahID+"/status", admin, map[string]string{"status": "suspended"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		w, _ = app.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "sarah@example.com", "password": "secret1"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin delete", func(t *testing.T) {
		w, _ := app.do(t, http.MethodDelete, "/api/admin/resources/"+id, admin, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		w, _ = app.do(t, http.MethodDelete, "/api/admin/resources/"+id, admin, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLanding(t *testing.T) {
	app := newTestApp(t)
	sarah := app.register(t, "Sarah", "sarah@example.com", "secret1")
	app.upload(t, sarah, "Notes A", "a.pdf")

	w, body := app.do(t, http.MethodGet, "/api/landing", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	categories := body["categories"].([]any)
	require.Len(t, categories, 4)
	for _, c := range categories {
		cat := c.(map[string]any)
		if cat["value"] == "notes" {
			assert.EqualValues(t, 1, cat["count"])
			assert.Equal(t, "Study notes and course materials", cat["description"])
		}
	}
	assert.Len(t, body["features"], 4)
	assert.EqualValues(t, 1, body["totals"].(map[string]any)["contributors"])
}

func TestDocsAndHealth(t *testing.T) {
	app := newTestApp(t)

	w, _ := app.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = app.do(t, http.MethodGet, "/openapi.json", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, json.Valid(w.Body.Bytes()))
}
