package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/propinspect/internal/config"
	"github.com/xxxsen/propinspect/internal/filestore"
	"github.com/xxxsen/propinspect/internal/handler"
	"github.com/xxxsen/propinspect/internal/middleware"
	"github.com/xxxsen/propinspect/internal/service"
	"github.com/xxxsen/propinspect/internal/testutil"
)

type routerOptions struct {
	publicBaseURL string
	rateLimitRPM  int
	maxUpload     int64
	// wrapInspections lets a test swap in a failing store.
	wrapInspections func(service.InspectionStore) service.InspectionStore
}

func setupRouter(t *testing.T, opts routerOptions) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := testutil.NewMemStore()
	var inspections service.InspectionStore = mem.Inspections()
	if opts.wrapInspections != nil {
		inspections = opts.wrapInspections(inspections)
	}
	if opts.maxUpload == 0 {
		opts.maxUpload = 1024 * 1024
	}
	store, err := filestore.New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": t.TempDir()}})
	require.NoError(t, err)

	jwtSecret := []byte("test-secret")
	authService := service.NewAuthService(mem.Users(), jwtSecret, time.Hour)
	inspectionService := service.NewInspectionService(inspections, mem.Items())
	shareService := service.NewShareService(inspections, mem.Items(), mem.Photos(), opts.publicBaseURL)
	photoService := service.NewPhotoService(inspections, mem.Items(), mem.Photos(), shareService, store, opts.maxUpload)

	deps := handler.RouterDeps{
		Auth:               handler.NewAuthHandler(authService),
		Inspections:        handler.NewInspectionHandler(inspectionService),
		Shares:             handler.NewShareHandler(shareService),
		Photos:             handler.NewPhotoHandler(photoService, opts.maxUpload),
		JWTSecret:          jwtSecret,
		PublicRateLimitRPM: opts.rateLimitRPM,
	}
	engine := gin.New()
	engine.Use(middleware.RequestID())
	handler.RegisterRoutes(engine.Group("/api/v1"), deps)
	return engine
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	return out
}

func register(t *testing.T, router http.Handler, email string) string {
	t.Helper()
	resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": email, "password": "secret-pass"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	token, _ := decode(t, resp)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func createInspection(t *testing.T, router http.Handler, token string) string {
	t.Helper()
	resp := doJSON(t, router, http.MethodPost, "/api/v1/inspections", token, map[string]interface{}{
		"property_name":    "12 Elm St",
		"property_address": "Springfield",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	id, _ := decode(t, resp)["id"].(string)
	require.NotEmpty(t, id)
	return id
}
