package endpoints

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/athan/internal/http/api"
	"github.com/Nixie-Tech-LLC/athan/internal/http/api/admin/auth/packets"
	"github.com/Nixie-Tech-LLC/athan/internal/http/middleware"
)

const secret = "test-secret"

func router(t *testing.T) *gin.Engine {
	t.Helper()
	hash, err := middleware.HashPassword("open sesame")
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/admin"}, AuthPublicModule(secret, hash))
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/admin", Auth: true, SecretKey: secret}, AuthSessionModule(secret, hash))
	return r
}

func login(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginIssuesUsableToken(t *testing.T) {
	r := router(t)

	w := login(r, `{"password":"open sesame"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp packets.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	sw := httptest.NewRecorder()
	r.ServeHTTP(sw, req)
	require.Equal(t, http.StatusOK, sw.Code)
	assert.JSONEq(t, `{"subject":"admin"}`, sw.Body.String())
}

func TestLoginRejects(t *testing.T) {
	r := router(t)

	assert.Equal(t, http.StatusUnauthorized, login(r, `{"password":"guess"}`).Code)
	assert.Equal(t, http.StatusBadRequest, login(r, `{}`).Code)
}
