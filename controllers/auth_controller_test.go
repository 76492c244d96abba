// controllers/auth_controller_test.go
package controllers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conference-desk/middleware"
	"conference-desk/models"
)

var testStaffCreds = &models.StaffCreds{
	Users: []models.StaffUser{
		{Username: "desk1", Password: hashPassword("scanpass"), Role: models.RoleCoordinator},
		{Username: "root", Password: hashPassword("adminpass"), Role: models.RoleAdmin},
	},
}

func staticCreds() (*models.StaffCreds, error) { return testStaffCreds, nil }

func setupAuthRoutes(loader func() (*models.StaffCreds, error)) *gin.Engine {
	router := setupTestRouter()
	ac := NewAuthController(loader)
	router.POST("/auth/login", ac.Login)
	authed := router.Group("/", middleware.AuthRequired)
	authed.POST("/auth/logout", ac.Logout)
	authed.GET("/auth/me", ac.Me)
	return router
}

func TestComparePasswords(t *testing.T) {
	hashed := hashPassword("securepassword")
	assert.True(t, ComparePasswords(hashed, "securepassword"))
	assert.False(t, ComparePasswords(hashed, "wrongpassword"))
}

func TestLogin_Success(t *testing.T) {
	router := setupAuthRoutes(staticCreds)

	w := doJSON(router, http.MethodPost, "/auth/login", gin.H{"username": "desk1", "password": "scanpass"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"desk1","role":"coordinator"}`, w.Body.String())

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "testsession" {
			session = c
		}
	}
	require.NotNil(t, session)

	w = doJSON(router, http.MethodGet, "/auth/me", nil, session)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":"desk1","role":"coordinator"}`, w.Body.String())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	router := setupAuthRoutes(staticCreds)

	tests := []struct {
		name string
		body gin.H
	}{
		{"wrong password", gin.H{"username": "desk1", "password": "nope"}},
		{"unknown user", gin.H{"username": "ghost", "password": "scanpass"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/auth/login", tt.body, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "invalid username or password", decode(t, w)["error"])
		})
	}
}

func TestLogin_MissingFields(t *testing.T) {
	router := setupAuthRoutes(staticCreds)

	w := doJSON(router, http.MethodPost, "/auth/login", gin.H{"username": "desk1"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w)["fields"].(map[string]interface{})
	assert.Equal(t, "required", fields["password"])
}

func TestLogin_CredentialsUnavailable(t *testing.T) {
	router := setupAuthRoutes(func() (*models.StaffCreds, error) {
		return nil, errors.New("disk gone")
	})

	w := doJSON(router, http.MethodPost, "/auth/login", gin.H{"username": "desk1", "password": "scanpass"}, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk gone")
}

func TestLogout(t *testing.T) {
	router := setupAuthRoutes(staticCreds)
	cookie := loginAs(t, router, "root", models.RoleAdmin)

	w := doJSON(router, http.MethodPost, "/auth/logout", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"logged out"}`, w.Body.String())
}

func TestLogout_NoSession(t *testing.T) {
	router := setupAuthRoutes(staticCreds)

	w := doJSON(router, http.MethodPost, "/auth/logout", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoadStaffCreds(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}

	t.Run("valid", func(t *testing.T) {
		p := write("ok.json", `{"users":[{"username":"desk1","password":"x","role":"coordinator"},{"username":"root","password":"y","role":"admin"}]}`)
		creds, err := LoadStaffCreds(p)
		require.NoError(t, err)
		assert.Len(t, creds.Users, 2)
		assert.Equal(t, models.RoleAdmin, creds.Find("root").Role)
	})

	t.Run("participant role rejected", func(t *testing.T) {
		p := write("participant.json", `{"users":[{"username":"p","password":"x","role":"participant"}]}`)
		_, err := LoadStaffCreds(p)
		assert.Error(t, err)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		p := write("bad.json", `{"users":[{"username":"p","password":"x","role":"janitor"}]}`)
		_, err := LoadStaffCreds(p)
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		p := write("broken.json", `{"users":`)
		_, err := LoadStaffCreds(p)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadStaffCreds(filepath.Join(dir, "absent.json"))
		assert.Error(t, err)
	})
}

func TestLoadStaffCreds_SampleFile(t *testing.T) {
	creds, err := LoadStaffCreds(filepath.Join("..", "config", "staff_creds.json"))
	require.NoError(t, err)

	desk := creds.Find("desk1")
	require.NotNil(t, desk)
	assert.Equal(t, models.RoleCoordinator, desk.Role)
	assert.True(t, ComparePasswords(desk.Password, "scan-desk-1"))
}
