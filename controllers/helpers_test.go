// file: controllers/helpers_test.go
package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"conference-desk/middleware"
	"conference-desk/models"
)

// setupTestRouter creates a new Gin engine with session middleware and a
// helper route that signs in as the given staff role.
func setupTestRouter() *gin.Engine {
	router := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions("testsession", store))

	router.GET("/test-login/:user/:role", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(middleware.SessionUserKey, c.Param("user"))
		session.Set(middleware.SessionRoleKey, c.Param("role"))
		if err := session.Save(); err != nil {
			c.String(http.StatusInternalServerError, "session save failed")
			return
		}
		c.String(http.StatusOK, "session set")
	})
	return router
}

// loginAs calls the helper route and returns the session cookie.
func loginAs(t *testing.T, router *gin.Engine, user string, role models.Role) *http.Cookie {
	req := httptest.NewRequest(http.MethodGet, "/test-login/"+user+"/"+string(role), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == "testsession" {
			return c
		}
	}
	t.Fatal("no session cookie returned")
	return nil
}

// doJSON performs a request with an optional JSON body and session cookie.
func doJSON(router *gin.Engine, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decode unmarshals the recorder body into a generic map.
func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// hashPassword hashes the given password using bcrypt.
func hashPassword(password string) string {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic("failed to hash password: " + err.Error())
	}
	return string(hashed)
}
