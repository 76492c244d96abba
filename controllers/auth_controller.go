// Package controllers controllers/auth_controller.go
package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"conference-desk/logger"
	"conference-desk/middleware"
	"conference-desk/models"
)

// ComparePasswords checks if the given password matches the hashed password
func ComparePasswords(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

// LoadStaffCreds loads staff credentials from a JSON file.
func LoadStaffCreds(path string) (*models.StaffCreds, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, err
	}
	var creds models.StaffCreds
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for _, u := range creds.Users {
		if _, err := models.ParseRole(string(u.Role)); err != nil || u.Role == models.RoleParticipant {
			return nil, fmt.Errorf("staff user %q has invalid role %q", u.Username, u.Role)
		}
	}
	return &creds, nil
}

// AuthController signs staff in and out of the scanning desk.
type AuthController struct {
	loadCreds func() (*models.StaffCreds, error)
}

// NewAuthController creates an AuthController. The loader runs on every login
// so edits to the credentials file apply without a restart.
func NewAuthController(loadCreds func() (*models.StaffCreds, error)) *AuthController {
	return &AuthController{loadCreds: loadCreds}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks the credentials and stores the user and role in the session.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	creds, err := ac.loadCreds()
	if err != nil {
		logger.Error().Err(err).Msg("Login: failed to load staff credentials")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	user := creds.Find(req.Username)
	if user == nil || !ComparePasswords(user.Password, req.Password) {
		logger.Warn().Str("username", req.Username).Msg("Login: invalid credentials")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.Username)
	session.Set(middleware.SessionRoleKey, string(user.Role))
	if err := session.Save(); err != nil {
		logger.Error().Err(err).Str("username", user.Username).Msg("Login: failed to save session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	logger.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("Login: staff signed in")
	c.JSON(http.StatusOK, gin.H{"user": user.Username, "role": user.Role})
}

// Logout clears the session.
func (ac *AuthController) Logout(c *gin.Context) {
	session := sessions.Default(c)
	user := session.Get(middleware.SessionUserKey)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		logger.Error().Err(err).Msg("Logout: failed to clear session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	logger.Info().Interface("user", user).Msg("Logout: staff signed out")
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// Me echoes the signed-in user.
func (ac *AuthController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": middleware.CurrentUser(c), "role": middleware.CurrentRole(c)})
}
