package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/shehan8461/Gym-Management-System-sub000/database"
	"github.com/shehan8461/Gym-Management-System-sub000/models"
)

type ProfileHandler struct{}

func NewProfileHandler() *ProfileHandler { return &ProfileHandler{} }

func currentUser(c echo.Context) (uid uint, role string) {
	role, _ = c.Get("role").(string)
	switch v := c.Get("user_id").(type) {
	case uint:
		uid = v
	case int:
		uid = uint(v)
	}
	return
}

type changePasswordReq struct {
	Current string `json:"current"`
	Next    string `json:"next"`
}

// PUT /profile/password
func (h *ProfileHandler) ChangePassword(c echo.Context) error {
	uid, _ := currentUser(c)
	if uid == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "UNAUTHORIZED"})
	}

	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	next := strings.TrimSpace(req.Next)
	if len(next) < 8 {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{"error": "PASSWORD_TOO_SHORT"})
	}

	var u models.User
	if err := database.DB.First(&u, uid).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Current)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, map[string]any{"error": "WRONG_PASSWORD"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{"error": "HASH_FAILED"})
	}
	if err := database.DB.Model(&u).Update("password_hash", string(hashed)).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}
