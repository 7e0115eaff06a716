package handlers

import (
	"crypto/rand"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/shehan8461/Gym-Management-System-sub000/database"
	"github.com/shehan8461/Gym-Management-System-sub000/models"
)

// AccountHandler manages staff accounts (admin scope).
type AccountHandler struct{}

func NewAccountHandler() *AccountHandler { return &AccountHandler{} }

type createAccountReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"` // "admin" | "staff", defaults to staff
}

func hashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func randomPassword(n int) string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
	if n < 8 {
		n = 8
	}
	out := make([]byte, n)
	for i := range out {
		idx, _ := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		out[i] = alphabet[idx.Int64()]
	}
	return string(out)
}

// GET /admin/accounts
func (h *AccountHandler) List(c echo.Context) error {
	var users []models.User
	if err := database.DB.Order("updated_at desc").Find(&users).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, users)
}

// POST /admin/accounts
func (h *AccountHandler) Create(c echo.Context) error {
	var req createAccountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	username := strings.TrimSpace(req.Username)
	pass := strings.TrimSpace(req.Password)
	if username == "" || len(pass) < 8 {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role != "admin" {
		role = "staff"
	}

	var dup models.User
	if err := database.DB.Where("username = ?", username).First(&dup).Error; err == nil {
		return c.JSON(http.StatusConflict, map[string]any{"error": "USERNAME_TAKEN"})
	} else if err != gorm.ErrRecordNotFound {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}

	hashed, err := hashPassword(pass)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "HASH_FAILED"})
	}
	u := models.User{Username: username, PasswordHash: hashed, Role: role, Name: strings.TrimSpace(req.Name)}
	if err := database.DB.Create(&u).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusCreated, u)
}

// POST /admin/accounts/:id/reset: returns a one-time password
func (h *AccountHandler) ResetPassword(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_ID"})
	}

	var u models.User
	if err := database.DB.First(&u, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}

	otp := randomPassword(10)
	hashed, err := hashPassword(otp)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "HASH_FAILED"})
	}
	if err := database.DB.Model(&u).Update("password_hash", hashed).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, map[string]any{"one_time_password": otp})
}

// DELETE /admin/accounts/:id
func (h *AccountHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_ID"})
	}
	uid, _ := currentUser(c)
	if uid == uint(id) {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "CANNOT_DELETE_SELF"})
	}
	if err := database.DB.Delete(&models.User{}, id).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}
