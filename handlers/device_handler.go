package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/shehan8461/Gym-Management-System-sub000/biometric"
	"github.com/shehan8461/Gym-Management-System-sub000/database"
	"github.com/shehan8461/Gym-Management-System-sub000/models"
)

// DeviceHandler manages the single access-control unit record. newDevice
// builds a fresh handle per request; tests swap in a fake.
type DeviceHandler struct {
	newDevice func() biometric.Device
}

func NewDeviceHandler() *DeviceHandler {
	return &DeviceHandler{
		newDevice: func() biometric.Device { return biometric.NewHTTPDevice() },
	}
}

type devicePayload struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// GET /admin/device
func (h *DeviceHandler) Get(c echo.Context) error {
	var dev models.BiometricDevice
	if err := database.DB.First(&dev).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "DEVICE_NOT_CONFIGURED"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, dev)
}

// PUT /admin/device: create or replace the single config row
func (h *DeviceHandler) CreateOrUpdate(c echo.Context) error {
	var p devicePayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	p.Address = strings.TrimSpace(p.Address)
	if p.Address == "" || p.Port < 1 || p.Port > 65535 {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	var dev models.BiometricDevice
	err := database.DB.First(&dev).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}

	dev.Name = strings.TrimSpace(p.Name)
	dev.Address = p.Address
	dev.Port = p.Port
	dev.Username = strings.TrimSpace(p.Username)
	if p.Password != "" {
		dev.Password = p.Password
	}
	dev.Connected = false

	if err := database.DB.Save(&dev).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, dev)
}

// POST /admin/device/test: try a connect/disconnect round trip and record
// the outcome on the row.
func (h *DeviceHandler) TestConnection(c echo.Context) error {
	var dev models.BiometricDevice
	if err := database.DB.First(&dev).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "DEVICE_NOT_CONFIGURED"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	unit := h.newDevice()
	if err := unit.Connect(ctx, dev.Address, dev.Port, dev.Username, dev.Password); err != nil {
		database.DB.Model(&dev).Update("connected", false)
		return c.JSON(http.StatusBadGateway, map[string]any{"error": "DEVICE_CONNECT_FAILED", "message": err.Error()})
	}
	defer unit.Disconnect()

	database.DB.Model(&dev).Update("connected", true)
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// POST /admin/device/enroll/:memberId: capture a fingerprint for the member
// at the unit.
func (h *DeviceHandler) Enroll(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("memberId"))
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_ID"})
	}

	var m models.Member
	if err := database.DB.First(&m, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "MEMBER_NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}

	var dev models.BiometricDevice
	if err := database.DB.First(&dev).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "DEVICE_NOT_CONFIGURED"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}

	unit := h.newDevice()
	enr, ok := unit.(biometric.Enroller)
	if !ok {
		return c.JSON(http.StatusNotImplemented, map[string]any{"error": "ENROLL_UNSUPPORTED"})
	}

	// enrollment keeps the operator waiting at the unit, give it a while
	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	if err := unit.Connect(ctx, dev.Address, dev.Port, dev.Username, dev.Password); err != nil {
		return c.JSON(http.StatusBadGateway, map[string]any{"error": "DEVICE_CONNECT_FAILED", "message": err.Error()})
	}
	defer unit.Disconnect()

	if err := enr.EnrollFingerprint(ctx, m.ID); err != nil {
		return c.JSON(http.StatusBadGateway, map[string]any{"error": "ENROLL_FAILED", "message": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}
