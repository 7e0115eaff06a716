package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/shehan8461/Gym-Management-System-sub000/database"
	"github.com/shehan8461/Gym-Management-System-sub000/membership"
	"github.com/shehan8461/Gym-Management-System-sub000/models"
)

type AttendanceHandler struct{}

func NewAttendanceHandler() *AttendanceHandler { return &AttendanceHandler{} }

// GET /attendance?start=YYYY-MM-DD&end=YYYY-MM-DD&memberId=&source=
func (h *AttendanceHandler) List(c echo.Context) error {
	start := strings.TrimSpace(c.QueryParam("start"))
	end := strings.TrimSpace(c.QueryParam("end"))
	memberID := strings.TrimSpace(c.QueryParam("memberId"))
	source := strings.TrimSpace(c.QueryParam("source"))

	tx := database.DB.Model(&models.Attendance{})
	if start != "" {
		d, err := time.Parse("2006-01-02", start)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_DATE"})
		}
		tx = tx.Where("check_in_date >= ?", membership.DateOf(d))
	}
	if end != "" {
		d, err := time.Parse("2006-01-02", end)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_DATE"})
		}
		tx = tx.Where("check_in_date <= ?", membership.DateOf(d))
	}
	if memberID != "" {
		tx = tx.Where("member_id = ?", memberID)
	}
	if source != "" {
		tx = tx.Where("source = ?", source)
	}

	limit := atoiOr(c.QueryParam("limit"), 500)
	if limit < 1 || limit > 1000 {
		limit = 500
	}

	var rows []models.Attendance
	if err := tx.Preload("Member").
		Order("check_in_date DESC, check_in_time DESC, id DESC").
		Limit(limit).Find(&rows).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, rows)
}

type checkInReq struct {
	MemberID uint `json:"member_id"`
}

// openAttendanceToday finds the member's open (not checked out) row for
// today, if one exists. One open row per member per day is the rule both
// check-in paths enforce.
func openAttendanceToday(db *gorm.DB, memberID uint) (*models.Attendance, error) {
	today := membership.Today()
	var rec models.Attendance
	err := db.Where("member_id = ? AND check_in_date = ? AND check_out_date IS NULL", memberID, today).
		Order("id DESC").First(&rec).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func checkInMember(db *gorm.DB, memberID uint, source string) (*models.Attendance, bool, error) {
	if open, err := openAttendanceToday(db, memberID); err != nil {
		return nil, false, err
	} else if open != nil {
		return open, false, nil
	}
	rec := models.Attendance{
		MemberID:    memberID,
		CheckInDate: membership.Today(),
		CheckInTime: time.Now().Format("15:04"),
		Source:      source,
	}
	if err := db.Create(&rec).Error; err != nil {
		return nil, false, err
	}
	return &rec, true, nil
}

// POST /attendance/checkin: manual check-in from the front desk
func (h *AttendanceHandler) CheckIn(c echo.Context) error {
	var req checkInReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if req.MemberID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	var m models.Member
	if err := database.DB.First(&m, req.MemberID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "MEMBER_NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	if !m.Active {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MEMBER_INACTIVE"})
	}

	rec, created, err := checkInMember(database.DB, m.ID, models.AttendanceSourceManual)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	if !created {
		return c.JSON(http.StatusOK, map[string]any{"attendance": rec, "already_checked_in": true})
	}
	return c.JSON(http.StatusCreated, map[string]any{"attendance": rec, "already_checked_in": false})
}

// POST /attendance/:id/checkout
func (h *AttendanceHandler) CheckOut(c echo.Context) error {
	var rec models.Attendance
	if err := database.DB.First(&rec, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	if rec.CheckOutDate != nil {
		return c.JSON(http.StatusConflict, map[string]any{"error": "ALREADY_CHECKED_OUT"})
	}

	now := membership.Today()
	rec.CheckOutDate = &now
	rec.CheckOutTime = time.Now().Format("15:04")
	if err := database.DB.Save(&rec).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, rec)
}
