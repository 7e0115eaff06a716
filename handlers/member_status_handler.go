package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/shehan8461/Gym-Management-System-sub000/database"
	"github.com/shehan8461/Gym-Management-System-sub000/membership"
	"github.com/shehan8461/Gym-Management-System-sub000/models"
)

// MemberStatusHandler serves the front-desk listing: every member with the
// derived payment status next to it.
type MemberStatusHandler struct{}

func NewMemberStatusHandler() *MemberStatusHandler { return &MemberStatusHandler{} }

type MemberStatusRow struct {
	Member models.Member         `json:"member"`
	View   membership.StatusView `json:"view"`
}

// lastPaymentFacts loads the most recent payment for the member's currently
// assigned package. Payments for previously assigned packages are ignored:
// that is what makes a package switch flip the status to payment_required.
func lastPaymentFacts(db *gorm.DB, m *models.Member) *membership.PaymentFacts {
	if m.PackageID == nil {
		return nil
	}
	var pay models.Payment
	err := db.Where("member_id = ? AND package_id = ?", m.ID, *m.PackageID).
		Order("payment_date DESC, id DESC").
		First(&pay).Error
	if err != nil {
		return nil
	}
	return &membership.PaymentFacts{
		PaymentDate: pay.PaymentDate,
		EndDate:     pay.EndDate,
		NextDueDate: pay.NextDueDate,
	}
}

func statusRow(db *gorm.DB, m models.Member) MemberStatusRow {
	duration := 0
	if m.Package != nil {
		duration = m.Package.DurationMonths
	}
	view := membership.Evaluate(membership.Today(), m.PackageID != nil, duration, lastPaymentFacts(db, &m))
	return MemberStatusRow{Member: m, View: view}
}

// GET /members/status?q=&status=
func (h *MemberStatusHandler) List(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	wanted := strings.TrimSpace(c.QueryParam("status"))

	tx := database.DB.Model(&models.Member{}).Where("active = ?", true)
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where(
			"LOWER(member_code) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			like, like, like,
		)
	}

	var members []models.Member
	if err := tx.Preload("Package").Order("id ASC").Find(&members).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}

	rows := make([]MemberStatusRow, 0, len(members))
	for _, m := range members {
		row := statusRow(database.DB, m)
		if wanted != "" && string(row.View.Status) != wanted {
			continue
		}
		rows = append(rows, row)
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /members/:id/status
func (h *MemberStatusHandler) Get(c echo.Context) error {
	var m models.Member
	if err := database.DB.Preload("Package").First(&m, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, statusRow(database.DB, m))
}
