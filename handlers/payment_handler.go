package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/shehan8461/Gym-Management-System-sub000/database"
	"github.com/shehan8461/Gym-Management-System-sub000/membership"
	"github.com/shehan8461/Gym-Management-System-sub000/models"
)

type PaymentHandler struct{}

func NewPaymentHandler() *PaymentHandler { return &PaymentHandler{} }

type createPaymentReq struct {
	MemberID  uint     `json:"member_id"`
	Amount    *float64 `json:"amount"`     // default: member custom price, else package price
	StartDate string   `json:"start_date"` // YYYY-MM-DD, default: continue from the running period
}

// GET /members/:id/payments
func (h *PaymentHandler) ListForMember(c echo.Context) error {
	var m models.Member
	if err := database.DB.First(&m, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}

	var payments []models.Payment
	if err := database.DB.Preload("Package").
		Where("member_id = ?", m.ID).
		Order("payment_date DESC, id DESC").
		Find(&payments).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, payments)
}

// GET /members/:id/payments/latest: most recent payment for the member's
// currently assigned package, 404 when none exists (including after a
// package switch).
func (h *PaymentHandler) LatestForMember(c echo.Context) error {
	var m models.Member
	if err := database.DB.First(&m, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	if m.PackageID == nil {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "NO_PACKAGE_ASSIGNED"})
	}

	var pay models.Payment
	err := database.DB.Preload("Package").
		Where("member_id = ? AND package_id = ?", m.ID, *m.PackageID).
		Order("payment_date DESC, id DESC").
		First(&pay).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NO_PAYMENT_FOR_PACKAGE"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, pay)
}

// POST /payments
func (h *PaymentHandler) Create(c echo.Context) error {
	var req createPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if req.MemberID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "MISSING_FIELDS"})
	}

	var m models.Member
	if err := database.DB.Preload("Package").First(&m, req.MemberID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "MEMBER_NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	if m.PackageID == nil || m.Package == nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "NO_PACKAGE_ASSIGNED"})
	}

	today := membership.Today()
	facts := lastPaymentFacts(database.DB, &m)
	if membership.PaymentBlocked(today, facts) {
		return c.JSON(http.StatusConflict, map[string]any{
			"error":         "PAYMENT_NOT_DUE",
			"next_due_date": facts.NextDueDate.Format("2006-01-02"),
		})
	}

	// Default start: pick up where the running period leaves off, so paying
	// a few days early does not shorten the membership.
	start := today
	if s := strings.TrimSpace(req.StartDate); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_DATE"})
		}
		start = membership.DateOf(parsed)
	} else if facts != nil && facts.NextDueDate.After(today) {
		start = membership.DateOf(facts.NextDueDate)
	}

	amount := m.Package.Price
	if m.CustomPrice != nil {
		amount = *m.CustomPrice
	}
	if req.Amount != nil {
		if *req.Amount < 0 {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_AMOUNT"})
		}
		amount = *req.Amount
	}

	end, nextDue := models.PaymentPeriod(start, m.Package.DurationMonths)
	pay := models.Payment{
		MemberID:    m.ID,
		PackageID:   *m.PackageID,
		ReceiptNo:   uuid.NewString(),
		Amount:      amount,
		PaymentDate: today,
		StartDate:   start,
		EndDate:     end,
		NextDueDate: nextDue,
	}
	if err := database.DB.Create(&pay).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusCreated, pay)
}
