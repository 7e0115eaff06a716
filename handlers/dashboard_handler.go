package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shehan8461/Gym-Management-System-sub000/config"
	"github.com/shehan8461/Gym-Management-System-sub000/database"
	"github.com/shehan8461/Gym-Management-System-sub000/membership"
	"github.com/shehan8461/Gym-Management-System-sub000/models"
)

type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler { return &DashboardHandler{} }

const summaryCacheKey = "dashboard:summary"
const summaryCacheTTL = 30 * time.Second

type dashboardSummary struct {
	Members         int64          `json:"members"`
	ActiveMembers   int64          `json:"active_members"`
	Packages        int64          `json:"packages"`
	PaymentsToday   int64          `json:"payments_today"`
	CheckinsToday   int64          `json:"checkins_today"`
	StatusBreakdown map[string]int `json:"status_breakdown"`
	TierBreakdown   map[string]int `json:"tier_breakdown"`
}

// GET /dashboard/summary
// The status breakdown walks every active member, so the result is cached
// for a short TTL when redis is available.
func (h *DashboardHandler) Summary(c echo.Context) error {
	if config.RDB != nil {
		if cached, err := config.RDB.Get(config.Ctx, summaryCacheKey).Bytes(); err == nil {
			var out dashboardSummary
			if json.Unmarshal(cached, &out) == nil {
				return c.JSON(http.StatusOK, out)
			}
		}
	}

	out := dashboardSummary{
		StatusBreakdown: map[string]int{},
		TierBreakdown:   map[string]int{},
	}
	today := membership.Today()

	database.DB.Model(&models.Member{}).Count(&out.Members)
	database.DB.Model(&models.Member{}).Where("active = ?", true).Count(&out.ActiveMembers)
	database.DB.Model(&models.MembershipPackage{}).Where("active = ?", true).Count(&out.Packages)
	database.DB.Model(&models.Payment{}).Where("payment_date = ?", today).Count(&out.PaymentsToday)
	database.DB.Model(&models.Attendance{}).Where("check_in_date = ?", today).Count(&out.CheckinsToday)

	var members []models.Member
	if err := database.DB.Preload("Package").Where("active = ?", true).Find(&members).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	for _, m := range members {
		row := statusRow(database.DB, m)
		out.StatusBreakdown[string(row.View.Status)]++
		out.TierBreakdown[string(row.View.Tier)]++
	}

	if config.RDB != nil {
		if data, err := json.Marshal(out); err == nil {
			config.RDB.Set(config.Ctx, summaryCacheKey, data, summaryCacheTTL)
		}
	}
	return c.JSON(http.StatusOK, out)
}
