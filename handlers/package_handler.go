package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/shehan8461/Gym-Management-System-sub000/database"
	"github.com/shehan8461/Gym-Management-System-sub000/models"
)

type PackageHandler struct{}

func NewPackageHandler() *PackageHandler { return &PackageHandler{} }

type packagePayload struct {
	Name           string   `json:"name"`
	DurationMonths int      `json:"duration_months"`
	Price          *float64 `json:"price"`
	Active         *bool    `json:"active"`
}

func validatePackage(p *packagePayload) map[string]string {
	errs := map[string]string{}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" || len(p.Name) > 60 {
		errs["name"] = "name is required (max 60)"
	}
	if p.DurationMonths < 1 || p.DurationMonths > 36 {
		errs["duration_months"] = "duration must be 1-36 whole months"
	}
	if p.Price == nil || *p.Price < 0 {
		errs["price"] = "price is required and cannot be negative"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (h *PackageHandler) List(c echo.Context) error {
	tx := database.DB.Model(&models.MembershipPackage{})
	if v := strings.TrimSpace(c.QueryParam("active")); v != "" {
		tx = tx.Where("active = ?", v == "true" || v == "1")
	}
	var items []models.MembershipPackage
	if err := tx.Order("id ASC").Find(&items).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, items)
}

func (h *PackageHandler) Get(c echo.Context) error {
	var pkg models.MembershipPackage
	if err := database.DB.First(&pkg, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, pkg)
}

func (h *PackageHandler) Create(c echo.Context) error {
	var p packagePayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if errs := validatePackage(&p); errs != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{"errors": errs})
	}

	var dup models.MembershipPackage
	if err := database.DB.Where("name = ?", p.Name).First(&dup).Error; err == nil {
		return c.JSON(http.StatusConflict, map[string]any{"error": "PACKAGE_NAME_TAKEN"})
	} else if err != gorm.ErrRecordNotFound {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}

	pkg := models.MembershipPackage{
		Name:           p.Name,
		DurationMonths: p.DurationMonths,
		Price:          *p.Price,
		Active:         true,
	}
	if p.Active != nil {
		pkg.Active = *p.Active
	}
	if err := database.DB.Create(&pkg).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusCreated, pkg)
}

func (h *PackageHandler) Update(c echo.Context) error {
	var pkg models.MembershipPackage
	if err := database.DB.First(&pkg, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}

	var p packagePayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if errs := validatePackage(&p); errs != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{"errors": errs})
	}

	pkg.Name = p.Name
	pkg.DurationMonths = p.DurationMonths
	pkg.Price = *p.Price
	if p.Active != nil {
		pkg.Active = *p.Active
	}
	if err := database.DB.Save(&pkg).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, pkg)
}

// Delete deactivates a package; members may still reference it.
func (h *PackageHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_ID"})
	}
	res := database.DB.Model(&models.MembershipPackage{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	if res.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}
