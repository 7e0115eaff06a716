package handlers

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/shehan8461/Gym-Management-System-sub000/database"
	"github.com/shehan8461/Gym-Management-System-sub000/models"
)

type MemberHandler struct{}

func NewMemberHandler() *MemberHandler { return &MemberHandler{} }

// ===== Validation rules (AddMemberForm) =====
var (
	memReCode  = regexp.MustCompile(`^[A-Za-z0-9\-]{1,20}$`)
	memReName  = regexp.MustCompile(`^[A-Za-z\s\.]{1,50}$`)
	memRePhone = regexp.MustCompile(`^[0-9\- ]{1,15}$`)
)

type memberPayload struct {
	MemberCode  string   `json:"member_code"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Phone       string   `json:"phone"`
	Active      *bool    `json:"active"`
	PackageID   *uint    `json:"package_id"`
	CustomPrice *float64 `json:"custom_price"`
}

func (p *memberPayload) normalize() {
	p.MemberCode = strings.TrimSpace(p.MemberCode)
	p.FirstName = strings.Join(strings.Fields(p.FirstName), " ")
	p.LastName = strings.Join(strings.Fields(p.LastName), " ")
	p.Phone = strings.TrimSpace(p.Phone)
}

func validateMember(p *memberPayload) map[string]string {
	errs := map[string]string{}

	if p.MemberCode == "" || !memReCode.MatchString(p.MemberCode) {
		errs["member_code"] = "member code must be letters, digits or '-' (max 20)"
	}
	if p.FirstName == "" || !memReName.MatchString(p.FirstName) {
		errs["first_name"] = "first name is required"
	}
	if p.LastName == "" || !memReName.MatchString(p.LastName) {
		errs["last_name"] = "last name is required"
	}
	if p.Phone != "" && !memRePhone.MatchString(p.Phone) {
		errs["phone"] = "invalid phone number"
	}
	if p.CustomPrice != nil && *p.CustomPrice < 0 {
		errs["custom_price"] = "price cannot be negative"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (h *MemberHandler) List(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	page := 1
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		page = v
	}
	size := 20
	if v, err := strconv.Atoi(c.QueryParam("size")); err == nil {
		if v < 1 {
			size = 1
		} else if v > 100 {
			size = 100
		} else {
			size = v
		}
	}

	tx := database.DB.Model(&models.Member{})
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where(
			"LOWER(member_code) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR phone LIKE ?",
			like, like, like, "%"+q+"%",
		)
	}
	if v := strings.TrimSpace(c.QueryParam("active")); v != "" {
		tx = tx.Where("active = ?", v == "true" || v == "1")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_COUNT_FAILED"})
	}

	var items []models.Member
	if err := tx.Preload("Package").Order("id DESC").
		Limit(size).Offset((page - 1) * size).Find(&items).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_QUERY_FAILED"})
	}
	return c.JSON(http.StatusOK, map[string]any{"data": items, "page": page, "size": size, "total": total})
}

func (h *MemberHandler) Get(c echo.Context) error {
	var m models.Member
	if err := database.DB.Preload("Package").First(&m, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MemberHandler) Create(c echo.Context) error {
	var p memberPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	p.normalize()
	if errs := validateMember(&p); errs != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{"errors": errs})
	}

	var dup models.Member
	if err := database.DB.Where("member_code = ?", p.MemberCode).First(&dup).Error; err == nil {
		return c.JSON(http.StatusConflict, map[string]any{"error": "MEMBER_CODE_TAKEN"})
	} else if err != gorm.ErrRecordNotFound {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}

	if p.PackageID != nil {
		if err := database.DB.First(&models.MembershipPackage{}, *p.PackageID).Error; err != nil {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "PACKAGE_NOT_FOUND"})
		}
	}

	m := models.Member{
		MemberCode:   p.MemberCode,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Phone:        p.Phone,
		RegisteredAt: time.Now(),
		Active:       true,
		PackageID:    p.PackageID,
		CustomPrice:  p.CustomPrice,
	}
	if p.Active != nil {
		m.Active = *p.Active
	}
	if err := database.DB.Create(&m).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *MemberHandler) Update(c echo.Context) error {
	var m models.Member
	if err := database.DB.First(&m, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}

	var p memberPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	p.normalize()
	if errs := validateMember(&p); errs != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{"errors": errs})
	}

	if p.MemberCode != m.MemberCode {
		var dup models.Member
		if err := database.DB.Where("member_code = ? AND id <> ?", p.MemberCode, m.ID).First(&dup).Error; err == nil {
			return c.JSON(http.StatusConflict, map[string]any{"error": "MEMBER_CODE_TAKEN"})
		}
	}

	m.MemberCode = p.MemberCode
	m.FirstName = p.FirstName
	m.LastName = p.LastName
	m.Phone = p.Phone
	m.CustomPrice = p.CustomPrice
	if p.Active != nil {
		m.Active = *p.Active
	}
	if err := database.DB.Save(&m).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, m)
}

// Delete deactivates the member; records are never hard-deleted.
func (h *MemberHandler) Delete(c echo.Context) error {
	var m models.Member
	if err := database.DB.First(&m, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	if err := database.DB.Model(&m).Update("active", false).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

type assignPackageReq struct {
	PackageID   *uint    `json:"package_id"` // null clears the assignment
	CustomPrice *float64 `json:"custom_price"`
}

// AssignPackage switches the member's package. Status evaluation only
// counts payments made for the new package from here on.
func (h *MemberHandler) AssignPackage(c echo.Context) error {
	var m models.Member
	if err := database.DB.First(&m, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}

	var req assignPackageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PAYLOAD"})
	}
	if req.PackageID != nil {
		var pkg models.MembershipPackage
		if err := database.DB.First(&pkg, *req.PackageID).Error; err != nil {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "PACKAGE_NOT_FOUND"})
		}
		if !pkg.Active {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "PACKAGE_INACTIVE"})
		}
	}
	if req.CustomPrice != nil && *req.CustomPrice < 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "INVALID_PRICE"})
	}

	updates := map[string]any{"package_id": req.PackageID, "custom_price": req.CustomPrice}
	if err := database.DB.Model(&m).Updates(updates).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "DB_ERROR"})
	}

	database.DB.Preload("Package").First(&m, m.ID)
	return c.JSON(http.StatusOK, m)
}
