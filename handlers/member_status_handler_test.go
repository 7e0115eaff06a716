package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shehan8461/Gym-Management-System-sub000/database"
	"github.com/shehan8461/Gym-Management-System-sub000/membership"
	"github.com/shehan8461/Gym-Management-System-sub000/models"
)

func getStatusRows(t *testing.T) []MemberStatusRow {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/members/status", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, NewMemberStatusHandler().List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []MemberStatusRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	return rows
}

func TestStatusListPaidMember(t *testing.T) {
	db := setupDB(t)
	pkg := seedPackage(t, db, 1, 2500)
	m := seedMemberWithPackage(t, db, pkg)
	seedPayment(t, db, m, pkg.ID, membership.Today(), pkg.DurationMonths)

	rows := getStatusRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, membership.StatusPaid, rows[0].View.Status)
	assert.Equal(t, membership.TierOK, rows[0].View.Tier)
}

func TestStatusListNoPackage(t *testing.T) {
	db := setupDB(t)
	m := models.Member{MemberCode: "M-1", FirstName: "A", LastName: "B", Active: true}
	require.NoError(t, db.Create(&m).Error)

	rows := getStatusRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, membership.StatusNoPackage, rows[0].View.Status)
}

// Switching packages invalidates the old payment for status purposes, even
// when that payment would still be current by date math.
func TestStatusListAfterPackageSwitch(t *testing.T) {
	db := setupDB(t)
	oldPkg := seedPackage(t, db, 12, 20000)
	newPkg := seedPackage(t, db, 1, 2500)
	m := seedMemberWithPackage(t, db, oldPkg)
	seedPayment(t, db, m, oldPkg.ID, membership.Today().AddDate(0, -1, 0), oldPkg.DurationMonths)

	require.NoError(t, db.Model(&m).Update("package_id", newPkg.ID).Error)

	rows := getStatusRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, membership.StatusPaymentRequired, rows[0].View.Status)
	assert.Equal(t, membership.TierUrgent, rows[0].View.Tier)
	assert.True(t, rows[0].View.Projected)
}

func TestStatusListOverdueMember(t *testing.T) {
	db := setupDB(t)
	pkg := seedPackage(t, db, 1, 2500)
	m := seedMemberWithPackage(t, db, pkg)
	// period ended two months ago
	seedPayment(t, db, m, pkg.ID, membership.Today().AddDate(0, -3, 0), pkg.DurationMonths)

	rows := getStatusRows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, membership.StatusOverdue, rows[0].View.Status)
	assert.True(t, rows[0].View.Expired)
}

func TestStatusListSkipsInactiveMembers(t *testing.T) {
	db := setupDB(t)
	m := models.Member{MemberCode: "M-OFF", FirstName: "Gone", LastName: "Member", Active: false}
	require.NoError(t, db.Create(&m).Error)

	rows := getStatusRows(t)
	assert.Empty(t, rows)
	_ = database.DB // keep the shared handle initialized for other tests
}
