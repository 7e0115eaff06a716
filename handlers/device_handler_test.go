package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shehan8461/Gym-Management-System-sub000/biometric"
	"github.com/shehan8461/Gym-Management-System-sub000/database"
	"github.com/shehan8461/Gym-Management-System-sub000/models"
)

// enrollingUnit implements both Device and Enroller.
type enrollingUnit struct {
	connectErr error
	enrolled   []uint
}

func (u *enrollingUnit) Connect(ctx context.Context, address string, port int, username, password string) error {
	return u.connectErr
}

func (u *enrollingUnit) RecentEvents(ctx context.Context, since time.Time) ([]biometric.Event, error) {
	return nil, nil
}

func (u *enrollingUnit) Disconnect() error { return nil }

func (u *enrollingUnit) EnrollFingerprint(ctx context.Context, memberID uint) error {
	u.enrolled = append(u.enrolled, memberID)
	return nil
}

// plainUnit is a Device with no enrollment capability.
type plainUnit struct{}

func (plainUnit) Connect(ctx context.Context, address string, port int, username, password string) error {
	return nil
}

func (plainUnit) RecentEvents(ctx context.Context, since time.Time) ([]biometric.Event, error) {
	return nil, nil
}

func (plainUnit) Disconnect() error { return nil }

func deviceHandlerWith(dev biometric.Device) *DeviceHandler {
	return &DeviceHandler{newDevice: func() biometric.Device { return dev }}
}

func seedDeviceRow(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&models.BiometricDevice{
		Name: "entrance", Address: "192.168.1.50", Port: 4370, Username: "admin", Password: "admin",
	}).Error)
}

func TestEnrollUsesUnitCapability(t *testing.T) {
	db := setupDB(t)
	seedDeviceRow(t, db)
	pkg := seedPackage(t, db, 1, 2500)
	m := seedMemberWithPackage(t, db, pkg)

	unit := &enrollingUnit{}
	rec := callWithParam(t, deviceHandlerWith(unit).Enroll, "memberId", jsonID(m.ID))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []uint{m.ID}, unit.enrolled)
}

func TestEnrollUnsupportedUnit(t *testing.T) {
	db := setupDB(t)
	seedDeviceRow(t, db)
	pkg := seedPackage(t, db, 1, 2500)
	m := seedMemberWithPackage(t, db, pkg)

	rec := callWithParam(t, deviceHandlerWith(plainUnit{}).Enroll, "memberId", jsonID(m.ID))

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Contains(t, rec.Body.String(), "ENROLL_UNSUPPORTED")
}

func TestConnectionTestRecordsOutcome(t *testing.T) {
	db := setupDB(t)
	seedDeviceRow(t, db)

	rec := postJSON(t, deviceHandlerWith(&enrollingUnit{}).TestConnection, "/admin/device/test", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var dev models.BiometricDevice
	require.NoError(t, database.DB.First(&dev).Error)
	assert.True(t, dev.Connected)

	rec = postJSON(t, deviceHandlerWith(&enrollingUnit{connectErr: context.DeadlineExceeded}).TestConnection, "/admin/device/test", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	require.NoError(t, database.DB.First(&dev).Error)
	assert.False(t, dev.Connected)
}
