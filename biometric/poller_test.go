package biometric

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shehan8461/Gym-Management-System-sub000/models"
)

type fakeDevice struct {
	mu         sync.Mutex
	connectErr error
	eventsErr  error
	batches    [][]Event
	calls      int
}

func (d *fakeDevice) Connect(ctx context.Context, address string, port int, username, password string) error {
	return d.connectErr
}

func (d *fakeDevice) RecentEvents(ctx context.Context, since time.Time) ([]Event, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.eventsErr != nil {
		return nil, d.eventsErr
	}
	if len(d.batches) == 0 {
		return nil, nil
	}
	b := d.batches[0]
	d.batches = d.batches[1:]
	return b, nil
}

func (d *fakeDevice) Disconnect() error { return nil }

func (d *fakeDevice) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.MembershipPackage{},
		&models.Member{},
		&models.Attendance{},
		&models.BiometricDevice{},
	))
	return db
}

func seedDevice(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&models.BiometricDevice{
		Name: "entrance", Address: "192.168.1.50", Port: 4370, Username: "admin", Password: "admin",
	}).Error)
}

func seedMember42(t *testing.T, db *gorm.DB) {
	t.Helper()
	pkg := models.MembershipPackage{Name: "Monthly", DurationMonths: 1, Price: 2500, Active: true}
	require.NoError(t, db.Create(&pkg).Error)
	m := models.Member{
		ID: 42, MemberCode: "M042", FirstName: "Anan", LastName: "S.",
		RegisteredAt: time.Now(), Active: true, PackageID: &pkg.ID,
	}
	require.NoError(t, db.Create(&m).Error)
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.Attendance{
			MemberID:    42,
			CheckInDate: time.Date(2025, 3, 1+i, 0, 0, 0, 0, time.UTC),
			CheckInTime: "08:15",
			Source:      models.AttendanceSourceBiometric,
		}).Error)
	}
}

func newTestPoller(db *gorm.DB, dev Device) *Poller {
	p := NewPoller(db, dev)
	p.interval = 5 * time.Millisecond
	p.lookback = 0
	return p
}

func awaitResult(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no result delivered")
		return Result{}
	}
}

func TestPollerReportsFirstQualifyingMatch(t *testing.T) {
	db := newTestDB(t)
	seedDevice(t, db)
	seedMember42(t, db)

	dev := &fakeDevice{batches: [][]Event{{
		{SubjectID: "0", CategoryCode: CategoryAccessGranted},
		{SubjectID: "42", CategoryCode: CategoryAlarmMatch},
	}}}
	p := newTestPoller(db, dev)

	ch := make(chan Result, 1)
	require.True(t, p.Toggle(func(r Result) { ch <- r }))

	res := awaitResult(t, ch)
	require.NoError(t, res.Err)
	require.NotNil(t, res.Match)
	assert.Equal(t, uint(42), res.Match.Member.ID)
	assert.NotNil(t, res.Match.Member.Package)
	require.Len(t, res.Match.Recent, 3)
	// most recent first
	assert.True(t, res.Match.Recent[0].CheckInDate.After(res.Match.Recent[2].CheckInDate))

	assert.Eventually(t, func() bool { return !p.Listening() }, time.Second, 5*time.Millisecond)
}

func TestPollerIgnoresUnacceptedCategory(t *testing.T) {
	db := newTestDB(t)
	seedDevice(t, db)
	seedMember42(t, db)

	dev := &fakeDevice{batches: [][]Event{
		{{SubjectID: "42", CategoryCode: 3}}, // wrong category: keep polling
		{{SubjectID: "42", CategoryCode: CategoryAccessGranted}},
	}}
	p := newTestPoller(db, dev)

	ch := make(chan Result, 1)
	p.Toggle(func(r Result) { ch <- r })

	res := awaitResult(t, ch)
	require.NoError(t, res.Err)
	assert.Equal(t, uint(42), res.Match.Member.ID)
	assert.GreaterOrEqual(t, dev.callCount(), 2)
}

func TestPollerIgnoresNonNumericSubject(t *testing.T) {
	db := newTestDB(t)
	seedDevice(t, db)
	seedMember42(t, db)

	dev := &fakeDevice{batches: [][]Event{
		{{SubjectID: "ABCD", CategoryCode: CategoryAccessGranted}},
		{{SubjectID: "42", CategoryCode: CategoryAccessGranted}},
	}}
	p := newTestPoller(db, dev)

	ch := make(chan Result, 1)
	p.Toggle(func(r Result) { ch <- r })

	res := awaitResult(t, ch)
	require.NoError(t, res.Err)
	assert.Equal(t, uint(42), res.Match.Member.ID)
}

func TestPollerMemberNotFound(t *testing.T) {
	db := newTestDB(t)
	seedDevice(t, db)

	dev := &fakeDevice{batches: [][]Event{
		{{SubjectID: "99", CategoryCode: CategoryAccessGranted}},
	}}
	p := newTestPoller(db, dev)

	ch := make(chan Result, 1)
	p.Toggle(func(r Result) { ch <- r })

	res := awaitResult(t, ch)
	assert.ErrorIs(t, res.Err, ErrMemberNotFound)
	assert.Nil(t, res.Match)
	assert.Eventually(t, func() bool { return !p.Listening() }, time.Second, 5*time.Millisecond)
}

func TestPollerNotConfigured(t *testing.T) {
	db := newTestDB(t) // no device row
	p := newTestPoller(db, &fakeDevice{})

	ch := make(chan Result, 1)
	p.Toggle(func(r Result) { ch <- r })

	res := awaitResult(t, ch)
	assert.ErrorIs(t, res.Err, ErrNotConfigured)
}

func TestPollerConnectFailure(t *testing.T) {
	db := newTestDB(t)
	seedDevice(t, db)

	dev := &fakeDevice{connectErr: errors.New("credentials rejected")}
	p := newTestPoller(db, dev)

	ch := make(chan Result, 1)
	p.Toggle(func(r Result) { ch <- r })

	res := awaitResult(t, ch)
	var ce *ConnectError
	require.ErrorAs(t, res.Err, &ce)
	assert.Contains(t, res.Err.Error(), "credentials rejected")
	assert.Zero(t, dev.callCount(), "no polling after a failed connect")
}

func TestPollerTransportFailureEndsSession(t *testing.T) {
	db := newTestDB(t)
	seedDevice(t, db)

	dev := &fakeDevice{eventsErr: errors.New("connection reset")}
	p := newTestPoller(db, dev)

	ch := make(chan Result, 1)
	p.Toggle(func(r Result) { ch <- r })

	res := awaitResult(t, ch)
	var ce *ConnectError
	require.ErrorAs(t, res.Err, &ce)
	assert.Eventually(t, func() bool { return !p.Listening() }, time.Second, 5*time.Millisecond)
}

func TestPollerToggleCancelsSilently(t *testing.T) {
	db := newTestDB(t)
	seedDevice(t, db)

	dev := &fakeDevice{} // always zero events
	p := newTestPoller(db, dev)

	ch := make(chan Result, 1)
	require.True(t, p.Toggle(func(r Result) { ch <- r }))

	// let a few polls happen, then toggle again to cancel
	require.Eventually(t, func() bool { return dev.callCount() >= 2 }, time.Second, time.Millisecond)
	require.False(t, p.Toggle(func(r Result) { ch <- r }))

	assert.Eventually(t, func() bool { return !p.Listening() }, time.Second, 5*time.Millisecond)

	// the device must not be polled again after cancellation (allow an
	// in-flight request to drain first)
	time.Sleep(20 * time.Millisecond)
	settled := dev.callCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, dev.callCount())

	// and nothing must be reported
	select {
	case r := <-ch:
		t.Fatalf("unexpected result after cancellation: %+v", r)
	case <-time.After(50 * time.Millisecond):
	}
}

// slowTeardownDevice holds its first poll open until released and drops the
// session on Disconnect, so a restart that does not wait for the previous
// session's teardown would see its fresh connection killed.
type slowTeardownDevice struct {
	mu      sync.Mutex
	invalid bool
	blocked bool
	release chan struct{}
	calls   int
	batches [][]Event
}

func (d *slowTeardownDevice) Connect(ctx context.Context, address string, port int, username, password string) error {
	d.mu.Lock()
	d.invalid = false
	d.mu.Unlock()
	return nil
}

func (d *slowTeardownDevice) Disconnect() error {
	d.mu.Lock()
	d.invalid = true
	d.mu.Unlock()
	return nil
}

func (d *slowTeardownDevice) RecentEvents(ctx context.Context, since time.Time) ([]Event, error) {
	d.mu.Lock()
	d.calls++
	first := !d.blocked
	d.blocked = true
	d.mu.Unlock()
	if first {
		<-d.release
		return nil, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.invalid {
		return nil, errors.New("session token invalidated")
	}
	if len(d.batches) == 0 {
		return nil, nil
	}
	b := d.batches[0]
	d.batches = d.batches[1:]
	return b, nil
}

func (d *slowTeardownDevice) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func TestPollerRestartWaitsForTeardown(t *testing.T) {
	db := newTestDB(t)
	seedDevice(t, db)
	seedMember42(t, db)

	dev := &slowTeardownDevice{
		release: make(chan struct{}),
		batches: [][]Event{{{SubjectID: "42", CategoryCode: CategoryAccessGranted}}},
	}
	p := newTestPoller(db, dev)

	chA := make(chan Result, 1)
	require.True(t, p.Toggle(func(r Result) { chA <- r }))
	require.Eventually(t, func() bool { return dev.callCount() >= 1 }, time.Second, time.Millisecond)

	// cancel while the first poll is still in flight, then restart at once
	require.False(t, p.Toggle(func(r Result) { chA <- r }))
	chB := make(chan Result, 1)
	require.True(t, p.Toggle(func(r Result) { chB <- r }))

	// let the old session's poll drain and its teardown run
	close(dev.release)

	res := awaitResult(t, chB)
	require.NoError(t, res.Err, "new session must not be killed by the old session's teardown")
	require.NotNil(t, res.Match)
	assert.Equal(t, uint(42), res.Match.Member.ID)

	select {
	case r := <-chA:
		t.Fatalf("cancelled session reported: %+v", r)
	default:
	}
}

func TestPollerStopWithoutSession(t *testing.T) {
	p := newTestPoller(newTestDB(t), &fakeDevice{})
	p.Stop() // no-op
	assert.False(t, p.Listening())
}
