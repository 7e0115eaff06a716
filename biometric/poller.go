package biometric

import (
	"context"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shehan8461/Gym-Management-System-sub000/models"
)

const (
	pollInterval = time.Second
	// The checkpoint starts slightly before the session so events landing
	// just before the first poll are not missed.
	checkpointLookback    = 5 * time.Second
	recentAttendanceLimit = 20
)

var (
	// ErrNotConfigured: no device row exists, the session never starts.
	ErrNotConfigured = errors.New("no biometric device configured")
	// ErrMemberNotFound: a qualifying event carried an ID that matches no
	// member record. The session ends; the caller may re-arm.
	ErrMemberNotFound = errors.New("no member matches the device event")
)

// ConnectError wraps a device connect/transport failure so callers can tell
// it apart from a resolution miss. It keeps the device's own message text.
type ConnectError struct {
	Err error
}

func (e *ConnectError) Error() string { return "device connection failed: " + e.Err.Error() }
func (e *ConnectError) Unwrap() error { return e.Err }

// Match is the snapshot handed to the caller when an identification event
// resolves to a member.
type Match struct {
	Member models.Member
	Recent []models.Attendance // most recent first
}

// Result is delivered exactly once per listening session. A cancelled
// session delivers nothing.
type Result struct {
	Match *Match
	Err   error
}

// Poller owns at most one listening session against the configured device.
// The zero value is not usable; use NewPoller.
type Poller struct {
	db  *gorm.DB
	dev Device

	interval time.Duration
	lookback time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	gen    uint64
}

func NewPoller(db *gorm.DB, dev Device) *Poller {
	return &Poller{
		db:       db,
		dev:      dev,
		interval: pollInterval,
		lookback: checkpointLookback,
	}
}

// Listening reports whether a session is currently active.
func (p *Poller) Listening() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Toggle starts a listening session, or cancels the active one (a second
// start request means "stop", not a queued session). It returns true when a
// new session was started. report runs on the session goroutine and is
// invoked at most once.
func (p *Poller) Toggle(report func(Result)) bool {
	p.mu.Lock()
	if p.cancel != nil {
		cancel := p.cancel
		p.cancel = nil
		p.mu.Unlock()
		cancel()
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	prev := p.done
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	go func() {
		defer close(done)
		// the device handle is shared; a cancelled session must finish
		// disconnecting before this one connects
		if prev != nil {
			<-prev
		}
		if ctx.Err() != nil {
			return
		}
		p.run(ctx, gen, report)
	}()
	return true
}

// Stop cancels the active session, if any.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (p *Poller) run(ctx context.Context, gen uint64, report func(Result)) {
	defer func() {
		p.mu.Lock()
		// a newer session may have started after this one was cancelled;
		// only clear state that still belongs to this session
		if p.gen == gen {
			p.cancel = nil
		}
		p.mu.Unlock()
	}()

	var dev models.BiometricDevice
	if err := p.db.First(&dev).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrNotConfigured
		}
		p.deliver(ctx, report, Result{Err: err})
		return
	}

	if err := p.dev.Connect(ctx, dev.Address, dev.Port, dev.Username, dev.Password); err != nil {
		p.deliver(ctx, report, Result{Err: &ConnectError{Err: err}})
		return
	}
	defer p.dev.Disconnect()

	log.Printf("[biometric] listening on %s:%d", dev.Address, dev.Port)

	checkpoint := time.Now().Add(-p.lookback)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		// The tick and a cancellation can race; cancellation wins.
		if ctx.Err() != nil {
			return
		}

		events, err := p.dev.RecentEvents(ctx, checkpoint)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.deliver(ctx, report, Result{Err: &ConnectError{Err: err}})
			return
		}
		if len(events) == 0 {
			continue
		}
		checkpoint = time.Now()

		id, ok := firstQualifying(events)
		if !ok {
			continue
		}

		match, err := p.resolve(id)
		if err != nil {
			p.deliver(ctx, report, Result{Err: err})
			return
		}
		p.deliver(ctx, report, Result{Match: match})
		return
	}
}

// deliver hands the result to the caller unless the session was cancelled;
// cancellation is a silent exit, never a report.
func (p *Poller) deliver(ctx context.Context, report func(Result), res Result) {
	if ctx.Err() != nil {
		return
	}
	report(res)
}

// firstQualifying scans events in device order and returns the member ID of
// the first usable one: non-empty, non-"0", numeric subject in an accepted
// category. Unusable events are skipped, never fatal.
func firstQualifying(events []Event) (uint, bool) {
	for _, ev := range events {
		if ev.SubjectID == "" || ev.SubjectID == "0" {
			continue
		}
		if !acceptedCategories[ev.CategoryCode] {
			continue
		}
		id, err := strconv.ParseUint(ev.SubjectID, 10, 32)
		if err != nil {
			continue
		}
		return uint(id), true
	}
	return 0, false
}

func (p *Poller) resolve(id uint) (*Match, error) {
	var m models.Member
	if err := p.db.Preload("Package").First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	var recent []models.Attendance
	if err := p.db.Where("member_id = ?", m.ID).
		Order("check_in_date DESC, check_in_time DESC, id DESC").
		Limit(recentAttendanceLimit).
		Find(&recent).Error; err != nil {
		return nil, err
	}
	return &Match{Member: m, Recent: recent}, nil
}
