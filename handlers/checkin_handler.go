package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shehan8461/Gym-Management-System-sub000/biometric"
	"github.com/shehan8461/Gym-Management-System-sub000/database"
	"github.com/shehan8461/Gym-Management-System-sub000/models"
)

// CheckinHandler drives the identification poller and pushes outcomes to the
// live feed.
type CheckinHandler struct {
	Poller *biometric.Poller
	Hub    *LiveHub
}

func NewCheckinHandler(p *biometric.Poller, hub *LiveHub) *CheckinHandler {
	return &CheckinHandler{Poller: p, Hub: hub}
}

// POST /checkin/listen toggles the session: it starts listening, or cancels
// the session in flight.
func (h *CheckinHandler) Listen(c echo.Context) error {
	started := h.Poller.Toggle(h.report)
	h.Hub.Broadcast(LiveEvent{Type: "listening", Listening: &started})
	return c.JSON(http.StatusOK, map[string]any{"listening": started})
}

// GET /checkin/status
func (h *CheckinHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"listening": h.Poller.Listening()})
}

func (h *CheckinHandler) report(res biometric.Result) {
	// every report ends the session, tell the screens listening is over
	off := false
	defer h.Hub.Broadcast(LiveEvent{Type: "listening", Listening: &off})

	if res.Err != nil {
		code := "DEVICE_ERROR"
		var ce *biometric.ConnectError
		switch {
		case errors.Is(res.Err, biometric.ErrNotConfigured):
			code = "DEVICE_NOT_CONFIGURED"
		case errors.Is(res.Err, biometric.ErrMemberNotFound):
			code = "MEMBER_NOT_FOUND"
		case errors.As(res.Err, &ce):
			code = "DEVICE_CONNECT_FAILED"
		}
		h.Hub.Broadcast(LiveEvent{Type: "error", Error: code, Message: res.Err.Error()})
		return
	}

	m := res.Match.Member
	rec, _, err := checkInMember(database.DB, m.ID, models.AttendanceSourceBiometric)
	if err != nil {
		log.Printf("[checkin] attendance write failed for member %d: %v", m.ID, err)
	} else {
		log.Printf("[checkin] %s (%s) checked in", m.FullName(), m.MemberCode)
	}
	h.Hub.Broadcast(LiveEvent{
		Type:       "match",
		Member:     &m,
		Recent:     res.Match.Recent,
		Attendance: rec,
	})
}
