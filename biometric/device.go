package biometric

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Event is one identification event reported by the access-control unit.
// SubjectID carries the member ID the unit matched the fingerprint to; the
// unit sends "0" (or empty) for unrecognized prints.
type Event struct {
	SubjectID    string    `json:"subject_id"`
	CategoryCode int       `json:"category_code"`
	Timestamp    time.Time `json:"timestamp"`
}

// Event categories the identification flow accepts.
const (
	CategoryAccessGranted = 1
	CategoryAlarmMatch    = 5
)

var acceptedCategories = map[int]bool{
	CategoryAccessGranted: true,
	CategoryAlarmMatch:    true,
}

// Device is the capability the poller needs from the unit. Implementations
// own the session; Connect must be called before RecentEvents.
type Device interface {
	Connect(ctx context.Context, address string, port int, username, password string) error
	RecentEvents(ctx context.Context, since time.Time) ([]Event, error)
	Disconnect() error
}

// Enroller is implemented by units that can capture a new fingerprint for a
// member at the device itself.
type Enroller interface {
	EnrollFingerprint(ctx context.Context, memberID uint) error
}

// HTTPDevice talks to the vendor unit's HTTP API. Connect opens a session
// and keeps the returned token for subsequent calls.
type HTTPDevice struct {
	client  *http.Client
	baseURL string
	token   string
}

func NewHTTPDevice() *HTTPDevice {
	return &HTTPDevice{client: &http.Client{Timeout: 10 * time.Second}}
}

func (d *HTTPDevice) Connect(ctx context.Context, address string, port int, username, password string) error {
	d.baseURL = fmt.Sprintf("http://%s:%d", address, port)

	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/api/session", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("device unreachable: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		Token   string `json:"token"`
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)

	if resp.StatusCode != http.StatusOK {
		if out.Message != "" {
			return fmt.Errorf("device: %s", out.Message)
		}
		return fmt.Errorf("device: session rejected (HTTP %d)", resp.StatusCode)
	}
	d.token = out.Token
	return nil
}

func (d *HTTPDevice) RecentEvents(ctx context.Context, since time.Time) ([]Event, error) {
	url := d.baseURL + "/api/events?since=" + since.UTC().Format(time.RFC3339)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+d.token)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("device: event query failed (HTTP %d)", resp.StatusCode)
	}

	var out struct {
		Events []Event `json:"events"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

func (d *HTTPDevice) EnrollFingerprint(ctx context.Context, memberID uint) error {
	body, _ := json.Marshal(map[string]string{"subject_id": strconv.FormatUint(uint64(memberID), 10)})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/api/enroll", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.token)

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("device: enroll failed (HTTP %d)", resp.StatusCode)
	}
	return nil
}

func (d *HTTPDevice) Disconnect() error {
	if d.token == "" {
		return nil
	}
	req, err := http.NewRequest(http.MethodDelete, d.baseURL+"/api/session", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+d.token)
	d.token = ""

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
