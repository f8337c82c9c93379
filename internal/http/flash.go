package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"
)

const flashCookieName = "finapp_flash"

// Alert is a modal-style message shown once on the next rendered page.
type Alert struct {
	Title   string `json:"t"`
	Message string `json:"m,omitempty"`
}

// alertCollector records alerts raised while handling one request. It
// satisfies ledger.Notifier.
type alertCollector struct {
	mu     sync.Mutex
	alerts []Alert
}

func (c *alertCollector) Alert(title, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alerts = append(c.alerts, Alert{Title: title, Message: message})
}

func (c *alertCollector) Alerts() []Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Alert(nil), c.alerts...)
}

// setFlash carries alerts across a redirect.
func setFlash(w http.ResponseWriter, alerts []Alert) {
	if len(alerts) == 0 {
		return
	}
	data, err := json.Marshal(alerts)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// takeFlash returns and clears pending alerts. Malformed cookies are
// dropped.
func takeFlash(w http.ResponseWriter, r *http.Request) []Alert {
	c, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteLaxMode})

	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var alerts []Alert
	if err := json.Unmarshal(data, &alerts); err != nil {
		return nil
	}
	return alerts
}
