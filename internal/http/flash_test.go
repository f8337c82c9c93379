package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFlashRoundTrip(t *testing.T) {
	rr := httptest.NewRecorder()
	setFlash(rr, []Alert{{Title: "Success", Message: "Transaction created successfully"}})

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d", len(cookies))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	out := httptest.NewRecorder()
	alerts := takeFlash(out, req)

	if len(alerts) != 1 || alerts[0].Message != "Transaction created successfully" {
		t.Fatalf("alerts = %+v", alerts)
	}
	cleared := out.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Errorf("flash cookie not cleared: %+v", cleared)
	}
}

func TestFlashIgnoresMalformedCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookieName, Value: "%%%"})

	if alerts := takeFlash(httptest.NewRecorder(), req); alerts != nil {
		t.Errorf("alerts = %+v", alerts)
	}
}

func TestSetFlashWithoutAlerts(t *testing.T) {
	rr := httptest.NewRecorder()
	setFlash(rr, nil)
	if len(rr.Result().Cookies()) != 0 {
		t.Error("no cookie expected")
	}
}

func TestAlertCollector(t *testing.T) {
	c := &alertCollector{}
	c.Alert("Error", "Failed to delete transaction")
	c.Alert("Transaction deleted successfully", "")

	got := c.Alerts()
	if len(got) != 2 || got[1].Title != "Transaction deleted successfully" {
		t.Errorf("alerts = %+v", got)
	}
}
