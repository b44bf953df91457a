package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	app "github.com/kaiyuenlam/UniHaven/internal/app"
	"github.com/kaiyuenlam/UniHaven/internal/app/auth"
	"github.com/kaiyuenlam/UniHaven/internal/app/services/geocode"
)

type fixedLookup struct{ loc geocode.Location }

func (f fixedLookup) Locate(ctx context.Context, building string) (geocode.Location, error) {
	return f.loc, nil
}

func marshal(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(raw)
}

type env struct {
	handler http.Handler
	token   string
}

func newEnv(t *testing.T) *env {
	t.Helper()

	application, err := app.New(app.Stores{}, app.Options{
		Geocoder: fixedLookup{loc: geocode.Location{Latitude: 22.2838, Longitude: 114.1371, GeoAddress: "3228600480T20050430"}},
	}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	if err := application.Start(context.Background()); err != nil {
		t.Fatalf("start application: %v", err)
	}
	t.Cleanup(func() { _ = application.Stop(context.Background()) })

	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	handler, err := NewHandler(application, Config{Issuer: issuer, APITokens: []string{"ops-token"}})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	e := &env{handler: handler}

	resp := e.do(t, http.MethodPost, "/api/specialists", "", map[string]any{
		"name":     "Alice Wong",
		"email":    "alice@cedars.hku.hk",
		"password": "s3cret",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create specialist: %d %s", resp.Code, resp.Body.String())
	}
	resp = e.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "alice@cedars.hku.hk",
		"password": "s3cret",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("login: %d %s", resp.Code, resp.Body.String())
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &login); err != nil {
		t.Fatalf("unmarshal login: %v", err)
	}
	if login.Token == "" {
		t.Fatal("login returned empty token")
	}
	e.token = login.Token
	return e
}

func (e *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, marshal(t, body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	e.handler.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), dst); err != nil {
		t.Fatalf("unmarshal response %q: %v", resp.Body.String(), err)
	}
}

func (e *env) createAccommodation(t *testing.T, name string) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/accommodations", "", map[string]any{
		"name":           name,
		"building_name":  "Fortune Building",
		"type":           "APARTMENT",
		"num_bedrooms":   2,
		"num_beds":       3,
		"address":        "33 Bonham Road",
		"available_from": "2026-01-01T00:00:00Z",
		"available_to":   "2026-12-31T00:00:00Z",
		"monthly_rent":   9500,
		"owner":          map[string]any{"name": "Mr Chan", "email": "chan@example.com", "phone": "25550000"},
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create accommodation: %d %s", resp.Code, resp.Body.String())
	}
	var a map[string]any
	decode(t, resp, &a)
	return a["id"].(string)
}

func (e *env) createMember(t *testing.T) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/members", "", map[string]any{
		"name":  "Student Lee",
		"email": "lee@connect.hku.hk",
		"phone": "91234567",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create member: %d %s", resp.Code, resp.Body.String())
	}
	var m map[string]any
	decode(t, resp, &m)
	return m["id"].(string)
}

func TestHandlerLifecycle(t *testing.T) {
	e := newEnv(t)

	accomID := e.createAccommodation(t, "Flat 5C")
	memberID := e.createMember(t)

	resp := e.do(t, http.MethodGet, "/api/accommodations/"+accomID, "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("get accommodation: %d", resp.Code)
	}
	var accom map[string]any
	decode(t, resp, &accom)
	if accom["average_rating"] != nil {
		t.Fatalf("fresh accommodation has average rating %v", accom["average_rating"])
	}
	if accom["geo_address"] != "3228600480T20050430" {
		t.Fatalf("geo address not resolved: %v", accom["geo_address"])
	}
	if photos, ok := accom["photos"].([]any); !ok || len(photos) != 0 {
		t.Fatalf("fresh accommodation photos = %v, want []", accom["photos"])
	}

	resp = e.do(t, http.MethodPost, "/api/accommodations/"+accomID+"/photos", "", map[string]any{
		"url":     "https://cdn.example.com/p1.jpg",
		"caption": "living room",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("add photo: %d %s", resp.Code, resp.Body.String())
	}
	resp = e.do(t, http.MethodGet, "/api/accommodations/"+accomID, "", nil)
	decode(t, resp, &accom)
	photos, ok := accom["photos"].([]any)
	if !ok || len(photos) != 1 {
		t.Fatalf("photos = %v, want one entry", accom["photos"])
	}
	if photo, _ := photos[0].(map[string]any); photo["url"] != "https://cdn.example.com/p1.jpg" {
		t.Fatalf("photo payload = %v", photos[0])
	}

	resp = e.do(t, http.MethodPost, "/api/accommodations/"+accomID+"/reserve", "", map[string]any{
		"member_id":     memberID,
		"reserved_from": "2026-02-01T00:00:00Z",
		"reserved_to":   "2026-06-30T00:00:00Z",
		"contact_name":  "Student Lee",
		"contact_phone": "91234567",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("reserve: %d %s", resp.Code, resp.Body.String())
	}
	var res map[string]any
	decode(t, resp, &res)
	if res["status"] != "PENDING" {
		t.Fatalf("reservation status = %v", res["status"])
	}
	resID := res["id"].(string)

	// The reservation cascades a notification to every specialist.
	resp = e.do(t, http.MethodGet, "/api/notifications", e.token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("list notifications: %d %s", resp.Code, resp.Body.String())
	}
	var notes []map[string]any
	decode(t, resp, &notes)
	if len(notes) != 1 || notes[0]["type"] != "RESERVATION" {
		t.Fatalf("notifications = %v", notes)
	}

	for _, status := range []string{"CONFIRMED", "COMPLETED"} {
		resp = e.do(t, http.MethodPost, "/api/reservations/"+resID+"/update-status", e.token, map[string]any{"status": status})
		if resp.Code != http.StatusOK {
			t.Fatalf("update status %s: %d %s", status, resp.Code, resp.Body.String())
		}
	}

	resp = e.do(t, http.MethodPost, "/api/reservations/"+resID+"/rate", "", map[string]any{
		"score":   4,
		"comment": "Great location",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("rate: %d %s", resp.Code, resp.Body.String())
	}
	var rating map[string]any
	decode(t, resp, &rating)
	ratingID := rating["id"].(string)

	resp = e.do(t, http.MethodGet, "/api/ratings/pending", e.token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("pending ratings: %d", resp.Code)
	}
	var pending []map[string]any
	decode(t, resp, &pending)
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}

	resp = e.do(t, http.MethodPost, "/api/ratings/"+ratingID+"/moderate", e.token, map[string]any{
		"approve": true,
		"note":    "looks genuine",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("moderate: %d %s", resp.Code, resp.Body.String())
	}

	resp = e.do(t, http.MethodGet, "/api/accommodations/"+accomID, "", nil)
	decode(t, resp, &accom)
	if avg, ok := accom["average_rating"].(float64); !ok || avg != 4 {
		t.Fatalf("average rating = %v", accom["average_rating"])
	}

	resp = e.do(t, http.MethodGet, "/api/logs", e.token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("logs: %d %s", resp.Code, resp.Body.String())
	}
	var entries []map[string]any
	decode(t, resp, &entries)
	if len(entries) == 0 {
		t.Fatal("expected audit entries after the lifecycle")
	}

	resp = e.do(t, http.MethodGet, "/api/logs?source=http&limit=5", e.token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("http logs: %d", resp.Code)
	}
	var requests []map[string]any
	decode(t, resp, &requests)
	if len(requests) == 0 || len(requests) > 5 {
		t.Fatalf("http log entries = %d", len(requests))
	}
}

func TestHandlerCancelFreesAccommodation(t *testing.T) {
	e := newEnv(t)
	accomID := e.createAccommodation(t, "Flat 7A")
	memberID := e.createMember(t)

	resp := e.do(t, http.MethodPost, "/api/accommodations/"+accomID+"/reserve", "", map[string]any{
		"member_id":     memberID,
		"reserved_from": "2026-02-01T00:00:00Z",
		"reserved_to":   "2026-06-30T00:00:00Z",
		"contact_name":  "Student Lee",
		"contact_phone": "91234567",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("reserve: %d %s", resp.Code, resp.Body.String())
	}
	var res map[string]any
	decode(t, resp, &res)
	resID := res["id"].(string)

	// Double booking is rejected while the reservation is pending.
	resp = e.do(t, http.MethodPost, "/api/accommodations/"+accomID+"/reserve", "", map[string]any{
		"member_id":     memberID,
		"reserved_from": "2026-03-01T00:00:00Z",
		"reserved_to":   "2026-04-30T00:00:00Z",
		"contact_name":  "Student Lee",
		"contact_phone": "91234567",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("double booking: %d, want 400", resp.Code)
	}

	resp = e.do(t, http.MethodPost, "/api/reservations/"+resID+"/cancel", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("cancel: %d %s", resp.Code, resp.Body.String())
	}

	resp = e.do(t, http.MethodGet, "/api/accommodations/"+accomID, "", nil)
	var accom map[string]any
	decode(t, resp, &accom)
	if accom["is_available"] != true {
		t.Fatalf("accommodation not freed after cancel: %v", accom["is_available"])
	}
}

func TestHandlerSearch(t *testing.T) {
	e := newEnv(t)
	e.createAccommodation(t, "Flat 5C")

	resp := e.do(t, http.MethodPost, "/api/campuses", "", map[string]any{
		"name":      "Main Campus",
		"latitude":  22.2830,
		"longitude": 114.1371,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create campus: %d %s", resp.Code, resp.Body.String())
	}
	var campus map[string]any
	decode(t, resp, &campus)

	resp = e.do(t, http.MethodGet, "/api/accommodations/search?type=apartment&campus_id="+campus["id"].(string), "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("search: %d %s", resp.Code, resp.Body.String())
	}
	var results []map[string]any
	decode(t, resp, &results)
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if _, ok := results[0]["distance"].(float64); !ok {
		t.Fatalf("missing distance: %v", results[0])
	}

	resp = e.do(t, http.MethodGet, "/api/accommodations/search?type=HOUSE", "", nil)
	decode(t, resp, &results)
	if len(results) != 0 {
		t.Fatalf("house results = %d, want 0", len(results))
	}

	resp = e.do(t, http.MethodGet, "/api/accommodations/search?campus_id=missing", "", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("unknown campus: %d, want 404", resp.Code)
	}

	resp = e.do(t, http.MethodGet, "/api/accommodations/search?available_from=bogus", "", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("bad date: %d, want 400", resp.Code)
	}
}

func TestHandlerAuth(t *testing.T) {
	e := newEnv(t)
	accomID := e.createAccommodation(t, "Flat 5C")

	if resp := e.do(t, http.MethodGet, "/api/logs", "", nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("logs without token: %d, want 401", resp.Code)
	}
	if resp := e.do(t, http.MethodPost, "/api/accommodations/"+accomID+"/mark-unavailable", "", nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("mark-unavailable without token: %d, want 401", resp.Code)
	}
	if resp := e.do(t, http.MethodGet, "/api/logs", "garbage", nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: %d, want 401", resp.Code)
	}

	// Configured static API tokens pass alongside specialist JWTs.
	if resp := e.do(t, http.MethodGet, "/api/logs", "ops-token", nil); resp.Code != http.StatusOK {
		t.Fatalf("static api token: %d, want 200", resp.Code)
	}

	resp := e.do(t, http.MethodPost, "/api/accommodations/"+accomID+"/mark-unavailable", e.token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("mark-unavailable: %d %s", resp.Code, resp.Body.String())
	}
	resp = e.do(t, http.MethodGet, "/api/accommodations/unavailable", e.token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("unavailable: %d %s", resp.Code, resp.Body.String())
	}
	var list []map[string]any
	decode(t, resp, &list)
	if len(list) != 1 {
		t.Fatalf("unavailable = %d, want 1", len(list))
	}

	resp = e.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "alice@cedars.hku.hk",
		"password": "wrong",
	})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: %d, want 401", resp.Code)
	}
}

func TestHandlerEmptyListsRenderAsArrays(t *testing.T) {
	e := newEnv(t)

	for _, tc := range []struct {
		path  string
		token string
	}{
		{"/api/reservations", ""},
		{"/api/ratings", ""},
		{"/api/notifications", "ops-token"},
	} {
		resp := e.do(t, http.MethodGet, tc.path, tc.token, nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: %d %s", tc.path, resp.Code, resp.Body.String())
		}
		if body := strings.TrimSpace(resp.Body.String()); body != "[]" {
			t.Fatalf("%s body = %q, want []", tc.path, body)
		}
	}
}

func TestHandlerValidation(t *testing.T) {
	e := newEnv(t)

	resp := e.do(t, http.MethodPost, "/api/members", "", map[string]any{
		"name":    "Student Lee",
		"email":   "lee@connect.hku.hk",
		"unknown": true,
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: %d, want 400", resp.Code)
	}

	if resp := e.do(t, http.MethodGet, "/api/accommodations/missing", "", nil); resp.Code != http.StatusNotFound {
		t.Fatalf("missing accommodation: %d, want 404", resp.Code)
	}

	resp = e.do(t, http.MethodPost, "/api/accommodations/missing/reserve", "", map[string]any{
		"member_id":     "whoever",
		"reserved_from": "2026-02-01T00:00:00Z",
		"reserved_to":   "2026-06-30T00:00:00Z",
		"contact_name":  "x",
		"contact_phone": "y",
	})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("reserve missing accommodation: %d, want 404", resp.Code)
	}

	if resp := e.do(t, http.MethodGet, "/healthz", "", nil); resp.Code != http.StatusOK {
		t.Fatalf("healthz: %d", resp.Code)
	}

	resp = e.do(t, http.MethodPost, "/api/accommodations/location-data", "", map[string]any{
		"building_name": "Fortune Building",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("location-data: %d %s", resp.Code, resp.Body.String())
	}
	var loc map[string]any
	decode(t, resp, &loc)
	if loc["latitude"] != 22.2838 {
		t.Fatalf("latitude = %v", loc["latitude"])
	}
}
