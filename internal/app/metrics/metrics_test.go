package metrics

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"/", "/"},
		{"/healthz", "/healthz"},
		{"/api", "/api"},
		{"/api/accommodations", "/api/accommodations"},
		{"/api/accommodations/abc-123", "/api/accommodations/:id"},
		{"/api/accommodations/abc-123/reserve", "/api/accommodations/:id/reserve"},
		{"/api/accommodations/search", "/api/accommodations/search"},
		{"/api/accommodations/location-data", "/api/accommodations/location-data"},
		{"/api/accommodations/unavailable", "/api/accommodations/unavailable"},
		{"/api/ratings/pending", "/api/ratings/pending"},
		{"/api/ratings/abc-123/moderate", "/api/ratings/:id/moderate"},
		{"/api/reservations/abc-123/update-status", "/api/reservations/:id/update-status"},
	}
	for _, tc := range cases {
		if got := canonicalPath(tc.in); got != tc.want {
			t.Fatalf("canonicalPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
