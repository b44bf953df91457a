package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleResponse = `{
  "SuggestedAddress": [
    {
      "Address": {
        "PremisesAddress": {
          "GeoAddress": "3228600480T20050430",
          "GeospatialInformation": {
            "Latitude": 22.28405,
            "Longitude": 114.13784,
            "Northing": 815374,
            "Easting": 833775
          }
        }
      }
    }
  ]
}`

func TestHTTPLookupLocate(t *testing.T) {
	var gotQuery, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotAccept = r.Header.Get("Accept")
		if r.URL.Query().Get("n") != "1" {
			t.Errorf("n = %q, want 1", r.URL.Query().Get("n"))
		}
		fmt.Fprint(w, sampleResponse)
	}))
	defer srv.Close()

	lookup, err := NewHTTPLookup(srv.Client(), srv.URL, nil)
	if err != nil {
		t.Fatalf("new lookup: %v", err)
	}

	loc, err := lookup.Locate(context.Background(), "Main Building")
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if gotQuery != "Main Building" {
		t.Fatalf("query = %q, want Main Building", gotQuery)
	}
	if gotAccept != "application/json" {
		t.Fatalf("accept = %q, want application/json", gotAccept)
	}
	if loc.Latitude != 22.28405 || loc.Longitude != 114.13784 {
		t.Fatalf("unexpected coordinates %v", loc)
	}
	if loc.GeoAddress != "3228600480T20050430" {
		t.Fatalf("geo address = %q", loc.GeoAddress)
	}
}

func TestHTTPLookupNoResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"SuggestedAddress": []}`)
	}))
	defer srv.Close()

	lookup, err := NewHTTPLookup(srv.Client(), srv.URL, nil)
	if err != nil {
		t.Fatalf("new lookup: %v", err)
	}
	if _, err := lookup.Locate(context.Background(), "Nowhere Tower"); err == nil {
		t.Fatal("expected error for empty suggestion list")
	}
}

func TestHTTPLookupEmptyBuilding(t *testing.T) {
	lookup, err := NewHTTPLookup(nil, "http://example.invalid", nil)
	if err != nil {
		t.Fatalf("new lookup: %v", err)
	}
	if _, err := lookup.Locate(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank building name")
	}
}

type countingLookup struct {
	calls int
	loc   Location
}

func (c *countingLookup) Locate(ctx context.Context, building string) (Location, error) {
	c.calls++
	return c.loc, nil
}

func TestCachedLookupReusesLocalHit(t *testing.T) {
	inner := &countingLookup{loc: Location{Latitude: 22.3, Longitude: 114.17, GeoAddress: "X"}}
	cached := NewCachedLookup(inner, nil, 0, nil)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		loc, err := cached.Locate(ctx, "Chi Wah Learning Commons")
		if err != nil {
			t.Fatalf("locate %d: %v", i, err)
		}
		if loc != inner.loc {
			t.Fatalf("locate %d: got %v", i, loc)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("inner calls = %d, want 1", inner.calls)
	}
}
