// Package httpapi exposes the UniHaven REST API.
package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	app "github.com/kaiyuenlam/UniHaven/internal/app"
	"github.com/kaiyuenlam/UniHaven/internal/app/auth"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/accommodation"
	"github.com/kaiyuenlam/UniHaven/internal/app/domain/reservation"
	"github.com/kaiyuenlam/UniHaven/internal/app/metrics"
	accommodationsvc "github.com/kaiyuenlam/UniHaven/internal/app/services/accommodations"
	specialistsvc "github.com/kaiyuenlam/UniHaven/internal/app/services/specialists"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app       *app.Application
	issuer    *auth.Issuer
	apiTokens map[string]bool
	requests  *requestLog
}

// Config carries optional handler dependencies.
type Config struct {
	// Issuer signs specialist login tokens. Nil disables /auth/login.
	Issuer *auth.Issuer
	// APITokens are static bearer tokens accepted on management endpoints
	// alongside specialist JWTs, for machine clients.
	APITokens []string
	// RequestLogSize bounds the in-memory HTTP request log.
	RequestLogSize int
	// RequestLogPath optionally appends request entries as JSONL.
	RequestLogPath string
}

// NewHandler returns a mux exposing the REST API.
func NewHandler(application *app.Application, cfg Config) (http.Handler, error) {
	sink, err := newFileRequestSink(cfg.RequestLogPath)
	if err != nil {
		return nil, fmt.Errorf("open request log: %w", err)
	}

	tokens := make(map[string]bool)
	for _, t := range cfg.APITokens {
		if t = strings.TrimSpace(t); t != "" {
			tokens[t] = true
		}
	}

	h := &handler{
		app:       application,
		issuer:    cfg.Issuer,
		apiTokens: tokens,
		requests:  newRequestLog(cfg.RequestLogSize, sink),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/campuses", h.campuses)
	mux.HandleFunc("/api/campuses/", h.campusResources)
	mux.HandleFunc("/api/members", h.members)
	mux.HandleFunc("/api/members/", h.memberResources)
	mux.HandleFunc("/api/specialists", h.specialists)
	mux.HandleFunc("/api/specialists/", h.specialistResources)
	mux.HandleFunc("/api/accommodations", h.accommodations)
	mux.HandleFunc("/api/accommodations/", h.accommodationResources)
	mux.HandleFunc("/api/reservations", h.reservations)
	mux.HandleFunc("/api/reservations/", h.reservationResources)
	mux.HandleFunc("/api/ratings", h.ratings)
	mux.HandleFunc("/api/ratings/", h.ratingResources)
	mux.HandleFunc("/api/notifications", h.notifications)
	mux.HandleFunc("/api/notifications/", h.notificationResources)
	mux.HandleFunc("/api/logs", h.logs)
	mux.HandleFunc("/auth/login", h.login)
	mux.HandleFunc("/healthz", h.healthz)
	return h.requests.middleware(mux), nil
}

// pathParts splits the request path after the given prefix.
func pathParts(path, prefix string) []string {
	trimmed := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// requireSpecialist verifies the bearer token on management endpoints and
// returns the authenticated specialist id. Static API tokens pass with an
// empty specialist id. With neither an issuer nor API tokens configured the
// check is skipped.
func (h *handler) requireSpecialist(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h.issuer == nil && len(h.apiTokens) == 0 {
		return "", true
	}
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		writeError(w, http.StatusUnauthorized, fmt.Errorf("missing bearer token"))
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if h.apiTokens[token] {
		return "", true
	}
	if h.issuer == nil {
		writeError(w, http.StatusUnauthorized, fmt.Errorf("invalid token"))
		return "", false
	}
	claims, err := h.issuer.Verify(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, fmt.Errorf("invalid token"))
		return "", false
	}
	return claims.SpecialistID, true
}

// --- auth -------------------------------------------------------------------

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.issuer == nil {
		writeError(w, http.StatusNotImplemented, fmt.Errorf("login not configured"))
		return
	}
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sp, err := h.app.Specialists.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, specialistsvc.ErrInvalidCredentials)
		return
	}
	token, expires, err := h.issuer.Issue(sp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":      token,
		"expires_at": expires,
		"specialist": sp,
	})
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- campuses ---------------------------------------------------------------

func (h *handler) campuses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			Name      string  `json:"name"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		c, err := h.app.Campuses.Create(r.Context(), payload.Name, payload.Latitude, payload.Longitude)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)

	case http.MethodGet:
		list, err := h.app.Campuses.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, list)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) campusResources(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/api/campuses")
	if len(parts) != 1 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id := parts[0]

	switch r.Method {
	case http.MethodGet:
		c, err := h.app.Campuses.Get(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	case http.MethodPut:
		var payload struct {
			Name      *string  `json:"name"`
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		c, err := h.app.Campuses.Update(r.Context(), id, payload.Name, payload.Latitude, payload.Longitude)
		if err != nil {
			writeError(w, statusForErr(err), err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	case http.MethodDelete:
		if err := h.app.Campuses.Delete(r.Context(), id); err != nil {
			writeError(w, statusForErr(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// --- members ----------------------------------------------------------------

func (h *handler) members(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			Name  string `json:"name"`
			Email string `json:"email"`
			Phone string `json:"phone"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		m, err := h.app.Members.Create(r.Context(), payload.Name, payload.Email, payload.Phone)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)

	case http.MethodGet:
		list, err := h.app.Members.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, list)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) memberResources(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/api/members")
	if len(parts) == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id := parts[0]

	if len(parts) == 2 && parts[1] == "reservations" {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		list, err := h.app.Reservations.ListForMember(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}
	if len(parts) != 1 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		m, err := h.app.Members.Get(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	case http.MethodPut:
		var payload struct {
			Name  *string `json:"name"`
			Email *string `json:"email"`
			Phone *string `json:"phone"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		m, err := h.app.Members.Update(r.Context(), id, payload.Name, payload.Email, payload.Phone)
		if err != nil {
			writeError(w, statusForErr(err), err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	case http.MethodDelete:
		if err := h.app.Members.Delete(r.Context(), id); err != nil {
			writeError(w, statusForErr(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// --- specialists ------------------------------------------------------------

func (h *handler) specialists(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Phone    string `json:"phone"`
			Password string `json:"password"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		sp, err := h.app.Specialists.Create(r.Context(), payload.Name, payload.Email, payload.Phone, payload.Password)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, sp)

	case http.MethodGet:
		list, err := h.app.Specialists.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, list)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) specialistResources(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/api/specialists")
	if len(parts) == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id := parts[0]

	if len(parts) == 2 && parts[1] == "notifications" {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if _, ok := h.requireSpecialist(w, r); !ok {
			return
		}
		if _, err := h.app.Specialists.Get(r.Context(), id); err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		list, err := h.app.Notifications.List(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}
	if len(parts) != 1 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		sp, err := h.app.Specialists.Get(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, sp)
	case http.MethodPut:
		var payload struct {
			Name     *string `json:"name"`
			Email    *string `json:"email"`
			Phone    *string `json:"phone"`
			Password *string `json:"password"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		sp, err := h.app.Specialists.Update(r.Context(), id, payload.Name, payload.Email, payload.Phone, payload.Password)
		if err != nil {
			writeError(w, statusForErr(err), err)
			return
		}
		writeJSON(w, http.StatusOK, sp)
	case http.MethodDelete:
		if err := h.app.Specialists.Delete(r.Context(), id); err != nil {
			writeError(w, statusForErr(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// --- accommodations ---------------------------------------------------------

func (h *handler) accommodations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload accommodationsvc.CreateInput
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		a, err := h.app.Accommodations.Create(r.Context(), payload)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusCreated, h.withAverage(r, a))

	case http.MethodGet:
		list, err := h.app.Accommodations.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, h.withAverages(r, list))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) accommodationResources(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/api/accommodations")
	if len(parts) == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch parts[0] {
	case "search":
		h.searchAccommodations(w, r)
		return
	case "location-data":
		h.locationData(w, r)
		return
	case "unavailable":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if _, ok := h.requireSpecialist(w, r); !ok {
			return
		}
		list, err := h.app.Accommodations.ListUnavailable(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}

	id := parts[0]
	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			a, err := h.app.Accommodations.Get(r.Context(), id)
			if err != nil {
				writeError(w, http.StatusNotFound, err)
				return
			}
			writeJSON(w, http.StatusOK, h.withAverage(r, a))
		case http.MethodPut:
			var payload accommodationsvc.UpdateInput
			if err := decodeJSON(r.Body, &payload); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			a, err := h.app.Accommodations.Update(r.Context(), id, payload)
			if err != nil {
				writeError(w, statusForErr(err), err)
				return
			}
			writeJSON(w, http.StatusOK, h.withAverage(r, a))
		case http.MethodDelete:
			specialistID, ok := h.requireSpecialist(w, r)
			if !ok {
				return
			}
			if err := h.app.Accommodations.Delete(r.Context(), id, specialistID); err != nil {
				writeError(w, statusForErr(err), err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	switch parts[1] {
	case "reserve":
		h.reserve(w, r, id)
	case "photos":
		h.photos(w, r, id)
	case "mark-unavailable":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		specialistID, ok := h.requireSpecialist(w, r)
		if !ok {
			return
		}
		a, err := h.app.Accommodations.MarkUnavailable(r.Context(), id, specialistID)
		if err != nil {
			writeError(w, statusForErr(err), err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *handler) searchAccommodations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	filter := accommodationsvc.SearchFilter{
		Type:     accommodation.Type(strings.ToUpper(strings.TrimSpace(q.Get("type")))),
		CampusID: strings.TrimSpace(q.Get("campus_id")),
	}
	var err error
	if filter.AvailableFrom, err = parseDateParam(q.Get("available_from")); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if filter.AvailableTo, err = parseDateParam(q.Get("available_to")); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if filter.NumBeds, err = parseIntParam(q.Get("num_beds")); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if filter.NumBedrooms, err = parseIntParam(q.Get("num_bedrooms")); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if filter.MinPrice, err = parseFloatParam(q.Get("min_price")); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if filter.MaxPrice, err = parseFloatParam(q.Get("max_price")); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	results, err := h.app.Accommodations.Search(r.Context(), filter)
	if err != nil {
		writeError(w, statusForErr(err), err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *handler) locationData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var payload struct {
		BuildingName string `json:"building_name"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	loc, err := h.app.Accommodations.ResolveLocation(r.Context(), payload.BuildingName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

func (h *handler) reserve(w http.ResponseWriter, r *http.Request, accommodationID string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var payload struct {
		MemberID     string    `json:"member_id"`
		ReservedFrom time.Time `json:"reserved_from"`
		ReservedTo   time.Time `json:"reserved_to"`
		ContactName  string    `json:"contact_name"`
		ContactPhone string    `json:"contact_phone"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := h.app.Reservations.Reserve(r.Context(), accommodationID, payload.MemberID,
		payload.ReservedFrom, payload.ReservedTo, payload.ContactName, payload.ContactPhone)
	metrics.RecordReservationEvent("reserve", err == nil)
	if err != nil {
		writeError(w, statusForErr(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *handler) photos(w http.ResponseWriter, r *http.Request, accommodationID string) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			URL     string `json:"url"`
			Caption string `json:"caption"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		p, err := h.app.Accommodations.AddPhoto(r.Context(), accommodationID, payload.URL, payload.Caption)
		if err != nil {
			writeError(w, statusForErr(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	case http.MethodGet:
		list, err := h.app.Accommodations.ListPhotos(r.Context(), accommodationID)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// --- reservations -----------------------------------------------------------

func (h *handler) reservations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	list, err := h.app.Reservations.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) reservationResources(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/api/reservations")
	if len(parts) == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		res, err := h.app.Reservations.Get(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
		return
	}

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch parts[1] {
	case "cancel":
		res, err := h.app.Reservations.Cancel(r.Context(), id)
		metrics.RecordReservationEvent("cancel", err == nil)
		if err != nil {
			writeError(w, statusForErr(err), err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	case "update-status":
		specialistID, ok := h.requireSpecialist(w, r)
		if !ok {
			return
		}
		var payload struct {
			Status string `json:"status"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		status := reservation.Status(strings.ToUpper(strings.TrimSpace(payload.Status)))
		res, err := h.app.Reservations.UpdateStatus(r.Context(), id, status, specialistID)
		if err != nil {
			writeError(w, statusForErr(err), err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	case "rate":
		var payload struct {
			Score   *int   `json:"score"`
			Comment string `json:"comment"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if payload.Score == nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("score is required"))
			return
		}
		rt, err := h.app.Ratings.Rate(r.Context(), id, *payload.Score, payload.Comment)
		if err != nil {
			writeError(w, statusForErr(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, rt)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// --- ratings ----------------------------------------------------------------

func (h *handler) ratings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	list, err := h.app.Ratings.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("accommodation")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) ratingResources(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/api/ratings")
	if len(parts) == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if parts[0] == "pending" {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if _, ok := h.requireSpecialist(w, r); !ok {
			return
		}
		list, err := h.app.Ratings.ListPending(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}

	id := parts[0]
	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		rt, err := h.app.Ratings.Get(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, rt)
		return
	}

	if parts[1] == "moderate" {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		specialistID, ok := h.requireSpecialist(w, r)
		if !ok {
			return
		}
		var payload struct {
			Approve *bool  `json:"approve"`
			Note    string `json:"note"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if payload.Approve == nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("approve is required"))
			return
		}
		rt, err := h.app.Ratings.Moderate(r.Context(), id, *payload.Approve, specialistID, payload.Note)
		if err != nil {
			writeError(w, statusForErr(err), err)
			return
		}
		writeJSON(w, http.StatusOK, rt)
		return
	}

	w.WriteHeader(http.StatusNotFound)
}

// --- notifications ----------------------------------------------------------

func (h *handler) notifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := h.requireSpecialist(w, r); !ok {
		return
	}
	list, err := h.app.Notifications.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("specialist")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) notificationResources(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/api/notifications")
	if len(parts) != 2 || parts[1] != "mark-read" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := h.requireSpecialist(w, r); !ok {
		return
	}
	n, err := h.app.Notifications.MarkRead(r.Context(), parts[0])
	if err != nil {
		writeError(w, statusForErr(err), err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// --- logs -------------------------------------------------------------------

func (h *handler) logs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := h.requireSpecialist(w, r); !ok {
		return
	}

	limit, err := parseIntParam(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if r.URL.Query().Get("source") == "http" {
		writeJSON(w, http.StatusOK, h.requests.listLimit(limit))
		return
	}
	entries, err := h.app.AuditLog.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// --- helpers ----------------------------------------------------------------

// ratedAccommodation decorates an accommodation payload with its photos and
// its approved average rating; the average is null when no approved ratings
// exist.
type ratedAccommodation struct {
	accommodation.Accommodation
	Photos        []accommodation.Photo `json:"photos"`
	AverageRating *float64              `json:"average_rating"`
}

func (h *handler) withAverage(r *http.Request, a accommodation.Accommodation) ratedAccommodation {
	avg, err := h.app.Ratings.AverageApproved(r.Context(), a.ID)
	if err != nil {
		avg = nil
	}
	photos, err := h.app.Accommodations.ListPhotos(r.Context(), a.ID)
	if err != nil || photos == nil {
		photos = []accommodation.Photo{}
	}
	return ratedAccommodation{Accommodation: a, Photos: photos, AverageRating: avg}
}

func (h *handler) withAverages(r *http.Request, list []accommodation.Accommodation) []ratedAccommodation {
	out := make([]ratedAccommodation, 0, len(list))
	for _, a := range list {
		out = append(out, h.withAverage(r, a))
	}
	return out
}

// statusForErr maps service errors to HTTP statuses: missing rows are 404,
// domain conflicts and validation failures are 400.
func statusForErr(err error) int {
	if errors.Is(err, sql.ErrNoRows) || strings.HasSuffix(err.Error(), "not found") {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func parseDateParam(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q; use YYYY-MM-DD or RFC3339", raw)
	}
	return &t, nil
}

func parseIntParam(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return n, nil
}

func parseFloatParam(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", raw)
	}
	return &f, nil
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
