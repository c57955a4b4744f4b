package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hackfest-dev/hackfest-server/services"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not a JSON envelope: %v\n%s", err, rec.Body.String())
	}
	return env
}

func TestSuccessResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	successResponse(rec, http.StatusCreated, map[string]int{"id": 7})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	env := decodeEnvelope(t, rec)
	if !env.Success || env.Error != nil {
		t.Errorf("envelope = %s", rec.Body.String())
	}
	var data map[string]int
	if err := json.Unmarshal(env.Data, &data); err != nil || data["id"] != 7 {
		t.Errorf("data = %s", env.Data)
	}
}

func TestErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/teams/1", nil)
	errorResponse(rec, req, http.StatusNotFound, "team not found")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Success || env.Error == nil || env.Error.Message != "team not found" {
		t.Errorf("envelope = %s", rec.Body.String())
	}
}

func TestReadJSON(t *testing.T) {
	type input struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid body", `{"name": "demo"}`, ""},
		{"empty body", ``, "body must not be empty"},
		{"malformed", `{"name":`, "badly-formed JSON"},
		{"unknown field", `{"nom": "demo"}`, "unknown key"},
		{"wrong type", `{"name": 3}`, `incorrect JSON type for field "name"`},
		{"two values", `{"name":"a"}{"name":"b"}`, "single JSON value"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/teams", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			var dst input

			err := readJSON(rec, req, &dst)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("readJSON returned error: %v", err)
				}
				if dst.Name != "demo" {
					t.Errorf("decoded = %+v", dst)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("readJSON error = %v, want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestIDParam(t *testing.T) {
	withParam := func(value string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/teams/"+value, nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("teamID", value)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	if id, err := idParam(withParam("12"), "teamID"); err != nil || id != 12 {
		t.Errorf("idParam(12) = %d, %v", id, err)
	}
	for _, bad := range []string{"0", "-3", "abc", ""} {
		if _, err := idParam(withParam(bad), "teamID"); err == nil {
			t.Errorf("idParam(%q) accepted", bad)
		}
	}
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/notifications?limit=25&offset=junk", nil)
	if got := queryInt(req, "limit", 50); got != 25 {
		t.Errorf("limit = %d, want 25", got)
	}
	if got := queryInt(req, "offset", 0); got != 0 {
		t.Errorf("offset = %d, want fallback 0", got)
	}
	if got := queryInt(req, "missing", 50); got != 50 {
		t.Errorf("missing = %d, want fallback 50", got)
	}
}

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{services.ErrTeamNotFound, http.StatusNotFound},
		{services.ErrMessageNotFound, http.StatusNotFound},
		{services.ErrUserAlreadyExists, http.StatusConflict},
		{services.ErrTeamFull, http.StatusConflict},
		{services.ErrHackathonFull, http.StatusConflict},
		{services.ErrAlreadyRegistered, http.StatusConflict},
		{services.ErrValidationFailed, http.StatusBadRequest},
		{services.ErrInvalidScore, http.StatusBadRequest},
		{services.ErrRegistrationClosed, http.StatusBadRequest},
		{services.ErrLastLeader, http.StatusBadRequest},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrAccountInactive, http.StatusUnauthorized},
		{services.ErrNotTeamLeader, http.StatusForbidden},
		{services.ErrNotJudge, http.StatusForbidden},
		{services.ErrNotRoomMember, http.StatusForbidden},
		{services.ErrNotAdmin, http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			mapServiceErrorToHTTP(rec, req, tc.err)
			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			env := decodeEnvelope(t, rec)
			if env.Success || env.Error == nil {
				t.Errorf("envelope = %s", rec.Body.String())
			}
		})
	}

	t.Run("unknown errors are masked", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		mapServiceErrorToHTTP(rec, req, context.DeadlineExceeded)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
		env := decodeEnvelope(t, rec)
		if env.Error == nil || strings.Contains(env.Error.Message, "deadline") {
			t.Errorf("internal detail leaked: %s", rec.Body.String())
		}
	})
}
