package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "voyago/pkg/errors"
	"voyago/pkg/logger"
	"voyago/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockReservationService struct {
	requestFunc      func(ctx context.Context, resourceID string, iv model.Interval) (*model.Reservation, error)
	confirmFunc      func(ctx context.Context, id string) (*model.Reservation, error)
	cancelFunc       func(ctx context.Context, id string) (*model.Reservation, error)
	availabilityFunc func(ctx context.Context, resourceID string, rangeStart, rangeEnd time.Time) ([]model.BookableOption, error)
}

func (m *mockReservationService) RequestBooking(ctx context.Context, resourceID string, iv model.Interval) (*model.Reservation, error) {
	if m.requestFunc != nil {
		return m.requestFunc(ctx, resourceID, iv)
	}
	return &model.Reservation{ID: "test", ResourceID: resourceID, Interval: iv, Status: model.StatusPending}, nil
}

func (m *mockReservationService) ConfirmBooking(ctx context.Context, id string) (*model.Reservation, error) {
	if m.confirmFunc != nil {
		return m.confirmFunc(ctx, id)
	}
	return &model.Reservation{ID: id, Status: model.StatusConfirmed}, nil
}

func (m *mockReservationService) CancelBooking(ctx context.Context, id string) (*model.Reservation, error) {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, id)
	}
	return &model.Reservation{ID: id, Status: model.StatusCancelled}, nil
}

func (m *mockReservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	return &model.Reservation{ID: id, Status: model.StatusPending}, nil
}

func (m *mockReservationService) CheckAvailability(ctx context.Context, resourceID string, rangeStart, rangeEnd time.Time) ([]model.BookableOption, error) {
	if m.availabilityFunc != nil {
		return m.availabilityFunc(ctx, resourceID, rangeStart, rangeEnd)
	}
	return []model.BookableOption{}, nil
}

func (m *mockReservationService) ExpirePendingHolds(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

func (m *mockReservationService) WarmIndex(ctx context.Context) error {
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

func TestRequest_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{
			name:       "created",
			body:       `{"resource_id":"65a1b2c3d4e5f60718293a4b","start":"2025-06-02T00:00:00Z","end":"2025-06-03T00:00:00Z"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "malformed body",
			body:       `{"resource_id":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "conflict",
			body:       `{"resource_id":"65a1b2c3d4e5f60718293a4b","start":"2025-06-02T00:00:00Z","end":"2025-06-03T00:00:00Z"}`,
			serviceErr: apperrors.Conflict("interval already reserved"),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "invalid interval",
			body:       `{"resource_id":"65a1b2c3d4e5f60718293a4b","start":"2025-06-03T00:00:00Z","end":"2025-06-02T00:00:00Z"}`,
			serviceErr: apperrors.InvalidInterval("end must be after start"),
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockReservationService{}
			if tt.serviceErr != nil {
				mock.requestFunc = func(ctx context.Context, resourceID string, iv model.Interval) (*model.Reservation, error) {
					return nil, tt.serviceErr
				}
			}
			h := NewReservationHandler(mock, testLogger())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.Request(w, req, nil)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestConfirm_InvalidTransition(t *testing.T) {
	mock := &mockReservationService{
		confirmFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			return nil, apperrors.InvalidTransition("cannot confirm cancelled reservation")
		},
	}
	h := NewReservationHandler(mock, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations/abc/confirm", nil)
	w := httptest.NewRecorder()
	h.Confirm(w, req, httprouter.Params{{Key: "id", Value: "abc"}})

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected status 422, got %d", w.Code)
	}
}

func TestCancel_NotFound(t *testing.T) {
	mock := &mockReservationService{
		cancelFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		},
	}
	h := NewReservationHandler(mock, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations/abc/cancel", nil)
	w := httptest.NewRecorder()
	h.Cancel(w, req, httprouter.Params{{Key: "id", Value: "abc"}})

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestAvailability_ParsesWindow(t *testing.T) {
	var gotStart, gotEnd time.Time
	mock := &mockReservationService{
		availabilityFunc: func(ctx context.Context, resourceID string, rangeStart, rangeEnd time.Time) ([]model.BookableOption, error) {
			gotStart, gotEnd = rangeStart, rangeEnd
			return []model.BookableOption{}, nil
		},
	}
	h := NewReservationHandler(mock, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resources/abc/availability?from=2025-06-02&to=2025-06-04", nil)
	w := httptest.NewRecorder()
	h.Availability(w, req, httprouter.Params{{Key: "id", Value: "abc"}})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	wantStart := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	if !gotStart.Equal(wantStart) {
		t.Errorf("expected start %s, got %s", wantStart, gotStart)
	}
	// A bare "to" date covers that whole day.
	if !gotEnd.Equal(wantEnd) {
		t.Errorf("expected end %s, got %s", wantEnd, gotEnd)
	}

	var body struct {
		Data []model.BookableOption `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.Data == nil {
		t.Error("expected empty data array, got null")
	}
}

func TestAvailability_MissingWindow(t *testing.T) {
	h := NewReservationHandler(&mockReservationService{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resources/abc/availability", nil)
	w := httptest.NewRecorder()
	h.Availability(w, req, httprouter.Params{{Key: "id", Value: "abc"}})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}
