package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voyago/internal/reservations/availability"
	reservationserrors "voyago/internal/reservations/errors"
	"voyago/internal/reservations/index"
	"voyago/internal/reservations/repository"
	"voyago/internal/reservations/validator"
	"voyago/pkg/config"
	apperrors "voyago/pkg/errors"
	"voyago/pkg/kafka"
	"voyago/pkg/model"

	"github.com/google/uuid"
)

const (
	EventReservationRequested = "reservation.requested"
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationCancelled = "reservation.cancelled"
	EventReservationExpired   = "reservation.expired"

	eventSource        = "availability-engine"
	eventSchemaVersion = "1.0"
)

// ResourceProvider resolves a resource definition from the catalog.
type ResourceProvider interface {
	GetResource(ctx context.Context, id string) (*model.Resource, error)
}

// EventPublisher emits lifecycle events. Publishing is best effort: a broker
// failure never fails the booking operation itself.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type ReservationService interface {
	RequestBooking(ctx context.Context, resourceID string, iv model.Interval) (*model.Reservation, error)
	ConfirmBooking(ctx context.Context, id string) (*model.Reservation, error)
	CancelBooking(ctx context.Context, id string) (*model.Reservation, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	CheckAvailability(ctx context.Context, resourceID string, rangeStart, rangeEnd time.Time) ([]model.BookableOption, error)
	ExpirePendingHolds(ctx context.Context, now time.Time) (int, error)
	WarmIndex(ctx context.Context) error
}

type reservationService struct {
	repo      repository.ReservationRepository
	catalog   ResourceProvider
	idx       *index.Index
	validator *validator.ReservationValidator
	publisher EventPublisher
	cfg       *config.Config
	now       func() time.Time
}

func NewReservationService(
	repo repository.ReservationRepository,
	catalog ResourceProvider,
	idx *index.Index,
	validator *validator.ReservationValidator,
	publisher EventPublisher,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		catalog:   catalog,
		idx:       idx,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// RequestBooking places a pending hold on the interval. The index insert is
// the atomic check-then-reserve step: between two concurrent requests for
// overlapping intervals exactly one insert succeeds, so the double-booking
// check and the reservation of the interval cannot interleave.
func (s *reservationService) RequestBooking(ctx context.Context, resourceID string, iv model.Interval) (*model.Reservation, error) {
	if resourceID == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}
	if err := iv.Validate(); err != nil {
		return nil, apperrors.InvalidInterval(err.Error())
	}

	resource, err := s.catalog.GetResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	if err := s.verifyWithinCalendar(resource, iv); err != nil {
		return nil, err
	}

	if err := s.idx.Insert(resourceID, iv); err != nil {
		var conflict *index.ConflictError
		if errors.As(err, &conflict) {
			return nil, apperrors.Conflict(
				fmt.Sprintf("Interval %s conflicts with existing reservation %s", iv, conflict.Existing))
		}
		if errors.Is(err, model.ErrEmptyInterval) {
			return nil, apperrors.InvalidInterval(err.Error())
		}
		return nil, apperrors.Internal("Failed to reserve interval", err)
	}

	reservation := &model.Reservation{
		ID:         uuid.NewString(),
		ResourceID: resourceID,
		Interval:   iv,
		Status:     model.StatusPending,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.validator.Validate(reservation); err != nil {
		s.idx.Remove(resourceID, iv)
		return nil, apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, reservation); err != nil {
		// Roll back the hold so the interval does not leak.
		s.idx.Remove(resourceID, iv)
		s.cfg.Log.Error("Failed to persist reservation", "resource_id", resourceID, "error", err)
		return nil, apperrors.Internal("Failed to create reservation", err)
	}

	s.publishEvent(ctx, EventReservationRequested, reservation)

	s.cfg.Log.Info("Reservation requested",
		"id", reservation.ID,
		"resource_id", resourceID,
		"interval", iv.String(),
	)
	return reservation, nil
}

func (s *reservationService) ConfirmBooking(ctx context.Context, id string) (*model.Reservation, error) {
	reservation, err := s.getForTransition(ctx, id)
	if err != nil {
		return nil, err
	}

	if !reservation.CanTransition(model.StatusConfirmed) {
		return nil, apperrors.InvalidTransition(
			fmt.Sprintf("Cannot confirm reservation in status %q", reservation.Status))
	}

	if err := s.repo.UpdateStatus(ctx, id, model.StatusPending, model.StatusConfirmed); err != nil {
		return nil, s.mapTransitionError(err, "confirm", reservation.Status)
	}

	reservation.Status = model.StatusConfirmed
	s.publishEvent(ctx, EventReservationConfirmed, reservation)

	s.cfg.Log.Info("Reservation confirmed", "id", id, "resource_id", reservation.ResourceID)
	return reservation, nil
}

// CancelBooking releases the reservation's interval. Cancelling an already
// cancelled reservation is a no-op, so retries are safe.
func (s *reservationService) CancelBooking(ctx context.Context, id string) (*model.Reservation, error) {
	reservation, err := s.getForTransition(ctx, id)
	if err != nil {
		return nil, err
	}

	if reservation.Status == model.StatusCancelled {
		return reservation, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, reservation.Status, model.StatusCancelled); err != nil {
		if errors.Is(err, reservationserrors.ErrStatusChanged) {
			// The status moved under us. Re-read: a concurrent cancel or
			// expiry still counts as success.
			current, findErr := s.repo.FindByID(ctx, id)
			if findErr == nil && current.Status == model.StatusCancelled {
				return current, nil
			}
			if findErr == nil {
				reservation = current
				if updateErr := s.repo.UpdateStatus(ctx, id, current.Status, model.StatusCancelled); updateErr == nil {
					reservation.Status = model.StatusCancelled
					s.releaseInterval(reservation)
					s.publishEvent(ctx, EventReservationCancelled, reservation)
					return reservation, nil
				}
			}
			return nil, apperrors.Conflict("Reservation status changed concurrently")
		}
		return nil, s.mapTransitionError(err, "cancel", reservation.Status)
	}

	reservation.Status = model.StatusCancelled
	s.releaseInterval(reservation)
	s.publishEvent(ctx, EventReservationCancelled, reservation)

	s.cfg.Log.Info("Reservation cancelled", "id", id, "resource_id", reservation.ResourceID)
	return reservation, nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		return nil, apperrors.Internal("Failed to get reservation", err)
	}

	return reservation, nil
}

func (s *reservationService) CheckAvailability(ctx context.Context, resourceID string, rangeStart, rangeEnd time.Time) ([]model.BookableOption, error) {
	if resourceID == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}
	if !rangeEnd.After(rangeStart) {
		return nil, apperrors.InvalidInterval("Range end must be after range start")
	}
	if rangeEnd.Sub(rangeStart) > time.Duration(s.cfg.MaxRangeDays)*24*time.Hour {
		return nil, apperrors.InvalidInput(
			fmt.Sprintf("Availability range must not exceed %d days", s.cfg.MaxRangeDays))
	}

	resource, err := s.catalog.GetResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	active := s.idx.ActiveIntervals(resourceID)
	return availability.Options(resource, rangeStart, rangeEnd, active), nil
}

// ExpirePendingHolds cancels every pending hold older than the hold duration
// and frees its interval. The cutoff is derived from the caller's clock so a
// sweep sees a consistent notion of "now" across its whole batch.
func (s *reservationService) ExpirePendingHolds(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-s.cfg.HoldDuration)

	expired, err := s.repo.FindExpiredPending(ctx, cutoff)
	if err != nil {
		return 0, apperrors.Internal("Failed to find expired holds", err)
	}

	count := 0
	for _, reservation := range expired {
		err := s.repo.UpdateStatus(ctx, reservation.ID, model.StatusPending, model.StatusCancelled)
		if err != nil {
			if errors.Is(err, reservationserrors.ErrStatusChanged) || errors.Is(err, reservationserrors.ErrNotFound) {
				// Confirmed or cancelled since the query; leave it alone.
				continue
			}
			s.cfg.Log.Error("Failed to expire reservation", "id", reservation.ID, "error", err)
			continue
		}

		reservation.Status = model.StatusCancelled
		s.releaseInterval(reservation)
		s.publishEvent(ctx, EventReservationExpired, reservation)
		count++

		s.cfg.Log.Info("Pending hold expired",
			"id", reservation.ID,
			"resource_id", reservation.ResourceID,
			"created_at", reservation.CreatedAt,
		)
	}

	return count, nil
}

// WarmIndex rebuilds the in-memory availability index from the persisted
// active reservations. Called once at startup before the server accepts
// traffic.
func (s *reservationService) WarmIndex(ctx context.Context) error {
	active, err := s.repo.FindAllActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active reservations: %w", err)
	}

	for _, reservation := range active {
		if err := s.idx.Insert(reservation.ResourceID, reservation.Interval); err != nil {
			// Overlapping active reservations in storage violate the engine's
			// core invariant; refuse to start rather than serve bad data.
			return fmt.Errorf("corrupt reservation %s: %w", reservation.ID, err)
		}
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		s.cfg.Log.Warn("Failed to count reservations", "error", err)
	}
	s.cfg.Log.Info("Availability index warmed",
		"active_reservations", len(active),
		"total_reservations", total,
	)
	return nil
}

// verifyWithinCalendar checks the interval against the resource's bookable
// calendar. Day-granularity intervals must be aligned to midnight in the
// resource's time zone and cover only operating days; slot-granularity
// intervals must match one of the resource's slot boundaries exactly.
func (s *reservationService) verifyWithinCalendar(resource *model.Resource, iv model.Interval) error {
	loc := resource.Location()
	switch resource.Granularity {
	case model.GranularityDay:
		start := iv.Start.In(loc)
		if !iv.Start.Equal(model.DayInterval(start).Start) {
			return apperrors.InvalidInterval("Day booking must start at midnight in the resource's time zone")
		}
		for cursor := start; cursor.Before(iv.End); cursor = cursor.AddDate(0, 0, 1) {
			if !resource.OperatesOn(cursor) {
				return apperrors.InvalidInterval(
					fmt.Sprintf("Resource does not operate on %s", cursor.Format("2006-01-02")))
			}
		}
		if !iv.End.Equal(model.DayInterval(iv.End.In(loc)).Start) {
			return apperrors.InvalidInterval("Day booking must end at midnight in the resource's time zone")
		}
		return nil

	case model.GranularitySlot:
		local := iv.Start.In(loc)
		if !resource.OperatesOn(local) {
			return apperrors.InvalidInterval(
				fmt.Sprintf("Resource does not operate on %s", local.Format("2006-01-02")))
		}
		for i := range resource.SlotTemplates {
			slot, ok := availability.SlotInterval(resource, iv.Start, i)
			if ok && slot.Equal(iv) {
				return nil
			}
		}
		return apperrors.InvalidInterval("Interval does not match any slot of the resource")

	default:
		return apperrors.Internal(
			fmt.Sprintf("Resource %s has unknown granularity %q", resource.ID, resource.Granularity), nil)
	}
}

func (s *reservationService) getForTransition(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		return nil, apperrors.Internal("Failed to get reservation", err)
	}
	return reservation, nil
}

func (s *reservationService) mapTransitionError(err error, action string, status string) error {
	if errors.Is(err, reservationserrors.ErrStatusChanged) {
		return apperrors.InvalidTransition(
			fmt.Sprintf("Cannot %s reservation: status changed from %q concurrently", action, status))
	}
	if errors.Is(err, reservationserrors.ErrNotFound) {
		return apperrors.NotFound("Reservation")
	}
	return apperrors.Internal(fmt.Sprintf("Failed to %s reservation", action), err)
}

func (s *reservationService) releaseInterval(reservation *model.Reservation) {
	if !s.idx.Remove(reservation.ResourceID, reservation.Interval) {
		s.cfg.Log.Warn("Interval missing from availability index on release",
			"id", reservation.ID,
			"resource_id", reservation.ResourceID,
			"interval", reservation.Interval.String(),
		)
	}
}

type reservationEvent struct {
	ReservationID string    `json:"reservation_id"`
	ResourceID    string    `json:"resource_id"`
	Status        string    `json:"status"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (s *reservationService) publishEvent(ctx context.Context, eventType string, reservation *model.Reservation) {
	if s.publisher == nil {
		return
	}

	msg := kafka.NewMessage().
		WithKey(reservation.ResourceID).
		WithValue(reservationEvent{
			ReservationID: reservation.ID,
			ResourceID:    reservation.ResourceID,
			Status:        reservation.Status,
			Start:         reservation.Interval.Start,
			End:           reservation.Interval.End,
			OccurredAt:    s.now().UTC(),
		}).
		WithEventType(eventType).
		WithSource(eventSource).
		WithSchemaVersion(eventSchemaVersion).
		Build()

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish reservation event",
			"event_type", eventType,
			"reservation_id", reservation.ID,
			"error", err,
		)
	}
}
