package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"cloudlodge/internal/api"
	"cloudlodge/internal/entities"
	apperrors "cloudlodge/internal/errors"
	"cloudlodge/internal/utils"
)

// ModificationLockoutDays is how close to check-in a reservation becomes
// immutable for the client, for modification and cancellation alike.
// Exactly this many days out is still allowed. This is a convenience rule,
// not a security boundary: the server enforces it independently.
const ModificationLockoutDays = 14

// BookingAPI is the slice of the backend the booking flows touch.
type BookingAPI interface {
	GetRoom(ctx context.Context, id string) (*entities.Room, error)
	CreateReservation(ctx context.Context, req api.CreateReservationRequest) (*entities.Reservation, error)
	UpdateReservation(ctx context.Context, id string, req api.UpdateReservationRequest) (*entities.Reservation, error)
	AvailabilityByRoom(ctx context.Context, roomID string) ([]entities.AvailabilityRecord, error)
	AvailabilityByReservation(ctx context.Context, reservationID string) ([]entities.AvailabilityRecord, error)
	CreateAvailability(ctx context.Context, req api.CreateAvailabilityRequest, idempotencyKey string) (*entities.AvailabilityRecord, error)
	DeleteAvailability(ctx context.Context, id string) error
}

// Refunder reverses a payment when a paid reservation is cancelled.
type Refunder interface {
	RefundBySessionID(sessionID string) error
}

// ConflictResult reports whether a candidate range collides with another
// reservation's occupied days. ConflictingDate is the first collision, for
// error messaging.
type ConflictResult struct {
	Conflict        bool
	ConflictingDate string
}

type BookingService struct {
	api      BookingAPI
	refunder Refunder
	log      *logrus.Logger
	now      func() time.Time
}

func NewBookingService(bookingAPI BookingAPI, refunder Refunder, log *logrus.Logger) *BookingService {
	return &BookingService{api: bookingAPI, refunder: refunder, log: log, now: time.Now}
}

// CheckConflict fetches the occupied days for roomID, drops the footprint of
// excludeReservationID so a reservation never collides with itself while
// being edited, and scans the candidate range's nights in order. A fetch
// failure propagates: the room is never silently treated as available.
func (s *BookingService) CheckConflict(ctx context.Context, roomID string, candidate entities.DateRange, excludeReservationID string) (*ConflictResult, error) {
	records, err := s.api.AvailabilityByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("fetching availability for room %s: %w", roomID, err)
	}

	booked := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if excludeReservationID != "" && rec.ReservationID == excludeReservationID {
			continue
		}
		booked[rec.Date] = struct{}{}
	}

	for _, day := range candidate.Days() {
		if _, taken := booked[day]; taken {
			return &ConflictResult{Conflict: true, ConflictingDate: day}, nil
		}
	}
	return &ConflictResult{}, nil
}

// BookRoom creates a reservation for the range and writes one availability
// record per night. Records created before a failure are rolled back so an
// aborted booking does not leave days blocked.
func (s *BookingService) BookRoom(ctx context.Context, roomID string, stay entities.DateRange, numGuests int) (*entities.Reservation, error) {
	if !stay.Complete() {
		return nil, apperrors.Validation("check-in and check-out dates are both required")
	}
	if stay.Nights() < 1 {
		return nil, apperrors.Validation("check-out must be after check-in")
	}

	room, err := s.api.GetRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("fetching room %s: %w", roomID, err)
	}
	guests := utils.Clamp(numGuests, 1, maxGuests(room))

	check, err := s.CheckConflict(ctx, roomID, stay, "")
	if err != nil {
		return nil, err
	}
	if check.Conflict {
		return nil, apperrors.Conflict(check.ConflictingDate)
	}

	res, err := s.api.CreateReservation(ctx, api.CreateReservationRequest{
		RoomUnitID:   roomID,
		CheckInDate:  stay.CheckInDate(),
		CheckOutDate: stay.CheckOutDate(),
		NumGuests:    guests,
	})
	if err != nil {
		return nil, fmt.Errorf("creating reservation: %w", err)
	}

	created, err := s.bookDays(ctx, roomID, res.ID, stay, uuid.NewString())
	if err != nil {
		s.rollbackRecords(ctx, created)
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"reservation_id": res.ID,
		"room_id":        roomID,
		"nights":         stay.Nights(),
	}).Info("reservation created")
	return res, nil
}

// ModifyReservation changes a reservation's dates and guest count. The
// sequence is strictly ordered: conflict check, snapshot of the current
// availability footprint, per-record deletes, the reservation update, then
// per-night creates for the new range. When a step after the deletes fails,
// the snapshot is re-created best-effort so the room is not left erroneously
// free. The server re-validates everything; this sequencing is advisory.
func (s *BookingService) ModifyReservation(ctx context.Context, res entities.Reservation, newRange entities.DateRange, newGuests int) (*entities.Reservation, error) {
	if !newRange.Complete() {
		return nil, apperrors.Validation("check-in and check-out dates are both required")
	}
	if newRange.Nights() < 1 {
		return nil, apperrors.Validation("check-out must be after check-in")
	}
	if days := newRange.DaysUntilStart(s.now()); days < ModificationLockoutDays {
		return nil, apperrors.Validation(
			"reservations can only be modified at least %d days before check-in (%d days remain)",
			ModificationLockoutDays, days)
	}

	room, err := s.api.GetRoom(ctx, res.RoomUnitID)
	if err != nil {
		return nil, fmt.Errorf("fetching room %s: %w", res.RoomUnitID, err)
	}
	guests := utils.Clamp(newGuests, 1, maxGuests(room))

	check, err := s.CheckConflict(ctx, res.RoomUnitID, newRange, res.ID)
	if err != nil {
		return nil, err
	}
	if check.Conflict {
		return nil, apperrors.Conflict(check.ConflictingDate)
	}

	snapshot, err := s.api.AvailabilityByReservation(ctx, res.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching current availability for reservation %s: %w", res.ID, err)
	}

	runKey := uuid.NewString()
	var deleted []entities.AvailabilityRecord
	for _, rec := range snapshot {
		if err := s.api.DeleteAvailability(ctx, rec.ID); err != nil {
			s.compensate(ctx, deleted, runKey)
			return nil, fmt.Errorf("removing availability record %s: %w", rec.ID, err)
		}
		deleted = append(deleted, rec)
	}

	update := api.UpdateReservationRequest{
		CheckInDate:  newRange.CheckInDate(),
		CheckOutDate: newRange.CheckOutDate(),
		NumGuests:    guests,
		Status:       entities.StatusModified,
	}
	updated, err := s.api.UpdateReservation(ctx, res.ID, update)
	if err != nil {
		s.compensate(ctx, deleted, runKey)
		return nil, fmt.Errorf("updating reservation %s: %w", res.ID, err)
	}

	if _, err := s.bookDays(ctx, res.RoomUnitID, res.ID, newRange, runKey); err != nil {
		s.compensate(ctx, deleted, runKey)
		return nil, err
	}

	// Merge the server's representation with the fields we just proposed,
	// mirroring what the caller's list should now show.
	merged := *updated
	if merged.ID == "" {
		merged.ID = res.ID
	}
	if merged.RoomUnitID == "" {
		merged.RoomUnitID = res.RoomUnitID
	}
	merged.CheckInDate = update.CheckInDate
	merged.CheckOutDate = update.CheckOutDate
	merged.NumGuests = update.NumGuests
	merged.Status = update.Status

	s.log.WithFields(logrus.Fields{
		"reservation_id": res.ID,
		"check_in":       merged.CheckInDate,
		"check_out":      merged.CheckOutDate,
	}).Info("reservation modified")
	return &merged, nil
}

// CancelReservation refunds the payment behind the reservation, releases
// its occupied days and proposes the CANCELLED status. The same lockout
// window as for modification applies: inside it the reservation is
// immutable for the client. When the status update fails the released days
// are re-created so the room does not show as free for a still-live
// reservation.
func (s *BookingService) CancelReservation(ctx context.Context, res entities.Reservation) error {
	stay, err := res.Range()
	if err != nil {
		return apperrors.Validation("reservation %s has invalid dates: %v", res.ID, err)
	}
	if days := stay.DaysUntilStart(s.now()); days < ModificationLockoutDays {
		return apperrors.Validation(
			"reservations can only be cancelled at least %d days before check-in (%d days remain)",
			ModificationLockoutDays, days)
	}

	if res.CheckoutSessionID != "" && s.refunder != nil {
		if err := s.refunder.RefundBySessionID(res.CheckoutSessionID); err != nil {
			return fmt.Errorf("refunding reservation %s: %w", res.ID, err)
		}
		s.log.WithFields(logrus.Fields{
			"reservation_id": res.ID,
			"session_id":     res.CheckoutSessionID,
		}).Info("payment refunded")
	}

	snapshot, err := s.api.AvailabilityByReservation(ctx, res.ID)
	if err != nil {
		return fmt.Errorf("fetching availability for reservation %s: %w", res.ID, err)
	}

	runKey := uuid.NewString()
	var deleted []entities.AvailabilityRecord
	for _, rec := range snapshot {
		if err := s.api.DeleteAvailability(ctx, rec.ID); err != nil {
			s.compensate(ctx, deleted, runKey)
			return fmt.Errorf("removing availability record %s: %w", rec.ID, err)
		}
		deleted = append(deleted, rec)
	}

	update := api.UpdateReservationRequest{
		CheckInDate:  res.CheckInDate,
		CheckOutDate: res.CheckOutDate,
		NumGuests:    res.NumGuests,
		Status:       entities.StatusCancelled,
	}
	if _, err := s.api.UpdateReservation(ctx, res.ID, update); err != nil {
		s.compensate(ctx, deleted, runKey)
		return fmt.Errorf("cancelling reservation %s: %w", res.ID, err)
	}

	s.log.WithField("reservation_id", res.ID).Info("reservation cancelled")
	return nil
}

// dayKey derives the idempotency key for one calendar day. runKey is minted
// once per coordinator run, so creating the same day again within that run
// reuses the key and the server can de-duplicate.
func dayKey(runKey, date string) string {
	return runKey + "-" + date
}

// bookDays creates one availability record per night.
func (s *BookingService) bookDays(ctx context.Context, roomID, reservationID string, stay entities.DateRange, runKey string) ([]entities.AvailabilityRecord, error) {
	var created []entities.AvailabilityRecord
	for _, day := range stay.Days() {
		rec, err := s.api.CreateAvailability(ctx, api.CreateAvailabilityRequest{
			RoomUnitID:    roomID,
			ReservationID: reservationID,
			Date:          day,
		}, dayKey(runKey, day))
		if err != nil {
			return created, fmt.Errorf("booking %s: %w", day, err)
		}
		created = append(created, *rec)
	}
	return created, nil
}

// compensate re-creates previously deleted availability records. Best
// effort: failures are logged and not retried, the server's own validation
// is the real backstop.
func (s *BookingService) compensate(ctx context.Context, records []entities.AvailabilityRecord, runKey string) {
	for _, rec := range records {
		_, err := s.api.CreateAvailability(ctx, api.CreateAvailabilityRequest{
			RoomUnitID:    rec.RoomUnitID,
			ReservationID: rec.ReservationID,
			Date:          rec.Date,
		}, dayKey(runKey, rec.Date))
		if err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"reservation_id": rec.ReservationID,
				"date":           rec.Date,
			}).Warn("could not restore availability record")
		}
	}
}

// rollbackRecords deletes records created by an aborted booking.
func (s *BookingService) rollbackRecords(ctx context.Context, records []entities.AvailabilityRecord) {
	for _, rec := range records {
		if err := s.api.DeleteAvailability(ctx, rec.ID); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"record_id": rec.ID,
				"date":      rec.Date,
			}).Warn("could not roll back availability record")
		}
	}
}

func maxGuests(room *entities.Room) int {
	if m := room.MaxGuests(); m > 0 {
		return m
	}
	return 1
}
