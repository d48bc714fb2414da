package rental

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/room-rental-backend/internal/event"
	"github.com/nekogravitycat/room-rental-backend/internal/pkg/clock"
	"github.com/nekogravitycat/room-rental-backend/internal/room"
)

type CreateRequest struct {
	RoomID            string
	RenterID          string
	StartTime         time.Time
	EndTime           time.Time
	Purpose           *string
	ExpectedAttendees *int
}

// Publisher receives rental lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, e event.RentalEvent) error
}

type Service interface {
	Request(ctx context.Context, req CreateRequest) (*Rental, error)
	Approve(ctx context.Context, id string, approverID string, isAdmin bool) (*Rental, error)
	Reject(ctx context.Context, id string, rejecterID string, adminNotes *string, isAdmin bool) (*Rental, error)
	AdminCancel(ctx context.Context, id string, reason *string) (*Rental, error)

	GetByID(ctx context.Context, id string) (*Rental, error)
	List(ctx context.Context, filter Filter) ([]*Rental, int, error)
	ListByRoom(ctx context.Context, roomID string) ([]*Rental, error)
	ListByRenter(ctx context.Context, renterID string) ([]*Rental, error)
	// ListApproved returns approved rentals overlapping [start, end). An empty roomID matches every room.
	ListApproved(ctx context.Context, roomID string, start, end time.Time) ([]*Rental, error)

	// EstimateCost returns the display cost of renting the room for [start, end), or nil without an hourly rate.
	EstimateCost(ctx context.Context, roomID string, start, end time.Time) (*int64, error)
}

type service struct {
	repo        Repository
	roomService room.Service
	publisher   Publisher
	clock       clock.Clock
	logger      *zap.Logger
}

func NewService(repo Repository, roomService room.Service, publisher Publisher, clk clock.Clock, logger *zap.Logger) Service {
	return &service{
		repo:        repo,
		roomService: roomService,
		publisher:   publisher,
		clock:       clk,
		logger:      logger,
	}
}

func (s *service) Request(ctx context.Context, req CreateRequest) (*Rental, error) {
	rm, err := s.roomService.GetByID(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}

	start, end := req.StartTime.UTC(), req.EndTime.UTC()
	if err := ValidateRequest(rm, start, end, req.ExpectedAttendees, s.clock.Now()); err != nil {
		return nil, err
	}

	// Only approved rentals are checked here. Competing pending requests may
	// coexist and are arbitrated at approval time.
	conflict, err := detectConflict(ctx, s.repo, rm.ID, start, end, "")
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, ErrConflict
	}

	r := &Rental{
		RoomID:            rm.ID,
		RenterID:          req.RenterID,
		StartTime:         start,
		EndTime:           end,
		Purpose:           trimmed(req.Purpose),
		ExpectedAttendees: req.ExpectedAttendees,
		Status:            StatusPending,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}

	s.publish(ctx, event.TypeRentalRequested, r, req.RenterID)
	return r, nil
}

func (s *service) Approve(ctx context.Context, id string, approverID string, isAdmin bool) (*Rental, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusPending {
		return nil, ErrNotPending
	}

	rm, err := s.roomService.GetByID(ctx, r.RoomID)
	if err != nil {
		return nil, err
	}
	if !s.roomService.CanManage(rm, approverID, isAdmin) {
		return nil, ErrApproveForbidden
	}

	// Re-check and status flip happen under the room lock so that two
	// overlapping approvals on the same room cannot both succeed.
	err = s.repo.WithRoomLock(ctx, r.RoomID, func(tx Repository) error {
		conflict, err := detectConflict(ctx, tx, r.RoomID, r.StartTime, r.EndTime, r.ID)
		if err != nil {
			return err
		}
		if conflict != nil {
			s.logger.Info("approval blocked by existing booking",
				zap.String("rental_id", r.ID),
				zap.String("conflicting_rental_id", conflict.ID),
				zap.String("room_id", r.RoomID),
			)
			return ErrConflict
		}

		r.Status = StatusApproved
		if rm.HourlyRateCents != nil {
			cost := CostCents(*rm.HourlyRateCents, r.StartTime, r.EndTime)
			r.TotalCostCents = &cost
		}
		return tx.Transition(ctx, r, StatusPending)
	})
	if err != nil {
		if errors.Is(err, ErrStatusChanged) {
			return nil, ErrNotPending
		}
		return nil, err
	}

	s.logger.Info("rental approved", zap.String("rental_id", r.ID), zap.String("room_id", r.RoomID), zap.String("approver_id", approverID))
	s.publish(ctx, event.TypeRentalApproved, r, approverID)
	return r, nil
}

func (s *service) Reject(ctx context.Context, id string, rejecterID string, adminNotes *string, isAdmin bool) (*Rental, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusPending {
		return nil, ErrNotPending
	}

	rm, err := s.roomService.GetByID(ctx, r.RoomID)
	if err != nil {
		return nil, err
	}
	if !s.roomService.CanManage(rm, rejecterID, isAdmin) {
		return nil, ErrRejectForbidden
	}

	r.Status = StatusRejected
	r.AdminNotes = adminNotes
	if err := s.repo.Transition(ctx, r, StatusPending); err != nil {
		if errors.Is(err, ErrStatusChanged) {
			return nil, ErrNotPending
		}
		return nil, err
	}

	s.logger.Info("rental rejected", zap.String("rental_id", r.ID), zap.String("room_id", r.RoomID), zap.String("rejecter_id", rejecterID))
	s.publish(ctx, event.TypeRentalRejected, r, rejecterID)
	return r, nil
}

// AdminCancel frees a previously approved slot. Callers must have checked the admin role.
func (s *service) AdminCancel(ctx context.Context, id string, reason *string) (*Rental, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(r.Status, StatusCancelled) {
		return nil, ErrNotCancellable
	}

	r.Status = StatusCancelled
	r.AdminNotes = reason
	if err := s.repo.Transition(ctx, r, StatusApproved); err != nil {
		if errors.Is(err, ErrStatusChanged) {
			return nil, ErrNotCancellable
		}
		return nil, err
	}

	s.logger.Info("rental cancelled", zap.String("rental_id", r.ID), zap.String("room_id", r.RoomID))
	s.publish(ctx, event.TypeRentalCancelled, r, "")
	return r, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Rental, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Rental, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) ListByRoom(ctx context.Context, roomID string) ([]*Rental, error) {
	if _, err := s.roomService.GetByID(ctx, roomID); err != nil {
		return nil, err
	}
	return s.repo.ListAll(ctx, Filter{RoomID: roomID})
}

func (s *service) ListByRenter(ctx context.Context, renterID string) ([]*Rental, error) {
	return s.repo.ListAll(ctx, Filter{RenterID: renterID})
}

func (s *service) ListApproved(ctx context.Context, roomID string, start, end time.Time) ([]*Rental, error) {
	return s.repo.ListApproved(ctx, roomID, start, end)
}

func (s *service) EstimateCost(ctx context.Context, roomID string, start, end time.Time) (*int64, error) {
	if !end.After(start) {
		return nil, ErrInvalidTimeRange
	}
	rm, err := s.roomService.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if rm.HourlyRateCents == nil {
		return nil, nil
	}
	cost := CostCents(*rm.HourlyRateCents, start, end)
	return &cost, nil
}

// publish is best effort: a broker outage never fails the operation that produced the event.
func (s *service) publish(ctx context.Context, typ event.Type, r *Rental, actorID string) {
	e := event.RentalEvent{
		Type:           typ,
		RentalID:       r.ID,
		RoomID:         r.RoomID,
		RenterID:       r.RenterID,
		ActorID:        actorID,
		Status:         string(r.Status),
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		TotalCostCents: r.TotalCostCents,
		Notes:          r.AdminNotes,
		OccurredAt:     s.clock.Now(),
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("failed to publish rental event",
			zap.String("type", string(typ)),
			zap.String("rental_id", r.ID),
			zap.Error(err),
		)
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
