package room

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/room-rental-backend/internal/user"
)

// IdentityResolver looks up who an actor is.
type IdentityResolver interface {
	Resolve(ctx context.Context, id string) (*user.Identity, error)
}

type CreateRequest struct {
	OwnerID           string
	Name              string
	Address           string
	Capacity          int
	AvailabilityStart *time.Time
	AvailabilityEnd   *time.Time
	HourlyRateCents   *int64
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Room, error)
	GetByID(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context, filter Filter) ([]*Room, int, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Room, error)
	ListEnabled(ctx context.Context, minCapacity int) ([]*Room, error)
	Enable(ctx context.Context, id string) (*Room, error)
	Disable(ctx context.Context, id string, reason string) (*Room, error)
	Delete(ctx context.Context, id string) error

	// CanManage reports whether the actor may change the room's status or decide its rentals.
	CanManage(r *Room, actorID string, isAdmin bool) bool
}

type service struct {
	repo     Repository
	identity IdentityResolver
	logger   *zap.Logger
}

func NewService(repo Repository, identity IdentityResolver, logger *zap.Logger) Service {
	return &service{
		repo:     repo,
		identity: identity,
		logger:   logger,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Room, error) {
	owner, err := s.identity.Resolve(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}
	if owner.Role != user.RoleOrganizer {
		return nil, ErrNotOrganizer
	}

	if req.Capacity < 1 {
		return nil, ErrCapacityInvalid
	}
	if req.AvailabilityStart != nil && req.AvailabilityEnd != nil && !req.AvailabilityEnd.After(*req.AvailabilityStart) {
		return nil, ErrInvalidWindow
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}
	if req.HourlyRateCents != nil && *req.HourlyRateCents < 0 {
		return nil, ErrNegativeRate
	}

	r := &Room{
		OwnerID:           owner.ID,
		Name:              strings.TrimSpace(req.Name),
		Address:           strings.TrimSpace(req.Address),
		Capacity:          req.Capacity,
		Status:            StatusEnabled,
		AvailabilityStart: utcPtr(req.AvailabilityStart),
		AvailabilityEnd:   utcPtr(req.AvailabilityEnd),
		HourlyRateCents:   req.HourlyRateCents,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("room created", zap.String("room_id", r.ID), zap.String("owner_id", r.OwnerID), zap.Int("capacity", r.Capacity))
	return r, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Room, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) ListByOwner(ctx context.Context, ownerID string) ([]*Room, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *service) ListEnabled(ctx context.Context, minCapacity int) ([]*Room, error) {
	return s.repo.ListEnabled(ctx, minCapacity)
}

func (s *service) Enable(ctx context.Context, id string) (*Room, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.Status = StatusEnabled
	r.DisabledReason = nil
	if err := s.repo.UpdateStatus(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("room enabled", zap.String("room_id", r.ID))
	return r, nil
}

// Disable marks the room as not bookable. Approved rentals are left untouched;
// freeing them is a separate, explicit cancellation.
func (s *service) Disable(ctx context.Context, id string, reason string) (*Room, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	r.Status = StatusDisabled
	r.DisabledReason = &reason
	if err := s.repo.UpdateStatus(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("room disabled", zap.String("room_id", r.ID), zap.String("reason", reason))
	return r, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) CanManage(r *Room, actorID string, isAdmin bool) bool {
	return isAdmin || (actorID != "" && actorID == r.OwnerID)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
