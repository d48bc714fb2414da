package http

import (
	"time"

	"github.com/nekogravitycat/room-rental-backend/internal/pkg/request"
	"github.com/nekogravitycat/room-rental-backend/internal/room"
)

// ListRoomsRequest defines query parameters for listing rooms.
type ListRoomsRequest struct {
	request.ListParams
	OwnerID     string `form:"owner_id" binding:"omitempty,uuid"`
	Status      string `form:"status" binding:"omitempty,oneof=enabled disabled"`
	MinCapacity int    `form:"min_capacity" binding:"min=0"`
	SortBy      string `form:"sort_by" binding:"omitempty,oneof=name capacity created_at"`
}

// CreateRoomRequest is the payload for registering a room.
// Capacity and window ordering are checked by the service so clients get the domain message.
type CreateRoomRequest struct {
	Name              string     `json:"name" binding:"required"`
	Address           string     `json:"address"`
	Capacity          int        `json:"capacity"`
	AvailabilityStart *time.Time `json:"availability_start"`
	AvailabilityEnd   *time.Time `json:"availability_end"`
	HourlyRateCents   *int64     `json:"hourly_rate_cents"`
}

type DisableRoomRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type RoomResponse struct {
	ID                string     `json:"id"`
	OwnerID           string     `json:"owner_id"`
	Name              string     `json:"name"`
	Address           string     `json:"address"`
	Capacity          int        `json:"capacity"`
	Status            string     `json:"status"`
	AvailabilityStart *time.Time `json:"availability_start"`
	AvailabilityEnd   *time.Time `json:"availability_end"`
	HourlyRateCents   *int64     `json:"hourly_rate_cents"`
	DisabledReason    *string    `json:"disabled_reason,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// RoomTag is a brief representation of a room.
type RoomTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewRoomResponse(r *room.Room) RoomResponse {
	return RoomResponse{
		ID:                r.ID,
		OwnerID:           r.OwnerID,
		Name:              r.Name,
		Address:           r.Address,
		Capacity:          r.Capacity,
		Status:            string(r.Status),
		AvailabilityStart: r.AvailabilityStart,
		AvailabilityEnd:   r.AvailabilityEnd,
		HourlyRateCents:   r.HourlyRateCents,
		DisabledReason:    r.DisabledReason,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func NewRoomResponses(rooms []*room.Room) []RoomResponse {
	items := make([]RoomResponse, len(rooms))
	for i, r := range rooms {
		items[i] = NewRoomResponse(r)
	}
	return items
}
