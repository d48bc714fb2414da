package http

import (
	"time"

	"github.com/nekogravitycat/room-rental-backend/internal/pkg/request"
	"github.com/nekogravitycat/room-rental-backend/internal/rental"
)

// ListRentalsRequest defines query parameters for listing rentals.
type ListRentalsRequest struct {
	request.ListParams
	RoomID    string     `form:"room_id" binding:"omitempty,uuid"`
	RenterID  string     `form:"renter_id" binding:"omitempty,uuid"`
	Status    string     `form:"status" binding:"omitempty,oneof=pending approved rejected cancelled"`
	StartTime *time.Time `form:"start_time" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime   *time.Time `form:"end_time" time_format:"2006-01-02T15:04:05Z07:00"`
	SortBy    string     `form:"sort_by" binding:"omitempty,oneof=start_time end_time created_at status"`
}

// Validate performs custom validation for ListRentalsRequest.
func (r *ListRentalsRequest) Validate() error {
	if r.StartTime != nil && r.EndTime != nil && !r.EndTime.After(*r.StartTime) {
		return rental.ErrInvalidTimeRange
	}
	return nil
}

type CreateRentalRequest struct {
	RoomID            string    `json:"room_id" binding:"required,uuid"`
	StartTime         time.Time `json:"start_time" binding:"required"`
	EndTime           time.Time `json:"end_time" binding:"required"`
	Purpose           *string   `json:"purpose"`
	ExpectedAttendees *int      `json:"expected_attendees"`
}

type RejectRentalRequest struct {
	AdminNotes *string `json:"admin_notes"`
}

type CancelRentalRequest struct {
	Reason *string `json:"reason"`
}

type EstimateCostRequest struct {
	StartTime time.Time `form:"start_time" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime   time.Time `form:"end_time" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

type EstimateCostResponse struct {
	RoomID         string    `json:"room_id"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	TotalCostCents *int64    `json:"total_cost_cents"`
}

type RentalResponse struct {
	ID                string    `json:"id"`
	RoomID            string    `json:"room_id"`
	RenterID          string    `json:"renter_id"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	Purpose           *string   `json:"purpose"`
	ExpectedAttendees *int      `json:"expected_attendees"`
	Status            string    `json:"status"`
	AdminNotes        *string   `json:"admin_notes"`
	TotalCostCents    *int64    `json:"total_cost_cents"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func NewRentalResponse(r *rental.Rental) RentalResponse {
	return RentalResponse{
		ID:                r.ID,
		RoomID:            r.RoomID,
		RenterID:          r.RenterID,
		StartTime:         r.StartTime,
		EndTime:           r.EndTime,
		Purpose:           r.Purpose,
		ExpectedAttendees: r.ExpectedAttendees,
		Status:            string(r.Status),
		AdminNotes:        r.AdminNotes,
		TotalCostCents:    r.TotalCostCents,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func NewRentalResponses(rentals []*rental.Rental) []RentalResponse {
	items := make([]RentalResponse, len(rentals))
	for i, r := range rentals {
		items[i] = NewRentalResponse(r)
	}
	return items
}
