package http

import (
	"time"

	"github.com/nekogravitycat/room-rental-backend/internal/availability"
	"github.com/nekogravitycat/room-rental-backend/internal/rental"
)

type AvailableRoomsRequest struct {
	StartTime   time.Time `form:"start_time" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime     time.Time `form:"end_time" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	MinCapacity int       `form:"min_capacity" binding:"min=0"`
}

type ScheduleRequest struct {
	From time.Time `form:"from" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	To   time.Time `form:"to" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

type SlotResponse struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type ScheduleResponse struct {
	RoomID    string         `json:"room_id"`
	From      time.Time      `json:"from"`
	To        time.Time      `json:"to"`
	FreeSlots []SlotResponse `json:"free_slots"`
}

func newSlotResponses(slots []rental.TimeSlot) []SlotResponse {
	items := make([]SlotResponse, len(slots))
	for i, s := range slots {
		items[i] = SlotResponse{StartTime: s.StartTime, EndTime: s.EndTime}
	}
	return items
}

func NewScheduleResponse(s *availability.Schedule) ScheduleResponse {
	return ScheduleResponse{
		RoomID:    s.RoomID,
		From:      s.From,
		To:        s.To,
		FreeSlots: newSlotResponses(s.FreeSlots),
	}
}
