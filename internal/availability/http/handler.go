package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/room-rental-backend/internal/availability"
	"github.com/nekogravitycat/room-rental-backend/internal/pkg/request"
	"github.com/nekogravitycat/room-rental-backend/internal/pkg/response"
	roomHttp "github.com/nekogravitycat/room-rental-backend/internal/room/http"
)

type Handler struct {
	service availability.Service
}

func NewHandler(service availability.Service) *Handler {
	return &Handler{service: service}
}

// Rooms lists rooms that can be booked for the whole requested range.
func (h *Handler) Rooms(c *gin.Context) {
	var req AvailableRoomsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	rooms, err := h.service.GetAvailableRooms(c.Request.Context(), req.StartTime.UTC(), req.EndTime.UTC(), req.MinCapacity)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewListResponse(roomHttp.NewRoomResponses(rooms)))
}

// Slots returns the free intervals of one room.
func (h *Handler) Slots(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	var req ScheduleRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	schedule, err := h.service.RoomSchedule(c.Request.Context(), uri.ID, req.From.UTC(), req.To.UTC())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewScheduleResponse(schedule))
}
