package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/room-rental-backend/internal/auth"
	"github.com/nekogravitycat/room-rental-backend/internal/pkg/request"
	"github.com/nekogravitycat/room-rental-backend/internal/pkg/response"
	"github.com/nekogravitycat/room-rental-backend/internal/room"
	"github.com/nekogravitycat/room-rental-backend/internal/user"
)

type Handler struct {
	service room.Service
	logger  *zap.Logger
}

func NewHandler(service room.Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func isAdmin(c *gin.Context) bool {
	return auth.GetRole(c) == string(user.RoleAdmin)
}

// Create registers a room owned by the current user. Only organizers may create rooms.
func (h *Handler) Create(c *gin.Context) {
	var body CreateRoomRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	rm, err := h.service.Create(c.Request.Context(), room.CreateRequest{
		OwnerID:           auth.GetUserID(c),
		Name:              body.Name,
		Address:           body.Address,
		Capacity:          body.Capacity,
		AvailabilityStart: body.AvailabilityStart,
		AvailabilityEnd:   body.AvailabilityEnd,
		HourlyRateCents:   body.HourlyRateCents,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewRoomResponse(rm))
}

func (h *Handler) List(c *gin.Context) {
	var req ListRoomsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	filter := room.Filter{
		OwnerID:     req.OwnerID,
		Status:      room.Status(req.Status),
		MinCapacity: req.MinCapacity,
		Page:        req.Page,
		PageSize:    req.PageSize,
		SortBy:      req.SortBy,
		SortOrder:   req.NormalizedSortOrder(),
	}

	rooms, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewPageResponse(NewRoomResponses(rooms), req.Page, req.PageSize, total))
}

// Mine lists the rooms owned by the current user.
func (h *Handler) Mine(c *gin.Context) {
	rooms, err := h.service.ListByOwner(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewListResponse(NewRoomResponses(rooms)))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	rm, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewRoomResponse(rm))
}

// loadManaged fetches the room in the URI and checks that the caller may manage it.
func (h *Handler) loadManaged(c *gin.Context) (*room.Room, bool) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return nil, false
	}

	rm, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	if !h.service.CanManage(rm, auth.GetUserID(c), isAdmin(c)) {
		response.Error(c, room.ErrPermission)
		return nil, false
	}
	return rm, true
}

func (h *Handler) Enable(c *gin.Context) {
	rm, ok := h.loadManaged(c)
	if !ok {
		return
	}

	updated, err := h.service.Enable(c.Request.Context(), rm.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewRoomResponse(updated))
}

// Disable stops new requests against the room. Approved rentals are left untouched.
func (h *Handler) Disable(c *gin.Context) {
	var body DisableRoomRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	rm, ok := h.loadManaged(c)
	if !ok {
		return
	}

	updated, err := h.service.Disable(c.Request.Context(), rm.ID, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewRoomResponse(updated))
}

func (h *Handler) Delete(c *gin.Context) {
	rm, ok := h.loadManaged(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), rm.ID); err != nil {
		response.Error(c, err)
		return
	}

	h.logger.Info("room deleted", zap.String("room_id", rm.ID), zap.String("actor_id", auth.GetUserID(c)))
	c.Status(http.StatusNoContent)
}
