package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/room-rental-backend/internal/auth"
	"github.com/nekogravitycat/room-rental-backend/internal/pkg/request"
	"github.com/nekogravitycat/room-rental-backend/internal/pkg/response"
	"github.com/nekogravitycat/room-rental-backend/internal/rental"
	"github.com/nekogravitycat/room-rental-backend/internal/room"
	"github.com/nekogravitycat/room-rental-backend/internal/user"
)

type Handler struct {
	service     rental.Service
	roomService room.Service
}

func NewHandler(service rental.Service, roomService room.Service) *Handler {
	return &Handler{service: service, roomService: roomService}
}

func isAdmin(c *gin.Context) bool {
	return auth.GetRole(c) == string(user.RoleAdmin)
}

// bindOptionalJSON binds a JSON body that clients may omit entirely.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateRentalRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	r, err := h.service.Request(c.Request.Context(), rental.CreateRequest{
		RoomID:            body.RoomID,
		RenterID:          auth.GetUserID(c),
		StartTime:         body.StartTime,
		EndTime:           body.EndTime,
		Purpose:           body.Purpose,
		ExpectedAttendees: body.ExpectedAttendees,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewRentalResponse(r))
}

// List returns the caller's rentals. Admins may list anyone's by renter_id.
func (h *Handler) List(c *gin.Context) {
	var req ListRentalsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	renterID := auth.GetUserID(c)
	if isAdmin(c) {
		renterID = req.RenterID
	}

	filter := rental.Filter{
		RoomID:    req.RoomID,
		RenterID:  renterID,
		Status:    rental.Status(req.Status),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.NormalizedSortOrder(),
	}

	rentals, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewPageResponse(NewRentalResponses(rentals), req.Page, req.PageSize, total))
}

// Get returns a rental to its renter, the room organizer or an admin.
func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	ctx := c.Request.Context()
	r, err := h.service.GetByID(ctx, uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	userID := auth.GetUserID(c)
	if r.RenterID != userID && !isAdmin(c) {
		rm, err := h.roomService.GetByID(ctx, r.RoomID)
		if err != nil {
			response.Error(c, err)
			return
		}
		if !h.roomService.CanManage(rm, userID, false) {
			response.Error(c, rental.ErrViewForbidden)
			return
		}
	}

	c.JSON(http.StatusOK, NewRentalResponse(r))
}

// ListByRoom lists every rental of a room for its organizer or an admin.
func (h *Handler) ListByRoom(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	ctx := c.Request.Context()
	rm, err := h.roomService.GetByID(ctx, uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !h.roomService.CanManage(rm, auth.GetUserID(c), isAdmin(c)) {
		response.Error(c, rental.ErrViewForbidden)
		return
	}

	rentals, err := h.service.ListByRoom(ctx, rm.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewListResponse(NewRentalResponses(rentals)))
}

func (h *Handler) Approve(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	r, err := h.service.Approve(c.Request.Context(), uri.ID, auth.GetUserID(c), isAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewRentalResponse(r))
}

func (h *Handler) Reject(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	var body RejectRentalRequest
	if err := bindOptionalJSON(c, &body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	r, err := h.service.Reject(c.Request.Context(), uri.ID, auth.GetUserID(c), body.AdminNotes, isAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewRentalResponse(r))
}

// Cancel frees an approved slot. Access Control: Admin only.
func (h *Handler) Cancel(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	var body CancelRentalRequest
	if err := bindOptionalJSON(c, &body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	r, err := h.service.AdminCancel(c.Request.Context(), uri.ID, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewRentalResponse(r))
}

// Estimate returns the display cost of renting a room for the queried range.
func (h *Handler) Estimate(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	var req EstimateCostRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	cost, err := h.service.EstimateCost(c.Request.Context(), uri.ID, req.StartTime, req.EndTime)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, EstimateCostResponse{
		RoomID:         uri.ID,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		TotalCostCents: cost,
	})
}
