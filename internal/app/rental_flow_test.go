package app_test

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/room-rental-backend/internal/pkg/response"
	rentalHttp "github.com/nekogravitycat/room-rental-backend/internal/rental/http"
	roomHttp "github.com/nekogravitycat/room-rental-backend/internal/room/http"
	"github.com/nekogravitycat/room-rental-backend/internal/user"
)

func createRoom(t *testing.T, token string, body map[string]any) roomHttp.RoomResponse {
	t.Helper()
	w := executeRequest(http.MethodPost, "/v1/rooms", body, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[roomHttp.RoomResponse](t, w)
}

func requestRental(t *testing.T, token, roomID string, start, end time.Time) rentalHttp.RentalResponse {
	t.Helper()
	w := executeRequest(http.MethodPost, "/v1/rentals", map[string]any{
		"room_id": roomID, "start_time": start, "end_time": end,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[rentalHttp.RentalResponse](t, w)
}

func TestRoomCreation(t *testing.T) {
	requireDB(t)
	clearTables(t)

	_, orgToken := createTestUser(t, "org@example.com", user.RoleOrganizer)
	_, renterToken := createTestUser(t, "renter@example.com", user.RoleUser)

	t.Run("renter cannot create rooms", func(t *testing.T) {
		w := executeRequest(http.MethodPost, "/v1/rooms", map[string]any{"name": "A", "capacity": 5}, renterToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "Only organizers can create rooms")
	})

	t.Run("capacity must be positive", func(t *testing.T) {
		w := executeRequest(http.MethodPost, "/v1/rooms", map[string]any{"name": "A", "capacity": 0}, orgToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "capacity must be at least 1")
	})

	t.Run("organizer creates room", func(t *testing.T) {
		rm := createRoom(t, orgToken, map[string]any{"name": "Seminar 1", "capacity": 20, "hourly_rate_cents": 1200})
		assert.Equal(t, "enabled", rm.Status)

		w := executeRequest(http.MethodGet, "/v1/rooms/"+rm.ID, nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unauthenticated create", func(t *testing.T) {
		w := executeRequest(http.MethodPost, "/v1/rooms", map[string]any{"name": "A", "capacity": 5}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRentalLifecycle(t *testing.T) {
	requireDB(t)
	clearTables(t)

	_, orgToken := createTestUser(t, "org@example.com", user.RoleOrganizer)
	_, otherOrgToken := createTestUser(t, "org2@example.com", user.RoleOrganizer)
	_, adminToken := createTestUser(t, "admin@example.com", user.RoleAdmin)
	_, renterA := createTestUser(t, "a@example.com", user.RoleUser)
	_, renterB := createTestUser(t, "b@example.com", user.RoleUser)

	rm := createRoom(t, orgToken, map[string]any{"name": "Hall", "capacity": 20, "hourly_rate_cents": 1000})
	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)

	first := requestRental(t, renterA, rm.ID, start, start.Add(2*time.Hour))
	second := requestRental(t, renterB, rm.ID, start.Add(time.Hour), start.Add(3*time.Hour))
	assert.Equal(t, "pending", first.Status)

	// Over capacity
	w := executeRequest(http.MethodPost, "/v1/rentals", map[string]any{
		"room_id": rm.ID, "start_time": start, "end_time": start.Add(time.Hour), "expected_attendees": 25,
	}, renterA)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "exceeds room capacity")

	// Another organizer cannot approve
	w = executeRequest(http.MethodPost, "/v1/rentals/"+first.ID+"/approve", nil, otherOrgToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = executeRequest(http.MethodPost, "/v1/rentals/"+first.ID+"/approve", nil, orgToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	approved := decode[rentalHttp.RentalResponse](t, w)
	assert.Equal(t, "approved", approved.Status)
	require.NotNil(t, approved.TotalCostCents)
	assert.Equal(t, int64(2000), *approved.TotalCostCents)

	// Second overlapping approval conflicts and stays pending
	w = executeRequest(http.MethodPost, "/v1/rentals/"+second.ID+"/approve", nil, orgToken)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = executeRequest(http.MethodGet, "/v1/rentals/"+second.ID, nil, renterB)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pending", decode[rentalHttp.RentalResponse](t, w).Status)

	// Renter B cannot see renter A's rental
	w = executeRequest(http.MethodGet, "/v1/rentals/"+first.ID, nil, renterB)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// New overlapping request conflicts at request time
	w = executeRequest(http.MethodPost, "/v1/rentals", map[string]any{
		"room_id": rm.ID, "start_time": start.Add(30 * time.Minute), "end_time": start.Add(150 * time.Minute),
	}, renterB)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already booked")

	// Room is not available while the approval stands
	query := fmt.Sprintf("/v1/availability/rooms?start_time=%s&end_time=%s",
		start.Format(time.RFC3339), start.Add(time.Hour).Format(time.RFC3339))
	w = executeRequest(http.MethodGet, query, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[response.ListResponse[roomHttp.RoomResponse]](t, w).Items)

	// Only admins cancel
	w = executeRequest(http.MethodPost, "/v1/rentals/"+first.ID+"/cancel", map[string]any{"reason": "closed"}, orgToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = executeRequest(http.MethodPost, "/v1/rentals/"+first.ID+"/cancel", map[string]any{"reason": "closed"}, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "cancelled", decode[rentalHttp.RentalResponse](t, w).Status)

	w = executeRequest(http.MethodGet, query, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[response.ListResponse[roomHttp.RoomResponse]](t, w).Items, 1)

	// Rooms with rentals cannot be deleted
	w = executeRequest(http.MethodDelete, "/v1/rooms/"+rm.ID, nil, orgToken)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Reject the loser explicitly; it is then final
	w = executeRequest(http.MethodPost, "/v1/rentals/"+second.ID+"/reject", map[string]any{"admin_notes": "taken"}, orgToken)
	require.Equal(t, http.StatusOK, w.Code)
	w = executeRequest(http.MethodPost, "/v1/rentals/"+second.ID+"/approve", nil, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "rental is not pending")
}

func TestDisableRoom(t *testing.T) {
	requireDB(t)
	clearTables(t)

	_, orgToken := createTestUser(t, "org@example.com", user.RoleOrganizer)
	_, renter := createTestUser(t, "a@example.com", user.RoleUser)

	rm := createRoom(t, orgToken, map[string]any{"name": "Lab", "capacity": 10})
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	r := requestRental(t, renter, rm.ID, start, start.Add(time.Hour))

	w := executeRequest(http.MethodPost, "/v1/rentals/"+r.ID+"/approve", nil, orgToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = executeRequest(http.MethodPost, "/v1/rooms/"+rm.ID+"/disable", map[string]any{"reason": "renovation"}, renter)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = executeRequest(http.MethodPost, "/v1/rooms/"+rm.ID+"/disable", map[string]any{"reason": "renovation"}, orgToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "disabled", decode[roomHttp.RoomResponse](t, w).Status)

	w = executeRequest(http.MethodPost, "/v1/rentals", map[string]any{
		"room_id": rm.ID, "start_time": start.Add(2 * time.Hour), "end_time": start.Add(3 * time.Hour),
	}, renter)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "room is disabled")

	w = executeRequest(http.MethodGet, "/v1/rentals/"+r.ID, nil, renter)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "approved", decode[rentalHttp.RentalResponse](t, w).Status)
}

func TestConcurrentApprovals(t *testing.T) {
	requireDB(t)
	clearTables(t)

	_, orgToken := createTestUser(t, "org@example.com", user.RoleOrganizer)
	_, adminToken := createTestUser(t, "admin@example.com", user.RoleAdmin)
	_, renter := createTestUser(t, "a@example.com", user.RoleUser)

	rm := createRoom(t, orgToken, map[string]any{"name": "Studio", "capacity": 5})
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)

	const n = 6
	ids := make([]string, n)
	for i := range ids {
		ids[i] = requestRental(t, renter, rm.ID, start.Add(time.Duration(i)*time.Minute), start.Add(time.Hour)).ID
	}

	codes := make([]int, n)
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			token := orgToken
			if i%2 == 1 {
				token = adminToken
			}
			codes[i] = executeRequest(http.MethodPost, "/v1/rentals/"+id+"/approve", nil, token).Code
		}(i, id)
	}
	wg.Wait()

	var ok, conflicts int
	for _, code := range codes {
		switch code {
		case http.StatusOK:
			ok++
		case http.StatusConflict:
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
}
