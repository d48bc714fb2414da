package room_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/room-rental-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/room-rental-backend/internal/room"
	"github.com/nekogravitycat/room-rental-backend/internal/room/roomtest"
	"github.com/nekogravitycat/room-rental-backend/internal/user"
	"github.com/nekogravitycat/room-rental-backend/internal/user/usertest"
)

const (
	organizerID = "organizer-1"
	renterID    = "renter-1"
)

func newService() (room.Service, *roomtest.Memory) {
	ids := usertest.NewResolver()
	ids.Add(organizerID, user.RoleOrganizer)
	ids.Add(renterID, user.RoleUser)
	ids.Add("admin-1", user.RoleAdmin)

	repo := roomtest.NewMemory()
	return room.NewService(repo, ids, zap.NewNop()), repo
}

func ptr[T any](v T) *T { return &v }

func TestCreateRoom(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		req     room.CreateRequest
		wantErr error
		kind    apperror.Kind
	}{
		{
			name: "success without window",
			req:  room.CreateRequest{OwnerID: organizerID, Name: "Seminar Room 1", Address: "Main Hall", Capacity: 20},
		},
		{
			name: "success with window and rate",
			req: room.CreateRequest{
				OwnerID: organizerID, Name: "Auditorium", Capacity: 200,
				AvailabilityStart: ptr(day), AvailabilityEnd: ptr(day.AddDate(0, 0, 5)),
				HourlyRateCents: ptr(int64(5000)),
			},
		},
		{
			name:    "unknown owner",
			req:     room.CreateRequest{OwnerID: "ghost", Name: "X", Capacity: 1},
			wantErr: user.ErrNotFound,
			kind:    apperror.KindNotFound,
		},
		{
			name:    "owner is not an organizer",
			req:     room.CreateRequest{OwnerID: renterID, Name: "X", Capacity: 1},
			wantErr: room.ErrNotOrganizer,
			kind:    apperror.KindForbidden,
		},
		{
			name:    "admin is not an organizer either",
			req:     room.CreateRequest{OwnerID: "admin-1", Name: "X", Capacity: 1},
			wantErr: room.ErrNotOrganizer,
			kind:    apperror.KindForbidden,
		},
		{
			name:    "zero capacity",
			req:     room.CreateRequest{OwnerID: organizerID, Name: "X", Capacity: 0},
			wantErr: room.ErrCapacityInvalid,
			kind:    apperror.KindInvalid,
		},
		{
			name:    "negative capacity",
			req:     room.CreateRequest{OwnerID: organizerID, Name: "X", Capacity: -3},
			wantErr: room.ErrCapacityInvalid,
			kind:    apperror.KindInvalid,
		},
		{
			name: "window end equals start",
			req: room.CreateRequest{
				OwnerID: organizerID, Name: "X", Capacity: 5,
				AvailabilityStart: ptr(day), AvailabilityEnd: ptr(day),
			},
			wantErr: room.ErrInvalidWindow,
			kind:    apperror.KindInvalid,
		},
		{
			name: "window end before start",
			req: room.CreateRequest{
				OwnerID: organizerID, Name: "X", Capacity: 5,
				AvailabilityStart: ptr(day), AvailabilityEnd: ptr(day.Add(-time.Hour)),
			},
			wantErr: room.ErrInvalidWindow,
			kind:    apperror.KindInvalid,
		},
		{
			name: "open-ended window is allowed",
			req: room.CreateRequest{
				OwnerID: organizerID, Name: "Lab", Capacity: 5,
				AvailabilityStart: ptr(day),
			},
		},
		{
			name:    "negative rate",
			req:     room.CreateRequest{OwnerID: organizerID, Name: "X", Capacity: 5, HourlyRateCents: ptr(int64(-1))},
			wantErr: room.ErrNegativeRate,
			kind:    apperror.KindInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService()
			r, err := svc.Create(ctx, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.kind, apperror.KindOf(err))
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, r.ID)
			assert.Equal(t, room.StatusEnabled, r.Status)
			assert.GreaterOrEqual(t, r.Capacity, 1)
			assert.Equal(t, tt.req.OwnerID, r.OwnerID)
		})
	}
}

func TestEnableDisable(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()

	r, err := svc.Create(ctx, room.CreateRequest{OwnerID: organizerID, Name: "Studio", Capacity: 8})
	require.NoError(t, err)

	_, err = svc.Disable(ctx, r.ID, "   ")
	assert.ErrorIs(t, err, room.ErrReasonRequired)

	disabled, err := svc.Disable(ctx, r.ID, "floor renovation")
	require.NoError(t, err)
	assert.Equal(t, room.StatusDisabled, disabled.Status)
	require.NotNil(t, disabled.DisabledReason)
	assert.Equal(t, "floor renovation", *disabled.DisabledReason)

	stored, err := svc.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsEnabled())

	enabled, err := svc.Enable(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, enabled.IsEnabled())
	assert.Nil(t, enabled.DisabledReason)

	_, err = svc.Enable(ctx, "missing")
	assert.ErrorIs(t, err, room.ErrNotFound)
	_, err = svc.Disable(ctx, "missing", "x")
	assert.ErrorIs(t, err, room.ErrNotFound)
}

func TestListByOwnerAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService()

	a, err := svc.Create(ctx, room.CreateRequest{OwnerID: organizerID, Name: "A", Capacity: 2})
	require.NoError(t, err)
	b, err := svc.Create(ctx, room.CreateRequest{OwnerID: organizerID, Name: "B", Capacity: 4})
	require.NoError(t, err)

	rooms, err := svc.ListByOwner(ctx, organizerID)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, a.ID, rooms[0].ID)
	assert.Equal(t, b.ID, rooms[1].ID)

	repo.InUse[a.ID] = true
	err = svc.Delete(ctx, a.ID)
	assert.ErrorIs(t, err, room.ErrRoomInUse)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	require.NoError(t, svc.Delete(ctx, b.ID))
	_, err = svc.GetByID(ctx, b.ID)
	assert.ErrorIs(t, err, room.ErrNotFound)
}

func TestCanManage(t *testing.T) {
	svc, _ := newService()
	r := &room.Room{OwnerID: organizerID}

	assert.True(t, svc.CanManage(r, organizerID, false))
	assert.True(t, svc.CanManage(r, "someone", true))
	assert.False(t, svc.CanManage(r, renterID, false))
	assert.False(t, svc.CanManage(r, "", false))
}
