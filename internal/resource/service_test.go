package resource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	nextID int64
	rows   map[int64]*Resource
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[int64]*Resource)}
}

func (f *fakeRepo) Create(ctx context.Context, r *Resource) error {
	f.nextID++
	r.ID = f.nextID
	clone := *r
	f.rows[r.ID] = &clone
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id int64) (*Resource, error) {
	if r, ok := f.rows[id]; ok {
		clone := *r
		return &clone, nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) List(ctx context.Context, filter Filter) ([]*Resource, int, error) {
	out := make([]*Resource, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Update(ctx context.Context, r *Resource) error {
	if _, ok := f.rows[r.ID]; !ok {
		return ErrNotFound
	}
	clone := *r
	f.rows[r.ID] = &clone
	return nil
}

func TestCreateAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())

	r, err := svc.Create(ctx, CreateRequest{
		Name:               "Room 201",
		OperatingStartSlot: 16,
		OperatingEndSlot:   44,
	})
	require.NoError(t, err)
	assert.True(t, r.IsActive)
	assert.Equal(t, 1, r.MinSlotsPerBooking)
	assert.Equal(t, 14, r.AdvanceBookingDays)
}

func TestCreateValidates(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())

	_, err := svc.Create(ctx, CreateRequest{OperatingStartSlot: 16, OperatingEndSlot: 44})
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = svc.Create(ctx, CreateRequest{Name: "x", OperatingStartSlot: 44, OperatingEndSlot: 16})
	assert.ErrorIs(t, err, ErrInvalidSlots)
}

func TestUpdatePartial(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())

	r, err := svc.Create(ctx, CreateRequest{
		Name:               "Room 201",
		OperatingStartSlot: 16,
		OperatingEndSlot:   44,
	})
	require.NoError(t, err)

	inactive := false
	name := "Room 202"
	updated, err := svc.Update(ctx, r.ID, UpdateRequest{Name: &name, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Room 202", updated.Name)
	assert.False(t, updated.IsActive)
	assert.Equal(t, 44, updated.OperatingEndSlot, "untouched fields survive")

	badEnd := 10
	_, err = svc.Update(ctx, r.ID, UpdateRequest{OperatingEndSlot: &badEnd})
	assert.ErrorIs(t, err, ErrInvalidSlots)

	_, err = svc.Update(ctx, 999, UpdateRequest{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}
