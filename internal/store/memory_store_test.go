package store

import (
	"context"
	"testing"
	"time"

	storeerrors "github.com/bindassticks/storefront/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryStore(start time.Time) *MemoryStore {
	s := NewMemoryStore()
	clock := start
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestMemoryStore_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	s := newTestMemoryStore(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	naruto, err := s.Create(ctx, Product{Name: "Naruto", Price: 49_00, Category: "anime-manga", Subcategory: "naruto"})
	require.NoError(t, err)
	require.NotEmpty(t, naruto.ID)
	assert.False(t, naruto.CreatedAt.IsZero())
	assert.Equal(t, naruto.CreatedAt, naruto.UpdatedAt)

	_, err = s.Create(ctx, Product{Name: "Goku", Price: 59_00, Category: "anime-manga", Subcategory: "dragon-ball"})
	require.NoError(t, err)
	meme, err := s.Create(ctx, Product{Name: "Doge", Price: 29_00, Category: "memes"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "all newest first", filter: Filter{}, want: []string{"Doge", "Goku", "Naruto"}},
		{name: "by category", filter: Filter{Category: "anime-manga"}, want: []string{"Goku", "Naruto"}},
		{name: "by subcategory", filter: Filter{Category: "anime-manga", Subcategory: "naruto"}, want: []string{"Naruto"}},
		{name: "limit", filter: Filter{Limit: 1}, want: []string{"Doge"}},
		{name: "no match", filter: Filter{Category: "cars"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := s.Find(ctx, tt.filter)
			require.NoError(t, err)
			names := make([]string, 0, len(list))
			for _, p := range list {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	found, err := s.FindByID(ctx, meme.ID)
	require.NoError(t, err)
	assert.Equal(t, *meme, *found)
}

func TestMemoryStore_Update(t *testing.T) {
	ctx := context.Background()
	s := newTestMemoryStore(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	created, err := s.Create(ctx, Product{Name: "Doge", Price: 29_00, Category: "memes"})
	require.NoError(t, err)

	created.Name = "Doge 2"
	created.Price = 39_00
	updated, err := s.Update(ctx, *created)
	require.NoError(t, err)
	assert.Equal(t, "Doge 2", updated.Name)
	assert.Equal(t, int64(39_00), updated.Price)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	_, err = s.Update(ctx, Product{ID: "missing"})
	assert.ErrorIs(t, err, storeerrors.ErrProductNotFound)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	created, err := s.Create(ctx, Product{Name: "Doge", Category: "memes"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, created.ID))
	_, err = s.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, storeerrors.ErrProductNotFound)
	assert.ErrorIs(t, s.Delete(ctx, created.ID), storeerrors.ErrProductNotFound)
}
