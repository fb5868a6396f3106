package repo

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/user/entity"
)

func TestMemoryRepo_ConcurrentDuplicateRegistration(t *testing.T) {
	r := NewMemoryRepo()
	var wg sync.WaitGroup
	var created atomic.Int32
	for i := 1; i <= 16; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			if err := r.Create(context.Background(), &entity.User{ID: id, Email: "same@example.com"}); err == nil {
				created.Add(1)
			}
		}(int64(i))
	}
	wg.Wait()
	assert.Equal(t, int32(1), created.Load())
}

func TestMemoryRepo_UpdateMovesEmailIndex(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, &entity.User{ID: 1, Name: "Alice", Email: "a@example.com", PasswordHash: "h"}))

	u := &entity.User{ID: 1, Name: "Alice", Email: "b@example.com"}
	require.NoError(t, r.Update(ctx, u))
	assert.Equal(t, "h", u.PasswordHash)

	_, err := r.GetByEmail(ctx, "a@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := r.GetByEmail(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)

	assert.ErrorIs(t, r.Update(ctx, &entity.User{ID: 2}), ErrNotFound)
}
