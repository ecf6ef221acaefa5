package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardlyhq/cardly-backend/internal/models"
)

func testUser(id, email string) models.User {
	return models.User{
		ID:        id,
		Email:     email,
		Name:      "Test User",
		Password:  "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		CreatedAt: time.Now().Truncate(time.Second),
	}
}

func TestUserStoreEmailNormalization(t *testing.T) {
	s := NewUserStore(nil, NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testUser("u1", "  Foo@Bar.com ")))

	// Lookups under any casing or padding of the email resolve.
	got, err := s.GetByEmail(ctx, "foo@bar.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, "foo@bar.com", got.Email)

	got, err = s.GetByEmail(ctx, "FOO@BAR.COM  ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)
}

func TestUserStoreDualKeys(t *testing.T) {
	fake := newFakeKV()
	s := NewUserStore(fake, NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testUser("u1", "x@y.com")))

	assert.Contains(t, fake.data, UserEmailKeyPrefix+"x@y.com")
	assert.Contains(t, fake.data, UserIDKeyPrefix+"u1")

	byEmail, err := s.GetByEmail(ctx, "x@y.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)

	byID, err := s.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, byEmail.Email, byID.Email)
	assert.Equal(t, byEmail.Password, byID.Password)
}

func TestUserStoreMissingUser(t *testing.T) {
	s := NewUserStore(newFakeKV(), NewMemoryStore())
	ctx := context.Background()

	got, err := s.GetByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = s.GetByID(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserStoreFallbackTransparency(t *testing.T) {
	s := NewUserStore(failingKV{}, NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, testUser("u1", "x@y.com")))

	// Reads against the failing store still find the record in memory.
	got, err := s.GetByEmail(ctx, "x@y.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)

	got, err = s.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestUserStoreStoreMissConsultsMemory(t *testing.T) {
	fake := newFakeKV()
	mem := NewMemoryStore()
	ctx := context.Background()

	// Record written during an outage lives only in memory.
	outage := NewUserStore(failingKV{}, mem)
	require.NoError(t, outage.Save(ctx, testUser("u1", "x@y.com")))

	// The healthy store misses, then the memory map answers.
	s := NewUserStore(fake, mem)
	got, err := s.GetByEmail(ctx, "x@y.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)
}
