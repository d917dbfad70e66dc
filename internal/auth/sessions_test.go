// File: internal/auth/sessions_test.go
package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// --- Test Cases ---

func TestMemorySessionStore_PutMatchesDrop(t *testing.T) {
	store := NewMemorySessionStore(time.Hour)
	ctx := context.Background()
	subjectID := uuid.New()

	active, err := store.Matches(ctx, subjectID, "token-1")
	assert.NoError(t, err)
	assert.False(t, active, "nothing should match before the first Put")

	assert.NoError(t, store.Put(ctx, subjectID, "token-1", time.Hour))

	active, err = store.Matches(ctx, subjectID, "token-1")
	assert.NoError(t, err)
	assert.True(t, active)

	active, err = store.Matches(ctx, subjectID, "token-2")
	assert.NoError(t, err)
	assert.False(t, active)

	assert.NoError(t, store.Drop(ctx, subjectID))

	active, err = store.Matches(ctx, subjectID, "token-1")
	assert.NoError(t, err)
	assert.False(t, active)
}

func TestMemorySessionStore_RotationInvalidatesOldToken(t *testing.T) {
	store := NewMemorySessionStore(time.Hour)
	ctx := context.Background()
	subjectID := uuid.New()

	assert.NoError(t, store.Put(ctx, subjectID, "token-1", time.Hour))
	assert.NoError(t, store.Put(ctx, subjectID, "token-2", time.Hour))

	active, err := store.Matches(ctx, subjectID, "token-1")
	assert.NoError(t, err)
	assert.False(t, active, "a new sign-in must retire the previous token")

	active, err = store.Matches(ctx, subjectID, "token-2")
	assert.NoError(t, err)
	assert.True(t, active)
}

func TestMemorySessionStore_SubjectsAreIsolated(t *testing.T) {
	store := NewMemorySessionStore(time.Hour)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	assert.NoError(t, store.Put(ctx, alice, "shared-token", time.Hour))

	active, err := store.Matches(ctx, bob, "shared-token")
	assert.NoError(t, err)
	assert.False(t, active)
}

func TestMemorySessionStore_DropUnknownSubject(t *testing.T) {
	store := NewMemorySessionStore(time.Hour)

	assert.NoError(t, store.Drop(context.Background(), uuid.New()))
}
