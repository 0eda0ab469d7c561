package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JaiminPatel345/make-my-buddy/internal/apperr"
	"github.com/JaiminPatel345/make-my-buddy/internal/models"
	"github.com/JaiminPatel345/make-my-buddy/internal/repository"
)

func TestDirectoryLookups(t *testing.T) {
	users := newFakeUserRepo()
	dir := NewUserDirectory(users)
	ctx := context.Background()

	alice := users.add(&models.User{Username: "alice", IsActive: true})

	got, err := dir.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID.Hex(), got.ID.Hex())

	got, err = dir.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = dir.FindByUsername(ctx, "nobody")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = dir.ValidateExists(ctx, primitive.NewObjectID())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDirectoryUpdateProfile(t *testing.T) {
	users := newFakeUserRepo()
	dir := NewUserDirectory(users)
	ctx := context.Background()

	users.add(&models.User{Username: "alice", Name: "Alice", IsActive: true})

	name := "Alice B"
	goal := models.Goal{Title: "UPSC", Year: 2027}
	got, err := dir.UpdateProfile(ctx, "alice", repository.ProfileUpdate{
		Name:      &name,
		Goal:      &goal,
		Interests: []string{"polity"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", got.Name)
	assert.Equal(t, "UPSC", got.Goal.Title)
	assert.Equal(t, []string{"polity"}, got.Interests)

	// Untouched fields stay as they were.
	got, err = dir.UpdateProfile(ctx, "alice", repository.ProfileUpdate{Interests: []string{"history"}})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", got.Name)
	assert.Equal(t, []string{"history"}, got.Interests)

	_, err = dir.UpdateProfile(ctx, "nobody", repository.ProfileUpdate{Name: &name})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestValidateNotSelf(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	assert.NoError(t, ValidateNotSelf(a, b))
	assert.Equal(t, apperr.KindInvalidOperation, apperr.KindOf(ValidateNotSelf(a, a)))
}

func TestValidateNotBlocked(t *testing.T) {
	target := primitive.NewObjectID()
	user := &models.User{BlockedUsers: []primitive.ObjectID{target}}

	assert.Equal(t, apperr.KindBlocked, apperr.KindOf(ValidateNotBlocked(user, target)))
	assert.NoError(t, ValidateNotBlocked(user, primitive.NewObjectID()))
}

type fakeParticipantSet struct {
	ids []primitive.ObjectID
}

func (f fakeParticipantSet) ParticipantIDs() []primitive.ObjectID { return f.ids }

func TestValidateParticipant(t *testing.T) {
	member := primitive.NewObjectID()
	outsider := primitive.NewObjectID()
	set := fakeParticipantSet{ids: []primitive.ObjectID{member, primitive.NewObjectID()}}

	assert.NoError(t, ValidateParticipant(set, member))
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(ValidateParticipant(set, outsider)))
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(ValidateParticipant(fakeParticipantSet{}, member)))
}
