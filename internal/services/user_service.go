package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JaiminPatel345/make-my-buddy/internal/apperr"
	"github.com/JaiminPatel345/make-my-buddy/internal/models"
	"github.com/JaiminPatel345/make-my-buddy/internal/repository"
)

// UserDirectory owns user lookups and the guard checks every relationship
// operation runs through.
type UserDirectory struct {
	repo repository.UserRepository
}

func NewUserDirectory(repo repository.UserRepository) *UserDirectory {
	return &UserDirectory{repo: repo}
}

func (d *UserDirectory) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := d.repo.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (d *UserDirectory) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := d.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ValidateExists resolves the second party of a relationship mutation.
func (d *UserDirectory) ValidateExists(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := d.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Target user not found")
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (d *UserDirectory) UpdateProfile(ctx context.Context, username string, upd repository.ProfileUpdate) (*models.User, error) {
	u, err := d.repo.UpdateProfile(ctx, username, upd)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ValidateNotSelf guards every "apply to other user" operation.
func ValidateNotSelf(a, b primitive.ObjectID) error {
	if a.Hex() == b.Hex() {
		return apperr.InvalidOperation("Cannot perform this action on yourself")
	}
	return nil
}

func ValidateNotBlocked(user *models.User, target primitive.ObjectID) error {
	if user.HasBlocked(target) {
		return apperr.Blocked("Cannot perform this action with a blocked user")
	}
	return nil
}

// ParticipantSet is any entity with a participant collection, e.g. a task or
// a conversation.
type ParticipantSet interface {
	ParticipantIDs() []primitive.ObjectID
}

// ValidateParticipant gates participant-only resources.
func ValidateParticipant(entity ParticipantSet, userID primitive.ObjectID) error {
	for _, id := range entity.ParticipantIDs() {
		if id.Hex() == userID.Hex() {
			return nil
		}
	}
	return apperr.Forbidden("Not authorized to access this resource")
}
