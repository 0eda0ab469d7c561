package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JaiminPatel345/make-my-buddy/internal/models"
)

// ErrNotFound is returned by lookups when no document matches. Services map
// it to the user-facing taxonomy.
var ErrNotFound = errors.New("not found")

// ProfileUpdate carries the user-editable profile fields; nil pointers and
// nil slices are left untouched.
type ProfileUpdate struct {
	Name      *string
	Goal      *models.Goal
	Interests []string
	Avatar    *string
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByMobile(ctx context.Context, mobile string) (*models.User, error)
	UpdateProfile(ctx context.Context, username string, upd ProfileUpdate) (*models.User, error)
	SetMobileVerified(ctx context.Context, username string) (*models.User, error)

	// Relationship field edits, one document each. Multi-document
	// transitions are sequenced by the services; see the symmetry-repair
	// notes there.
	SetBuddy(ctx context.Context, id primitive.ObjectID, buddy *primitive.ObjectID) error
	ArchiveBuddy(ctx context.Context, id, former primitive.ObjectID) error
	AddToBuddies(ctx context.Context, id, other primitive.ObjectID) error
	RemoveFromBuddies(ctx context.Context, id, other primitive.ObjectID) error
	AddBlocked(ctx context.Context, id, target primitive.ObjectID) error
	RemoveBlocked(ctx context.Context, id, target primitive.ObjectID) error

	// Suggestion tiers. All exclude the given ids and only return active,
	// buddy-free users.
	FindCandidatesByGoal(ctx context.Context, goal models.Goal, exclude []primitive.ObjectID, limit int64) ([]models.User, error)
	FindCandidatesByCommunity(ctx context.Context, communities, exclude []primitive.ObjectID, limit int64) ([]models.User, error)
	FindCandidatesByFuzzyGoal(ctx context.Context, titleWords []string, year int, exclude []primitive.ObjectID, limit int64) ([]models.User, error)
}

type BuddyRequestRepository interface {
	// Upsert keys on (sender, receiver, type): resending resets status to
	// pending and refreshes the expiry instead of duplicating.
	Upsert(ctx context.Context, sender, receiver primitive.ObjectID, typ models.RequestType, expiresAt time.Time) (*models.BuddyRequest, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.BuddyRequest, error)
	FindPendingTriple(ctx context.Context, sender, receiver primitive.ObjectID, typ models.RequestType) (*models.BuddyRequest, error)
	FindPendingBySender(ctx context.Context, sender primitive.ObjectID) ([]models.BuddyRequest, error)
	FindPendingByReceiver(ctx context.Context, receiver primitive.ObjectID) ([]models.BuddyRequest, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.RequestStatus) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) error
}
