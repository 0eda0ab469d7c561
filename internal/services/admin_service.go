package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/JaiminPatel345/make-my-buddy/internal/apperr"
	"github.com/JaiminPatel345/make-my-buddy/internal/events"
	"github.com/JaiminPatel345/make-my-buddy/internal/models"
	"github.com/JaiminPatel345/make-my-buddy/internal/repository"
)

// AdminService holds the privileged overrides that bypass the request/accept
// workflow and the blocked/self checks. Only existence is validated; the
// archive-before-overwrite invariant still applies. The admin-role gate sits
// upstream in the middleware.
type AdminService struct {
	users  repository.UserRepository
	events events.Publisher
	log    *zap.Logger
}

func NewAdminService(users repository.UserRepository, pub events.Publisher, log *zap.Logger) *AdminService {
	return &AdminService{users: users, events: pub, log: log}
}

// MakeBuddy directly pairs two users, archiving any prior buddy on either
// side first. The target's blocked-list state is deliberately ignored.
func (s *AdminService) MakeBuddy(ctx context.Context, actorUsername string, user1ID, user2ID primitive.ObjectID) error {
	u1, err := s.findUser(ctx, user1ID)
	if err != nil {
		return err
	}
	u2, err := s.findUser(ctx, user2ID)
	if err != nil {
		return err
	}
	if u1.ID.Hex() == u2.ID.Hex() {
		return apperr.InvalidOperation("Cannot pair a user with themselves")
	}

	if err := assignBuddies(ctx, s.users, u1, u2); err != nil {
		return err
	}

	s.events.Publish(ctx, events.RelationshipEvent{
		Type:     events.TypeAdminMakeBuddy,
		Actor:    actorUsername,
		UserID:   user1ID.Hex(),
		TargetID: user2ID.Hex(),
	})
	return nil
}

// RemoveBuddy severs the given user's primary relationship, archiving on
// both sides when the counterpart still points back.
func (s *AdminService) RemoveBuddy(ctx context.Context, actorUsername string, userID primitive.ObjectID) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.Buddy == nil {
		return apperr.InvalidOperation("User does not have a primary buddy")
	}

	buddyID := *user.Buddy
	buddy, err := s.users.FindByID(ctx, buddyID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if buddy != nil && buddy.Buddy != nil && buddy.Buddy.Hex() == userID.Hex() {
		if err := archiveAndClear(ctx, s.users, buddy); err != nil {
			return err
		}
	}

	if err := archiveAndClear(ctx, s.users, user); err != nil {
		return err
	}

	s.events.Publish(ctx, events.RelationshipEvent{
		Type:     events.TypeAdminRemoveBuddy,
		Actor:    actorUsername,
		UserID:   userID.Hex(),
		TargetID: buddyID.Hex(),
	})
	return nil
}

// AddToBuddies inserts user2 into user1's buddies list, both ways when
// mutual.
func (s *AdminService) AddToBuddies(ctx context.Context, actorUsername string, user1ID, user2ID primitive.ObjectID, mutual bool) error {
	if _, err := s.findUser(ctx, user1ID); err != nil {
		return err
	}
	if _, err := s.findUser(ctx, user2ID); err != nil {
		return err
	}

	if err := s.users.AddToBuddies(ctx, user1ID, user2ID); err != nil {
		return err
	}
	if mutual {
		if err := s.users.AddToBuddies(ctx, user2ID, user1ID); err != nil {
			return err
		}
	}

	s.events.Publish(ctx, events.RelationshipEvent{
		Type:     events.TypeAdminBuddiesEdit,
		Actor:    actorUsername,
		UserID:   user1ID.Hex(),
		TargetID: user2ID.Hex(),
	})
	return nil
}

// RemoveFromBuddies removes user2 from user1's buddies list, both ways when
// mutual.
func (s *AdminService) RemoveFromBuddies(ctx context.Context, actorUsername string, user1ID, user2ID primitive.ObjectID, mutual bool) error {
	if _, err := s.findUser(ctx, user1ID); err != nil {
		return err
	}
	if _, err := s.findUser(ctx, user2ID); err != nil {
		return err
	}

	if err := s.users.RemoveFromBuddies(ctx, user1ID, user2ID); err != nil {
		return err
	}
	if mutual {
		if err := s.users.RemoveFromBuddies(ctx, user2ID, user1ID); err != nil {
			return err
		}
	}

	s.events.Publish(ctx, events.RelationshipEvent{
		Type:     events.TypeAdminBuddiesEdit,
		Actor:    actorUsername,
		UserID:   user1ID.Hex(),
		TargetID: user2ID.Hex(),
	})
	return nil
}

func (s *AdminService) findUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound(fmt.Sprintf("User with ID %s not found", id.Hex()))
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
