package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/JaiminPatel345/make-my-buddy/internal/apperr"
	"github.com/JaiminPatel345/make-my-buddy/internal/events"
	"github.com/JaiminPatel345/make-my-buddy/internal/models"
	"github.com/JaiminPatel345/make-my-buddy/internal/repository"
)

// RequestTTL is how long a buddy request stays acceptable. Resending
// refreshes the window.
const RequestTTL = 30 * 24 * time.Hour

// BuddyService is the relationship state machine: primary-buddy assignment
// and removal with history archival, the buddies (follower) graph,
// block/unblock, and the request workflow.
type BuddyService struct {
	users    repository.UserRepository
	requests repository.BuddyRequestRepository
	dir      *UserDirectory
	events   events.Publisher
	log      *zap.Logger
}

func NewBuddyService(users repository.UserRepository, requests repository.BuddyRequestRepository, dir *UserDirectory, pub events.Publisher, log *zap.Logger) *BuddyService {
	return &BuddyService{users: users, requests: requests, dir: dir, events: pub, log: log}
}

// SendRequest proposes a buddy or follower relationship. For buddy requests
// both sides must be buddy-free; a pending duplicate is a conflict; any other
// prior request for the triple is overwritten with a fresh expiry.
func (s *BuddyService) SendRequest(ctx context.Context, actorUsername string, receiverID primitive.ObjectID, typ models.RequestType) (*models.BuddyRequest, error) {
	if !typ.Valid() {
		return nil, apperr.InvalidOperation("Invalid request type")
	}

	sender, err := s.dir.FindByUsername(ctx, actorUsername)
	if err != nil {
		return nil, err
	}
	receiver, err := s.dir.ValidateExists(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if err := ValidateNotSelf(sender.ID, receiverID); err != nil {
		return nil, err
	}
	if err := ValidateNotBlocked(sender, receiverID); err != nil {
		return nil, err
	}
	if err := ValidateNotBlocked(receiver, sender.ID); err != nil {
		return nil, err
	}

	if typ == models.RequestTypeBuddy {
		if sender.Buddy != nil {
			return nil, apperr.Conflict("You already have a primary buddy. Please remove your current buddy first.")
		}
		if receiver.Buddy != nil {
			return nil, apperr.Conflict("Receiver already has a primary buddy")
		}
	}

	if _, err := s.requests.FindPendingTriple(ctx, sender.ID, receiverID, typ); err == nil {
		return nil, apperr.Conflict("A request is already pending")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	req, err := s.requests.Upsert(ctx, sender.ID, receiverID, typ, time.Now().Add(RequestTTL))
	if err != nil {
		return nil, err
	}
	return req, nil
}

// AcceptRequest is receiver-only. Buddy-free state is revalidated at accept
// time: a sender who acquired a buddy since sending gets the request marked
// rejected, not silently ignored.
func (s *BuddyService) AcceptRequest(ctx context.Context, actorUsername string, requestID primitive.ObjectID) error {
	actor, err := s.dir.FindByUsername(ctx, actorUsername)
	if err != nil {
		return err
	}

	req, err := s.loadActionable(ctx, requestID)
	if err != nil {
		return err
	}

	if req.Receiver.Hex() != actor.ID.Hex() {
		return apperr.Forbidden("Not authorized to accept this request")
	}

	if req.ExpiredAt(time.Now()) {
		if derr := s.requests.Delete(ctx, req.ID); derr != nil {
			s.log.Warn("failed to delete expired request", zap.String("request_id", req.ID.Hex()), zap.Error(derr))
		}
		return apperr.Expired("Request has expired")
	}

	switch req.Type {
	case models.RequestTypeBuddy:
		if actor.Buddy != nil {
			return apperr.Conflict("You already have a primary buddy. Please remove your current buddy first.")
		}

		sender, err := s.dir.ValidateExists(ctx, req.Sender)
		if err != nil {
			return err
		}
		if sender.Buddy != nil {
			if serr := s.requests.SetStatus(ctx, req.ID, models.RequestStatusRejected); serr != nil {
				return serr
			}
			return apperr.Conflict("The sender already has a primary buddy")
		}

		if err := assignBuddies(ctx, s.users, sender, actor); err != nil {
			return err
		}

	case models.RequestTypeFollower:
		// Mutual add on both sides.
		if err := s.users.AddToBuddies(ctx, req.Sender, actor.ID); err != nil {
			return err
		}
		if err := s.users.AddToBuddies(ctx, actor.ID, req.Sender); err != nil {
			return err
		}
	}

	if err := s.requests.SetStatus(ctx, req.ID, models.RequestStatusAccepted); err != nil {
		return err
	}

	s.events.Publish(ctx, events.RelationshipEvent{
		Type:     events.TypeRequestAccepted,
		Actor:    actorUsername,
		UserID:   req.Sender.Hex(),
		TargetID: req.Receiver.Hex(),
	})
	return nil
}

// RejectRequest is receiver-only. Terminal requests cannot be re-rejected.
func (s *BuddyService) RejectRequest(ctx context.Context, actorUsername string, requestID primitive.ObjectID) error {
	actor, err := s.dir.FindByUsername(ctx, actorUsername)
	if err != nil {
		return err
	}

	req, err := s.loadActionable(ctx, requestID)
	if err != nil {
		return err
	}

	if req.Receiver.Hex() != actor.ID.Hex() {
		return apperr.Forbidden("Not authorized to reject this request")
	}

	return s.requests.SetStatus(ctx, req.ID, models.RequestStatusRejected)
}

// CancelRequest is sender-only and hard-deletes the record.
func (s *BuddyService) CancelRequest(ctx context.Context, actorUsername string, requestID primitive.ObjectID) error {
	actor, err := s.dir.FindByUsername(ctx, actorUsername)
	if err != nil {
		return err
	}

	req, err := s.requests.FindByID(ctx, requestID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("Request not found")
	}
	if err != nil {
		return err
	}

	if req.Sender.Hex() != actor.ID.Hex() {
		return apperr.Forbidden("Not authorized to cancel this request")
	}

	return s.requests.Delete(ctx, req.ID)
}

// ListSent returns the actor's pending outgoing requests.
func (s *BuddyService) ListSent(ctx context.Context, actorUsername string) ([]models.BuddyRequest, error) {
	actor, err := s.dir.FindByUsername(ctx, actorUsername)
	if err != nil {
		return nil, err
	}
	return s.requests.FindPendingBySender(ctx, actor.ID)
}

// ListReceived returns pending incoming requests, lazily deleting any that
// have expired; expired requests never reach the caller.
func (s *BuddyService) ListReceived(ctx context.Context, actorUsername string) ([]models.BuddyRequest, error) {
	actor, err := s.dir.FindByUsername(ctx, actorUsername)
	if err != nil {
		return nil, err
	}

	reqs, err := s.requests.FindPendingByReceiver(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	valid := make([]models.BuddyRequest, 0, len(reqs))
	var expired []primitive.ObjectID
	for _, r := range reqs {
		if r.ExpiredAt(now) {
			expired = append(expired, r.ID)
			continue
		}
		valid = append(valid, r)
	}

	if len(expired) > 0 {
		if err := s.requests.DeleteMany(ctx, expired); err != nil {
			s.log.Warn("failed to purge expired requests", zap.Int("count", len(expired)), zap.Error(err))
		}
	}

	return valid, nil
}

// RemoveBuddy archives and clears the actor's primary buddy, and repairs the
// counterpart's pointer if it still points back. The counterpart having
// already cleared its side is tolerated.
func (s *BuddyService) RemoveBuddy(ctx context.Context, actorUsername string) error {
	actor, err := s.dir.FindByUsername(ctx, actorUsername)
	if err != nil {
		return err
	}
	if actor.Buddy == nil {
		return apperr.InvalidOperation("You do not have a primary buddy")
	}

	formerID := *actor.Buddy
	if err := archiveAndClear(ctx, s.users, actor); err != nil {
		return err
	}

	former, err := s.users.FindByID(ctx, formerID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		// Counterpart gone; nothing to repair.
	case err != nil:
		return err
	case former.Buddy != nil && former.Buddy.Hex() == actor.ID.Hex():
		if err := archiveAndClear(ctx, s.users, former); err != nil {
			return err
		}
	}

	s.events.Publish(ctx, events.RelationshipEvent{
		Type:     events.TypeBuddyRemoved,
		Actor:    actorUsername,
		UserID:   actor.ID.Hex(),
		TargetID: formerID.Hex(),
	})
	return nil
}

// ToggleBlock blocks the target, or unblocks when already blocked. Blocking
// the current primary buddy archives and clears the actor's side only; the
// target's pointer is left for their own next operation to repair.
func (s *BuddyService) ToggleBlock(ctx context.Context, actorUsername string, targetID primitive.ObjectID) (blocked bool, err error) {
	actor, err := s.dir.FindByUsername(ctx, actorUsername)
	if err != nil {
		return false, err
	}
	if _, err := s.dir.ValidateExists(ctx, targetID); err != nil {
		return false, err
	}
	if err := ValidateNotSelf(actor.ID, targetID); err != nil {
		return false, err
	}

	if actor.HasBlocked(targetID) {
		if err := s.users.RemoveBlocked(ctx, actor.ID, targetID); err != nil {
			return false, err
		}
		s.events.Publish(ctx, events.RelationshipEvent{
			Type:     events.TypeUserUnblocked,
			Actor:    actorUsername,
			UserID:   actor.ID.Hex(),
			TargetID: targetID.Hex(),
		})
		return false, nil
	}

	if err := s.users.AddBlocked(ctx, actor.ID, targetID); err != nil {
		return false, err
	}

	if actor.Buddy != nil && actor.Buddy.Hex() == targetID.Hex() {
		if err := archiveAndClear(ctx, s.users, actor); err != nil {
			return false, err
		}
	}

	if actor.InBuddies(targetID) {
		if err := s.users.RemoveFromBuddies(ctx, actor.ID, targetID); err != nil {
			return false, err
		}
	}

	s.events.Publish(ctx, events.RelationshipEvent{
		Type:     events.TypeUserBlocked,
		Actor:    actorUsername,
		UserID:   actor.ID.Hex(),
		TargetID: targetID.Hex(),
	})
	return true, nil
}

// RemoveFromBuddies drops the target from the actor's buddies list and,
// symmetrically, the actor from the target's.
func (s *BuddyService) RemoveFromBuddies(ctx context.Context, actorUsername string, targetID primitive.ObjectID) error {
	actor, err := s.dir.FindByUsername(ctx, actorUsername)
	if err != nil {
		return err
	}
	if !actor.InBuddies(targetID) {
		return apperr.InvalidOperation("User is not in your buddies list")
	}

	if err := s.users.RemoveFromBuddies(ctx, actor.ID, targetID); err != nil {
		return err
	}
	if err := s.users.RemoveFromBuddies(ctx, targetID, actor.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	s.events.Publish(ctx, events.RelationshipEvent{
		Type:     events.TypeBuddiesRemoved,
		Actor:    actorUsername,
		UserID:   actor.ID.Hex(),
		TargetID: targetID.Hex(),
	})
	return nil
}

// loadActionable fetches a request and rejects terminal ones; an already
// accepted or rejected request behaves as expired for any further action.
func (s *BuddyService) loadActionable(ctx context.Context, requestID primitive.ObjectID) (*models.BuddyRequest, error) {
	req, err := s.requests.FindByID(ctx, requestID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Request not found")
	}
	if err != nil {
		return nil, err
	}
	if req.Terminal() {
		return nil, apperr.Expired("Request has expired")
	}
	return req, nil
}
