package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JaiminPatel345/make-my-buddy/internal/events"
	"github.com/JaiminPatel345/make-my-buddy/internal/models"
	"github.com/JaiminPatel345/make-my-buddy/internal/repository"
)

// fakeUserRepo is an in-memory UserRepository. Lookups return copies so
// state only changes through repo methods, matching the real store.
type fakeUserRepo struct {
	users map[string]*models.User
	order []string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (f *fakeUserRepo) add(u *models.User) *models.User {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	f.users[u.ID.Hex()] = u
	f.order = append(f.order, u.ID.Hex())
	return u
}

func (f *fakeUserRepo) get(id primitive.ObjectID) *models.User {
	return f.users[id.Hex()]
}

func copyUser(u *models.User) *models.User {
	cp := *u
	if u.Buddy != nil {
		b := *u.Buddy
		cp.Buddy = &b
	}
	cp.Buddies = append([]primitive.ObjectID(nil), u.Buddies...)
	cp.BlockedUsers = append([]primitive.ObjectID(nil), u.BlockedUsers...)
	cp.PvsBuddy = append([]primitive.ObjectID(nil), u.PvsBuddy...)
	cp.Communities = append([]primitive.ObjectID(nil), u.Communities...)
	cp.Interests = append([]string(nil), u.Interests...)
	return &cp
}

func (f *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	f.add(u)
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := f.users[id.Hex()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyUser(u), nil
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	for _, hex := range f.order {
		if u := f.users[hex]; u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) FindByMobile(_ context.Context, mobile string) (*models.User, error) {
	for _, hex := range f.order {
		if u := f.users[hex]; u.Mobile == mobile {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, username string, upd repository.ProfileUpdate) (*models.User, error) {
	u, err := f.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	stored := f.users[u.ID.Hex()]
	if upd.Name != nil {
		stored.Name = *upd.Name
	}
	if upd.Goal != nil {
		stored.Goal = *upd.Goal
	}
	if upd.Interests != nil {
		stored.Interests = upd.Interests
	}
	if upd.Avatar != nil {
		stored.Avatar = *upd.Avatar
	}
	stored.UpdatedAt = time.Now()
	return copyUser(stored), nil
}

func (f *fakeUserRepo) SetMobileVerified(ctx context.Context, username string) (*models.User, error) {
	u, err := f.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	stored := f.users[u.ID.Hex()]
	stored.IsMobileVerified = true
	return copyUser(stored), nil
}

func (f *fakeUserRepo) SetBuddy(_ context.Context, id primitive.ObjectID, buddy *primitive.ObjectID) error {
	u, ok := f.users[id.Hex()]
	if !ok {
		return repository.ErrNotFound
	}
	if buddy == nil {
		u.Buddy = nil
	} else {
		b := *buddy
		u.Buddy = &b
	}
	return nil
}

func (f *fakeUserRepo) ArchiveBuddy(_ context.Context, id, former primitive.ObjectID) error {
	u, ok := f.users[id.Hex()]
	if !ok {
		return repository.ErrNotFound
	}
	// $addToSet semantics
	if !u.InPvsBuddy(former) {
		u.PvsBuddy = append(u.PvsBuddy, former)
	}
	return nil
}

func (f *fakeUserRepo) AddToBuddies(_ context.Context, id, other primitive.ObjectID) error {
	u, ok := f.users[id.Hex()]
	if !ok {
		return repository.ErrNotFound
	}
	if !u.InBuddies(other) {
		u.Buddies = append(u.Buddies, other)
	}
	return nil
}

func (f *fakeUserRepo) RemoveFromBuddies(_ context.Context, id, other primitive.ObjectID) error {
	u, ok := f.users[id.Hex()]
	if !ok {
		return repository.ErrNotFound
	}
	u.Buddies = removeID(u.Buddies, other)
	return nil
}

func (f *fakeUserRepo) AddBlocked(_ context.Context, id, target primitive.ObjectID) error {
	u, ok := f.users[id.Hex()]
	if !ok {
		return repository.ErrNotFound
	}
	if !u.HasBlocked(target) {
		u.BlockedUsers = append(u.BlockedUsers, target)
	}
	return nil
}

func (f *fakeUserRepo) RemoveBlocked(_ context.Context, id, target primitive.ObjectID) error {
	u, ok := f.users[id.Hex()]
	if !ok {
		return repository.ErrNotFound
	}
	u.BlockedUsers = removeID(u.BlockedUsers, target)
	return nil
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v.Hex() != id.Hex() {
			out = append(out, v)
		}
	}
	return out
}

func (f *fakeUserRepo) candidates(exclude []primitive.ObjectID, limit int64, match func(*models.User) bool) []models.User {
	excluded := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id.Hex()] = struct{}{}
	}
	var out []models.User
	for _, hex := range f.order {
		u := f.users[hex]
		if _, skip := excluded[hex]; skip {
			continue
		}
		if u.Buddy != nil || !u.IsActive {
			continue
		}
		if !match(u) {
			continue
		}
		out = append(out, *copyUser(u))
		if int64(len(out)) >= limit {
			break
		}
	}
	return out
}

func (f *fakeUserRepo) FindCandidatesByGoal(_ context.Context, goal models.Goal, exclude []primitive.ObjectID, limit int64) ([]models.User, error) {
	return f.candidates(exclude, limit, func(u *models.User) bool {
		if goal.Title != "" && u.Goal.Title != goal.Title {
			return false
		}
		if goal.Target != "" && u.Goal.Target != goal.Target {
			return false
		}
		if goal.Year != 0 && u.Goal.Year != goal.Year {
			return false
		}
		if goal.Level != "" && u.Goal.Level != goal.Level {
			return false
		}
		return true
	}), nil
}

func (f *fakeUserRepo) FindCandidatesByCommunity(_ context.Context, communities, exclude []primitive.ObjectID, limit int64) ([]models.User, error) {
	if len(communities) == 0 {
		return nil, nil
	}
	want := make(map[string]struct{}, len(communities))
	for _, c := range communities {
		want[c.Hex()] = struct{}{}
	}
	return f.candidates(exclude, limit, func(u *models.User) bool {
		for _, c := range u.Communities {
			if _, ok := want[c.Hex()]; ok {
				return true
			}
		}
		return false
	}), nil
}

func (f *fakeUserRepo) FindCandidatesByFuzzyGoal(_ context.Context, titleWords []string, year int, exclude []primitive.ObjectID, limit int64) ([]models.User, error) {
	return f.candidates(exclude, limit, func(u *models.User) bool {
		if len(titleWords) > 0 {
			matched := false
			lower := strings.ToLower(u.Goal.Title)
			for _, w := range titleWords {
				if strings.Contains(lower, strings.ToLower(w)) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
		if year != 0 && (u.Goal.Year < year-1 || u.Goal.Year > year+1) {
			return false
		}
		return true
	}), nil
}

// fakeRequestRepo is an in-memory BuddyRequestRepository.
type fakeRequestRepo struct {
	reqs  map[string]*models.BuddyRequest
	order []string
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{reqs: map[string]*models.BuddyRequest{}}
}

func (f *fakeRequestRepo) add(r *models.BuddyRequest) *models.BuddyRequest {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	f.reqs[r.ID.Hex()] = r
	f.order = append(f.order, r.ID.Hex())
	return r
}

func (f *fakeRequestRepo) get(id primitive.ObjectID) *models.BuddyRequest {
	return f.reqs[id.Hex()]
}

func copyRequest(r *models.BuddyRequest) *models.BuddyRequest {
	cp := *r
	return &cp
}

func (f *fakeRequestRepo) Upsert(_ context.Context, sender, receiver primitive.ObjectID, typ models.RequestType, expiresAt time.Time) (*models.BuddyRequest, error) {
	for _, hex := range f.order {
		r, ok := f.reqs[hex]
		if !ok {
			continue
		}
		if r.Sender.Hex() == sender.Hex() && r.Receiver.Hex() == receiver.Hex() && r.Type == typ {
			r.Status = models.RequestStatusPending
			r.ExpiresAt = expiresAt
			r.UpdatedAt = time.Now()
			return copyRequest(r), nil
		}
	}
	now := time.Now()
	r := f.add(&models.BuddyRequest{
		Sender:    sender,
		Receiver:  receiver,
		Type:      typ,
		Status:    models.RequestStatusPending,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return copyRequest(r), nil
}

func (f *fakeRequestRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.BuddyRequest, error) {
	r, ok := f.reqs[id.Hex()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyRequest(r), nil
}

func (f *fakeRequestRepo) FindPendingTriple(_ context.Context, sender, receiver primitive.ObjectID, typ models.RequestType) (*models.BuddyRequest, error) {
	for _, hex := range f.order {
		r, ok := f.reqs[hex]
		if !ok {
			continue
		}
		if r.Status == models.RequestStatusPending && r.Sender.Hex() == sender.Hex() && r.Receiver.Hex() == receiver.Hex() && r.Type == typ {
			return copyRequest(r), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRequestRepo) FindPendingBySender(_ context.Context, sender primitive.ObjectID) ([]models.BuddyRequest, error) {
	var out []models.BuddyRequest
	for _, hex := range f.order {
		r, ok := f.reqs[hex]
		if !ok {
			continue
		}
		if r.Status == models.RequestStatusPending && r.Sender.Hex() == sender.Hex() {
			out = append(out, *copyRequest(r))
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) FindPendingByReceiver(_ context.Context, receiver primitive.ObjectID) ([]models.BuddyRequest, error) {
	var out []models.BuddyRequest
	for _, hex := range f.order {
		r, ok := f.reqs[hex]
		if !ok {
			continue
		}
		if r.Status == models.RequestStatusPending && r.Receiver.Hex() == receiver.Hex() {
			out = append(out, *copyRequest(r))
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) SetStatus(_ context.Context, id primitive.ObjectID, status models.RequestStatus) error {
	r, ok := f.reqs[id.Hex()]
	if !ok {
		return repository.ErrNotFound
	}
	r.Status = status
	r.UpdatedAt = time.Now()
	return nil
}

func (f *fakeRequestRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(f.reqs, id.Hex())
	return nil
}

func (f *fakeRequestRepo) DeleteMany(_ context.Context, ids []primitive.ObjectID) error {
	for _, id := range ids {
		delete(f.reqs, id.Hex())
	}
	return nil
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	published []events.RelationshipEvent
}

func (c *capturePublisher) Publish(_ context.Context, ev events.RelationshipEvent) {
	c.published = append(c.published, ev)
}

func (c *capturePublisher) types() []string {
	out := make([]string, 0, len(c.published))
	for _, ev := range c.published {
		out = append(out, ev.Type)
	}
	return out
}
