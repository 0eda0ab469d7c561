package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JaiminPatel345/make-my-buddy/internal/models"
)

type suggestionFixture struct {
	svc   *SuggestionService
	users *fakeUserRepo
}

func newSuggestionFixture() *suggestionFixture {
	users := newFakeUserRepo()
	return &suggestionFixture{
		svc:   NewSuggestionService(users, NewUserDirectory(users)),
		users: users,
	}
}

func (f *suggestionFixture) addUser(username string, goal models.Goal) *models.User {
	return f.users.add(&models.User{
		Name:     username,
		Username: username,
		Goal:     goal,
		IsActive: true,
	})
}

var upscGoal = models.Goal{Title: "UPSC", Target: "IAS", Year: 2027, Level: models.GoalLevelBeginner}

func TestSuggestScoring(t *testing.T) {
	f := newSuggestionFixture()
	ctx := context.Background()

	me := f.addUser("me", upscGoal)
	f.users.get(me.ID).Interests = []string{"History", "Polity"}

	full := f.addUser("full-match", upscGoal)
	f.users.get(full.ID).Interests = []string{"history"}
	f.addUser("partial-match", models.Goal{Title: "UPSC", Target: "IPS", Year: 2027})

	got, err := f.svc.Suggest(ctx, "me")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// 50 title + 20 target + 20 year + 10 level + 5 for one shared interest,
	// interest compare is case-insensitive.
	assert.Equal(t, "full-match", got[0].User.Username)
	assert.Equal(t, 105, got[0].Score)
	assert.Equal(t, "partial-match", got[1].User.Username)
	assert.Equal(t, 70, got[1].Score)
}

func TestSuggestExclusions(t *testing.T) {
	f := newSuggestionFixture()
	ctx := context.Background()

	me := f.addUser("me", upscGoal)
	blocked := f.addUser("blocked", upscGoal)
	former := f.addUser("former", upscGoal)
	follower := f.addUser("follower", upscGoal)
	taken := f.addUser("taken", upscGoal)
	inactive := f.addUser("inactive", upscGoal)
	ok := f.addUser("ok", upscGoal)

	f.users.get(me.ID).BlockedUsers = []primitive.ObjectID{blocked.ID}
	f.users.get(me.ID).PvsBuddy = []primitive.ObjectID{former.ID}
	f.users.get(me.ID).Buddies = []primitive.ObjectID{follower.ID}
	f.users.get(taken.ID).Buddy = &ok.ID
	f.users.get(inactive.ID).IsActive = false

	got, err := f.svc.Suggest(ctx, "me")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].User.Username)
}

func TestSuggestCommunityTier(t *testing.T) {
	f := newSuggestionFixture()
	ctx := context.Background()

	community := primitive.NewObjectID()
	me := f.addUser("me", models.Goal{})
	f.users.get(me.ID).Communities = []primitive.ObjectID{community}

	peer := f.addUser("peer", models.Goal{Title: "NEET"})
	f.users.get(peer.ID).Communities = []primitive.ObjectID{community}
	f.addUser("stranger", models.Goal{Title: "NEET"})

	// No goal set, so only the community tier fires.
	got, err := f.svc.Suggest(ctx, "me")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "peer", got[0].User.Username)
}

func TestSuggestFuzzyTier(t *testing.T) {
	f := newSuggestionFixture()
	ctx := context.Background()

	f.addUser("me", models.Goal{Title: "GATE CSE", Year: 2027})
	near := f.addUser("near", models.Goal{Title: "gate mechanical", Year: 2026})
	f.addUser("far", models.Goal{Title: "gate civil", Year: 2030})

	got, err := f.svc.Suggest(ctx, "me")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, near.ID.Hex(), got[0].User.ID.Hex())
}

func TestSuggestNoDuplicatesAcrossTiers(t *testing.T) {
	f := newSuggestionFixture()
	ctx := context.Background()

	community := primitive.NewObjectID()
	me := f.addUser("me", upscGoal)
	f.users.get(me.ID).Communities = []primitive.ObjectID{community}

	// Matches the exact tier, the community tier and the fuzzy tier.
	peer := f.addUser("peer", upscGoal)
	f.users.get(peer.ID).Communities = []primitive.ObjectID{community}

	got, err := f.svc.Suggest(ctx, "me")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSuggestCap(t *testing.T) {
	f := newSuggestionFixture()
	ctx := context.Background()

	community := primitive.NewObjectID()
	me := f.addUser("me", upscGoal)
	f.users.get(me.ID).Communities = []primitive.ObjectID{community}

	for i := 0; i < 15; i++ {
		f.addUser(fmt.Sprintf("exact-%d", i), upscGoal)
	}
	for i := 0; i < 15; i++ {
		u := f.addUser(fmt.Sprintf("community-%d", i), models.Goal{})
		f.users.get(u.ID).Communities = []primitive.ObjectID{community}
	}

	got, err := f.svc.Suggest(ctx, "me")
	require.NoError(t, err)
	// Each tier contributes at most 10; the overall list is capped at 20.
	assert.Len(t, got, 20)
}

func TestSuggestStableTieOrder(t *testing.T) {
	f := newSuggestionFixture()
	ctx := context.Background()

	f.addUser("me", upscGoal)
	first := f.addUser("first", upscGoal)
	second := f.addUser("second", upscGoal)

	got, err := f.svc.Suggest(ctx, "me")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID.Hex(), got[0].User.ID.Hex())
	assert.Equal(t, second.ID.Hex(), got[1].User.ID.Hex())
}

func TestSharedInterestsDedup(t *testing.T) {
	assert.Equal(t, 1, sharedInterests([]string{"math"}, []string{"Math", "MATH", " math "}))
	assert.Equal(t, 0, sharedInterests(nil, []string{"math"}))
	assert.Equal(t, 2, sharedInterests([]string{"math", "physics"}, []string{"physics", "math"}))
}
