package services

import (
	"context"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JaiminPatel345/make-my-buddy/internal/models"
	"github.com/JaiminPatel345/make-my-buddy/internal/repository"
)

const (
	tierLimit       = 10
	suggestionLimit = 20

	scoreTitleMatch  = 50
	scoreTargetMatch = 20
	scoreYearMatch   = 20
	scoreLevelMatch  = 10
	scorePerInterest = 5
)

// Suggestion is a scored buddy candidate.
type Suggestion struct {
	User  models.User `json:"user"`
	Score int         `json:"score"`
}

// SuggestionService ranks buddy candidates for a user. Read-only: it never
// mutates state or creates requests.
type SuggestionService struct {
	users repository.UserRepository
	dir   *UserDirectory
}

func NewSuggestionService(users repository.UserRepository, dir *UserDirectory) *SuggestionService {
	return &SuggestionService{users: users, dir: dir}
}

// Suggest gathers candidates in three tiers (exact goal match, shared
// community, fuzzy goal match), scores the union and returns the top 20.
// The sort is stable, so ties keep their tier order.
func (s *SuggestionService) Suggest(ctx context.Context, actorUsername string) ([]Suggestion, error) {
	user, err := s.dir.FindByUsername(ctx, actorUsername)
	if err != nil {
		return nil, err
	}

	exclude := exclusionSet(user)

	var candidates []models.User

	if !user.Goal.Empty() {
		tier1, err := s.users.FindCandidatesByGoal(ctx, user.Goal, exclude, tierLimit)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, tier1...)
		exclude = appendIDs(exclude, tier1)
	}

	tier2, err := s.users.FindCandidatesByCommunity(ctx, user.Communities, exclude, tierLimit)
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, tier2...)
	exclude = appendIDs(exclude, tier2)

	if words := titleWords(user.Goal.Title); len(words) > 0 || user.Goal.Year != 0 {
		tier3, err := s.users.FindCandidatesByFuzzyGoal(ctx, words, user.Goal.Year, exclude, tierLimit)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, tier3...)
	}

	suggestions := make([]Suggestion, 0, len(candidates))
	for _, c := range candidates {
		suggestions = append(suggestions, Suggestion{User: c, Score: scoreCandidate(user, &c)})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})

	if len(suggestions) > suggestionLimit {
		suggestions = suggestions[:suggestionLimit]
	}
	return suggestions, nil
}

// exclusionSet is self, the current buddy, everyone blocked, every previous
// buddy and everyone already in the buddies list.
func exclusionSet(user *models.User) []primitive.ObjectID {
	exclude := []primitive.ObjectID{user.ID}
	if user.Buddy != nil {
		exclude = append(exclude, *user.Buddy)
	}
	exclude = append(exclude, user.BlockedUsers...)
	exclude = append(exclude, user.PvsBuddy...)
	exclude = append(exclude, user.Buddies...)
	return exclude
}

func appendIDs(ids []primitive.ObjectID, users []models.User) []primitive.ObjectID {
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

func titleWords(title string) []string {
	return strings.Fields(strings.TrimSpace(title))
}

func scoreCandidate(requester, candidate *models.User) int {
	score := 0
	if requester.Goal.Title != "" && requester.Goal.Title == candidate.Goal.Title {
		score += scoreTitleMatch
	}
	if requester.Goal.Target != "" && requester.Goal.Target == candidate.Goal.Target {
		score += scoreTargetMatch
	}
	if requester.Goal.Year != 0 && requester.Goal.Year == candidate.Goal.Year {
		score += scoreYearMatch
	}
	if requester.Goal.Level != "" && requester.Goal.Level == candidate.Goal.Level {
		score += scoreLevelMatch
	}
	score += scorePerInterest * sharedInterests(requester.Interests, candidate.Interests)
	return score
}

func sharedInterests(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, tag := range a {
		set[normalizeTag(tag)] = struct{}{}
	}
	shared := 0
	seen := make(map[string]struct{}, len(b))
	for _, tag := range b {
		norm := normalizeTag(tag)
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		if _, ok := set[norm]; ok {
			shared++
		}
	}
	return shared
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
