package services

import (
	"context"

	"github.com/JaiminPatel345/make-my-buddy/internal/models"
	"github.com/JaiminPatel345/make-my-buddy/internal/repository"
)

// archiveAndClear moves the user's current buddy, if any, into pvs_buddy and
// nulls the pointer. The archive write lands before the clear so a crash in
// between never loses history.
func archiveAndClear(ctx context.Context, repo repository.UserRepository, user *models.User) error {
	if user.Buddy == nil {
		return nil
	}
	former := *user.Buddy
	if err := repo.ArchiveBuddy(ctx, user.ID, former); err != nil {
		return err
	}
	if err := repo.SetBuddy(ctx, user.ID, nil); err != nil {
		return err
	}
	user.Buddy = nil
	return nil
}

// assignBuddies archives any prior buddy on both sides, then points each user
// at the other. The two pointer writes are sequential, not transactional;
// RemoveBuddy's symmetry repair heals a crash between them on next access.
func assignBuddies(ctx context.Context, repo repository.UserRepository, a, b *models.User) error {
	if err := archiveAndClear(ctx, repo, a); err != nil {
		return err
	}
	if err := archiveAndClear(ctx, repo, b); err != nil {
		return err
	}
	if err := repo.SetBuddy(ctx, a.ID, &b.ID); err != nil {
		return err
	}
	return repo.SetBuddy(ctx, b.ID, &a.ID)
}
