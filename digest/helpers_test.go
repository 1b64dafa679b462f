package digest_test

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"tagdigest/models"
)

func newStatus(id string, createdAt time.Time, username string, favourites, boosts, followers int64) *models.Status {
	return &models.Status{
		ID:        id,
		CreatedAt: createdAt,
		Account: &models.Account{
			ID:             "acct-" + username,
			Username:       username,
			Acct:           username,
			FollowersCount: lo.ToPtr(followers),
		},
		FavouritesCount: lo.ToPtr(favourites),
		ReblogsCount:    lo.ToPtr(boosts),
	}
}

// makeStatuses returns n statuses with ids prefix1..prefixN, one minute apart
// going back from createdAt
func makeStatuses(prefix string, n int, createdAt time.Time) []*models.Status {
	statuses := make([]*models.Status, n)
	for i := range statuses {
		statuses[i] = newStatus(
			fmt.Sprintf("%s%d", prefix, i+1),
			createdAt.Add(-time.Duration(i)*time.Minute),
			fmt.Sprintf("user%s%d", prefix, i+1),
			int64(i%7), int64(i%3), int64(10*(i+1)),
		)
	}
	return statuses
}

// fakeSource serves timeline pages keyed by max_id and a fixed tag
type fakeSource struct {
	pages    map[string][]*models.Status
	errs     map[string]error
	calls    []string
	limits   []int
	tag      *models.Tag
	tagErr   error
	tagCalls int
}

func (f *fakeSource) GetTagTimeline(_ context.Context, _ string, limit int, maxID string) ([]*models.Status, error) {
	f.calls = append(f.calls, maxID)
	f.limits = append(f.limits, limit)
	if err, ok := f.errs[maxID]; ok {
		return nil, err
	}
	return f.pages[maxID], nil
}

func (f *fakeSource) GetTag(_ context.Context, _ string) (*models.Tag, error) {
	f.tagCalls++
	if f.tagErr != nil {
		return nil, f.tagErr
	}
	return f.tag, nil
}

type fakePoster struct {
	toots  []*models.Toot
	status *models.Status
	err    error
}

func (f *fakePoster) PostStatus(_ context.Context, toot *models.Toot) (*models.Status, error) {
	f.toots = append(f.toots, toot)
	if f.err != nil {
		return nil, f.err
	}
	return f.status, nil
}
