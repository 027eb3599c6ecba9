package lms

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jgivc/eduvance/internal/common"
	"github.com/jgivc/eduvance/internal/entity"
)

func (r *lmsRepository) CreateAnnouncement(ctx context.Context, a *entity.Announcement) (string, error) {
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()

	if err := setJSON(ctx, r.cl, KeyAnnouncements, a.ID, a); err != nil {
		return "", fmt.Errorf("cannot create announcement: %w", err)
	}

	return a.ID, nil
}

func (r *lmsRepository) GetAnnouncement(ctx context.Context, id string) (*entity.Announcement, error) {
	return getJSON[entity.Announcement](ctx, r.cl, KeyAnnouncements, id, common.ErrAnnouncementNotFound)
}

// ListAnnouncements returns announcements newest first, optionally only the active ones.
func (r *lmsRepository) ListAnnouncements(ctx context.Context, activeOnly bool) ([]*entity.Announcement, error) {
	all, err := getAllJSON[entity.Announcement](ctx, r.cl, KeyAnnouncements)
	if err != nil {
		return nil, err
	}

	res := make([]*entity.Announcement, 0, len(all))
	for _, a := range all {
		if !activeOnly || a.Active {
			res = append(res, a)
		}
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})

	return res, nil
}

func (r *lmsRepository) UpdateAnnouncement(ctx context.Context, a *entity.Announcement) error {
	old, err := r.GetAnnouncement(ctx, a.ID)
	if err != nil {
		return err
	}

	a.CreatedAt = old.CreatedAt
	if err := setJSON(ctx, r.cl, KeyAnnouncements, a.ID, a); err != nil {
		return fmt.Errorf("cannot update announcement %s: %w", a.ID, err)
	}

	return nil
}

// ToggleAnnouncement flips the active flag and returns the new state.
func (r *lmsRepository) ToggleAnnouncement(ctx context.Context, id string) (bool, error) {
	a, err := r.GetAnnouncement(ctx, id)
	if err != nil {
		return false, err
	}

	a.Active = !a.Active
	if err := setJSON(ctx, r.cl, KeyAnnouncements, a.ID, a); err != nil {
		return false, fmt.Errorf("cannot toggle announcement %s: %w", id, err)
	}

	return a.Active, nil
}

func (r *lmsRepository) DeleteAnnouncement(ctx context.Context, id string) error {
	n, err := r.cl.HDel(ctx, KeyAnnouncements, id).Result()
	if err != nil {
		return fmt.Errorf("cannot delete announcement %s: %w", id, err)
	}

	if n == 0 {
		return fmt.Errorf("%w: %s", common.ErrAnnouncementNotFound, id)
	}

	return nil
}
