package usecase

import (
	"context"
	"sort"
	"time"

	"staffchat/infrastructure/cache"
	"staffchat/internal/entity"
	"staffchat/internal/repository"
)

const activeStaffCacheKey = "staff:active"

// RosterUsecase builds the contact list shown to a viewer: every other
// active staff member, annotated with unread count and last activity.
type RosterUsecase interface {
	BuildRoster(ctx context.Context, viewerId int64) ([]entity.PartnerSummary, error)
}

type rosterUsecase struct {
	staffDir  repository.StaffDirectory
	convUc    ConversationUsecase
	staffTTL  time.Duration
	dirCache  *cache.MemCache
}

// NewRosterUsecase builds a roster usecase. dirCache may be nil to
// disable directory caching; staffTTL bounds how stale the active-staff
// list may be between polls.
func NewRosterUsecase(staffDir repository.StaffDirectory, convUc ConversationUsecase, dirCache *cache.MemCache, staffTTL time.Duration) RosterUsecase {
	return &rosterUsecase{
		staffDir: staffDir,
		convUc:   convUc,
		staffTTL: staffTTL,
		dirCache: dirCache,
	}
}

func (r *rosterUsecase) listActive(ctx context.Context) ([]entity.Staff, error) {
	if r.dirCache != nil {
		if v, ok := r.dirCache.Get(activeStaffCacheKey); ok {
			if staff, ok := v.([]entity.Staff); ok {
				return staff, nil
			}
		}
	}

	staff, err := r.staffDir.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if r.dirCache != nil {
		r.dirCache.Set(activeStaffCacheKey, staff, r.staffTTL)
	}

	return staff, nil
}

func (r *rosterUsecase) BuildRoster(ctx context.Context, viewerId int64) ([]entity.PartnerSummary, error) {
	staff, err := r.listActive(ctx)
	if err != nil {
		return nil, err
	}

	roster := make([]entity.PartnerSummary, 0, len(staff))
	for _, partner := range staff {
		if partner.Id == viewerId {
			continue
		}

		unread, err := r.convUc.GetUnreadCount(ctx, partner.Id, viewerId)
		if err != nil {
			return nil, err
		}

		last, err := r.convUc.GetLastMessageTimestamp(ctx, viewerId, partner.Id)
		if err != nil {
			return nil, err
		}

		roster = append(roster, entity.PartnerSummary{
			Id:              partner.Id,
			Name:            partner.Name,
			Role:            partner.Role,
			UnreadCount:     unread,
			LastMessageTime: last,
		})
	}

	// Most recent conversation first, partners never messaged last,
	// ties by name so the order is deterministic.
	sort.SliceStable(roster, func(i, j int) bool {
		a, b := roster[i].LastMessageTime, roster[j].LastMessageTime
		switch {
		case a == nil && b == nil:
			return roster[i].Name < roster[j].Name
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.After(*b)
		default:
			return roster[i].Name < roster[j].Name
		}
	})

	return roster, nil
}
