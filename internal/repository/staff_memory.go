package repository

import (
	"context"
	"sort"
	"sync"

	"staffchat/internal/entity"
)

// memoryStaffDirectory is an in-process staff directory for tests.
type memoryStaffDirectory struct {
	mu    sync.RWMutex
	staff map[int64]entity.Staff
}

func NewMemoryStaffDirectory(staff ...entity.Staff) StaffDirectory {
	byId := make(map[int64]entity.Staff, len(staff))
	for _, s := range staff {
		byId[s.Id] = s
	}
	return &memoryStaffDirectory{staff: byId}
}

func (r *memoryStaffDirectory) Get(ctx context.Context, staffId int64) (entity.Staff, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	staff, ok := r.staff[staffId]
	if !ok {
		return entity.Staff{}, ErrStaffNotFound
	}

	return staff, nil
}

func (r *memoryStaffDirectory) GetByLoginId(ctx context.Context, loginId string) (entity.Staff, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, staff := range r.staff {
		if staff.LoginId == loginId {
			return staff, nil
		}
	}

	return entity.Staff{}, ErrStaffNotFound
}

func (r *memoryStaffDirectory) Exists(ctx context.Context, staffId int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.staff[staffId]
	return ok, nil
}

func (r *memoryStaffDirectory) ListActive(ctx context.Context) ([]entity.Staff, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var staff []entity.Staff
	for _, s := range r.staff {
		if s.Active {
			staff = append(staff, s)
		}
	}

	sort.Slice(staff, func(i, j int) bool {
		return staff[i].Name < staff[j].Name
	})

	return staff, nil
}
