package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"staffchat/internal/entity"

	"github.com/google/uuid"
)

// memoryMessageRepository keeps the message log in process memory. It
// mirrors the mongo repository's semantics record for record and backs
// the unit tests.
type memoryMessageRepository struct {
	mu       sync.RWMutex
	messages []entity.Message
	seq      int64
}

func NewMemoryMessageRepository() MessageRepository {
	return &memoryMessageRepository{}
}

func (r *memoryMessageRepository) Insert(ctx context.Context, senderId, receiverId int64, content string) (entity.Message, error) {
	if senderId == 0 {
		return entity.Message{}, ErrEmptySender
	}
	if receiverId == 0 {
		return entity.Message{}, ErrEmptyReceiver
	}
	if content == "" {
		return entity.Message{}, ErrEmptyContent
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	message := entity.Message{
		Id:         uuid.New().String(),
		SenderId:   senderId,
		ReceiverId: receiverId,
		Content:    content,
		Timestamp:  time.Now().UTC(),
		Seq:        r.seq,
	}
	r.messages = append(r.messages, message)

	return message, nil
}

func inPair(m entity.Message, viewerId, partnerId int64) bool {
	if m.SenderId == viewerId && m.ReceiverId == partnerId {
		return !m.DeletedBySender
	}
	if m.SenderId == partnerId && m.ReceiverId == viewerId {
		return !m.DeletedByReceiver
	}
	return false
}

func (r *memoryMessageRepository) FindBetween(ctx context.Context, viewerId, partnerId int64) ([]entity.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var messages []entity.Message
	for _, m := range r.messages {
		if inPair(m, viewerId, partnerId) {
			messages = append(messages, m)
		}
	}

	sort.Slice(messages, func(i, j int) bool {
		if !messages[i].Timestamp.Equal(messages[j].Timestamp) {
			return messages[i].Timestamp.Before(messages[j].Timestamp)
		}
		return messages[i].Seq < messages[j].Seq
	})

	return messages, nil
}

func (r *memoryMessageRepository) LastTimestamp(ctx context.Context, viewerId, partnerId int64) (*time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var last *entity.Message
	for i := range r.messages {
		m := r.messages[i]
		if !inPair(m, viewerId, partnerId) {
			continue
		}
		if last == nil || m.Timestamp.After(last.Timestamp) ||
			(m.Timestamp.Equal(last.Timestamp) && m.Seq > last.Seq) {
			last = &r.messages[i]
		}
	}

	if last == nil {
		return nil, nil
	}
	ts := last.Timestamp
	return &ts, nil
}

func (r *memoryMessageRepository) CountUnread(ctx context.Context, senderId, receiverId int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, m := range r.messages {
		if m.SenderId == senderId && m.ReceiverId == receiverId && !m.IsRead && !m.DeletedByReceiver {
			count++
		}
	}

	return count, nil
}

func (r *memoryMessageRepository) CountUnreadTotal(ctx context.Context, receiverId int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, m := range r.messages {
		if m.ReceiverId == receiverId && !m.IsRead && !m.DeletedByReceiver {
			count++
		}
	}

	return count, nil
}

func (r *memoryMessageRepository) UpdateFlags(ctx context.Context, filter entity.MessageFlagFilter, patch entity.MessageFlagPatch) (int64, error) {
	if patch.IsZero() {
		return 0, nil
	}
	if filter.Ids != nil && len(filter.Ids) == 0 {
		return 0, nil
	}

	var idSet map[string]bool
	if filter.Ids != nil {
		idSet = make(map[string]bool, len(filter.Ids))
		for _, id := range filter.Ids {
			idSet[id] = true
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var updated int64
	for i := range r.messages {
		m := &r.messages[i]
		if idSet != nil && !idSet[m.Id] {
			continue
		}
		if filter.SenderId != 0 && m.SenderId != filter.SenderId {
			continue
		}
		if filter.ReceiverId != 0 && m.ReceiverId != filter.ReceiverId {
			continue
		}
		if filter.UnreadOnly && m.IsRead {
			continue
		}

		changed := false
		if patch.IsRead && !m.IsRead {
			m.IsRead = true
			changed = true
		}
		if patch.DeletedBySender && !m.DeletedBySender {
			m.DeletedBySender = true
			changed = true
		}
		if patch.DeletedByReceiver && !m.DeletedByReceiver {
			m.DeletedByReceiver = true
			changed = true
		}
		if patch.IsRevoked && !m.IsRevoked {
			m.IsRevoked = true
			changed = true
		}
		if changed {
			updated++
		}
	}

	return updated, nil
}
