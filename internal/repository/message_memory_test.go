package repository

import (
	"context"
	"testing"

	"staffchat/internal/entity"
)

func TestMemoryInsertValidation(t *testing.T) {
	repo := NewMemoryMessageRepository()
	ctx := context.Background()

	tests := []struct {
		name     string
		sender   int64
		receiver int64
		content  string
		wantErr  error
	}{
		{"missing sender", 0, 2, "hi", ErrEmptySender},
		{"missing receiver", 1, 0, "hi", ErrEmptyReceiver},
		{"empty content", 1, 2, "", ErrEmptyContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Insert(ctx, tt.sender, tt.receiver, tt.content)
			if err != tt.wantErr {
				t.Errorf("Insert() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMemoryInsertAssignsSequence(t *testing.T) {
	repo := NewMemoryMessageRepository()
	ctx := context.Background()

	m1, err := repo.Insert(ctx, 1, 2, "first")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	m2, err := repo.Insert(ctx, 1, 2, "second")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if m1.Id == "" || m2.Id == "" || m1.Id == m2.Id {
		t.Errorf("ids not unique: %q %q", m1.Id, m2.Id)
	}
	if m2.Seq <= m1.Seq {
		t.Errorf("seq not increasing: %d then %d", m1.Seq, m2.Seq)
	}
	if m2.Timestamp.Before(m1.Timestamp) {
		t.Error("timestamps not monotone")
	}
	if m1.IsRead || m1.DeletedBySender || m1.DeletedByReceiver || m1.IsRevoked {
		t.Errorf("flags not all false at insert: %+v", m1)
	}
}

func TestMemoryFindBetweenIsViewerFiltered(t *testing.T) {
	repo := NewMemoryMessageRepository()
	ctx := context.Background()

	a2b, _ := repo.Insert(ctx, 1, 2, "a to b")
	repo.Insert(ctx, 2, 1, "b to a")
	repo.Insert(ctx, 1, 3, "a to c")

	// Hide a2b from its sender only.
	_, err := repo.UpdateFlags(ctx, entity.MessageFlagFilter{Ids: []string{a2b.Id}},
		entity.MessageFlagPatch{DeletedBySender: true})
	if err != nil {
		t.Fatalf("UpdateFlags: %v", err)
	}

	forA, _ := repo.FindBetween(ctx, 1, 2)
	if len(forA) != 1 || forA[0].Content != "b to a" {
		t.Errorf("viewer 1 transcript = %+v, want only the reply", forA)
	}

	forB, _ := repo.FindBetween(ctx, 2, 1)
	if len(forB) != 2 {
		t.Errorf("viewer 2 transcript length = %d, want 2", len(forB))
	}
	for i := 1; i < len(forB); i++ {
		prev, cur := forB[i-1], forB[i]
		if cur.Timestamp.Before(prev.Timestamp) ||
			(cur.Timestamp.Equal(prev.Timestamp) && cur.Seq < prev.Seq) {
			t.Error("transcript not ordered by timestamp then seq")
		}
	}
}

func TestMemoryUpdateFlagsEmptySelection(t *testing.T) {
	repo := NewMemoryMessageRepository()
	ctx := context.Background()
	repo.Insert(ctx, 1, 2, "hi")

	count, err := repo.UpdateFlags(ctx, entity.MessageFlagFilter{Ids: []string{}},
		entity.MessageFlagPatch{IsRead: true})
	if err != nil {
		t.Fatalf("UpdateFlags: %v", err)
	}
	if count != 0 {
		t.Errorf("empty id set updated %d records, want 0", count)
	}

	count, err = repo.UpdateFlags(ctx, entity.MessageFlagFilter{SenderId: 1},
		entity.MessageFlagPatch{})
	if err != nil {
		t.Fatalf("UpdateFlags: %v", err)
	}
	if count != 0 {
		t.Errorf("zero patch updated %d records, want 0", count)
	}
}

func TestMemoryUpdateFlagsIdempotent(t *testing.T) {
	repo := NewMemoryMessageRepository()
	ctx := context.Background()
	m, _ := repo.Insert(ctx, 1, 2, "hi")

	filter := entity.MessageFlagFilter{Ids: []string{m.Id}, SenderId: 1}
	patch := entity.MessageFlagPatch{IsRevoked: true}

	count, _ := repo.UpdateFlags(ctx, filter, patch)
	if count != 1 {
		t.Fatalf("first revoke updated %d, want 1", count)
	}

	count, _ = repo.UpdateFlags(ctx, filter, patch)
	if count != 0 {
		t.Errorf("second revoke updated %d, want 0", count)
	}
}

func TestMemoryUnreadCounts(t *testing.T) {
	repo := NewMemoryMessageRepository()
	ctx := context.Background()

	repo.Insert(ctx, 1, 2, "one")
	repo.Insert(ctx, 1, 2, "two")
	m3, _ := repo.Insert(ctx, 3, 2, "three")
	repo.Insert(ctx, 2, 1, "reply")

	count, _ := repo.CountUnread(ctx, 1, 2)
	if count != 2 {
		t.Errorf("CountUnread(1,2) = %d, want 2", count)
	}

	total, _ := repo.CountUnreadTotal(ctx, 2)
	if total != 3 {
		t.Errorf("CountUnreadTotal(2) = %d, want 3", total)
	}

	// Receiver-hidden messages do not count.
	repo.UpdateFlags(ctx, entity.MessageFlagFilter{Ids: []string{m3.Id}},
		entity.MessageFlagPatch{DeletedByReceiver: true})
	total, _ = repo.CountUnreadTotal(ctx, 2)
	if total != 2 {
		t.Errorf("CountUnreadTotal(2) after hide = %d, want 2", total)
	}

	// Marking read clears the pair count.
	repo.UpdateFlags(ctx, entity.MessageFlagFilter{SenderId: 1, ReceiverId: 2, UnreadOnly: true},
		entity.MessageFlagPatch{IsRead: true})
	count, _ = repo.CountUnread(ctx, 1, 2)
	if count != 0 {
		t.Errorf("CountUnread(1,2) after mark = %d, want 0", count)
	}
}

func TestMemoryLastTimestamp(t *testing.T) {
	repo := NewMemoryMessageRepository()
	ctx := context.Background()

	ts, err := repo.LastTimestamp(ctx, 1, 2)
	if err != nil {
		t.Fatalf("LastTimestamp: %v", err)
	}
	if ts != nil {
		t.Errorf("empty pair timestamp = %v, want nil", ts)
	}

	repo.Insert(ctx, 1, 2, "first")
	last, _ := repo.Insert(ctx, 2, 1, "second")

	ts, _ = repo.LastTimestamp(ctx, 1, 2)
	if ts == nil || !ts.Equal(last.Timestamp) {
		t.Errorf("LastTimestamp = %v, want %v", ts, last.Timestamp)
	}
}
