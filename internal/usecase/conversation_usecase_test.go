package usecase

import (
	"context"
	"testing"

	"staffchat/internal/entity"
	"staffchat/internal/repository"
)

func newTestConversation(t *testing.T) ConversationUsecase {
	t.Helper()
	staffDir := repository.NewMemoryStaffDirectory(
		entity.Staff{Id: 1, Name: "Alice", Role: "admin", Active: true},
		entity.Staff{Id: 2, Name: "Bob", Role: "counsellor", Active: true},
		entity.Staff{Id: 3, Name: "Carol", Role: "counsellor", Active: true},
	)
	return NewConversationUsecase(repository.NewMemoryMessageRepository(), staffDir)
}

func TestSendMessageValidation(t *testing.T) {
	uc := newTestConversation(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		sender   int64
		receiver int64
		content  string
		wantErr  error
	}{
		{"missing sender", 0, 2, "hi", ErrMissingParty},
		{"missing receiver", 1, 0, "hi", ErrMissingParty},
		{"self message", 1, 1, "hi", ErrSelfMessage},
		{"empty content", 1, 2, "", ErrEmptyContent},
		{"blank content", 1, 2, "   ", ErrEmptyContent},
		{"unknown receiver", 1, 99, "hi", ErrUnknownParty},
		{"unknown sender", 99, 2, "hi", ErrUnknownParty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.SendMessage(ctx, tt.sender, tt.receiver, tt.content)
			if err != tt.wantErr {
				t.Errorf("SendMessage() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSendAndFetchConversation(t *testing.T) {
	uc := newTestConversation(t)
	ctx := context.Background()

	view, err := uc.SendMessage(ctx, 1, 2, "hello")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if view.Id == "" || view.SenderId != 1 || view.ReceiverId != 2 || view.Content != "hello" {
		t.Errorf("unexpected view: %+v", view)
	}
	if view.IsRead {
		t.Error("new message should start unread")
	}
	if view.Timestamp == "" {
		t.Error("view should carry a timestamp")
	}

	views, err := uc.GetConversation(ctx, 2, 1, false)
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if len(views) != 1 || views[0].Content != "hello" {
		t.Errorf("transcript = %+v", views)
	}
}

// A sends 3 to B, B sends 1 to A: B opening the thread reads all three,
// A opening their own view reads nothing of their own.
func TestImplicitMarkRead(t *testing.T) {
	uc := newTestConversation(t)
	ctx := context.Background()

	for _, content := range []string{"one", "two", "three"} {
		if _, err := uc.SendMessage(ctx, 1, 2, content); err != nil {
			t.Fatalf("SendMessage: %v", err)
		}
	}
	if _, err := uc.SendMessage(ctx, 2, 1, "reply"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	count, _ := uc.GetUnreadCount(ctx, 1, 2)
	if count != 3 {
		t.Fatalf("GetUnreadCount(1,2) = %d, want 3", count)
	}

	// The sender fetching their own view must not mark anything.
	if _, err := uc.GetConversation(ctx, 1, 2, true); err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	count, _ = uc.GetUnreadCount(ctx, 1, 2)
	if count != 3 {
		t.Errorf("GetUnreadCount(1,2) after sender fetch = %d, want 3", count)
	}

	// A fetch without markRead must not mutate either.
	if _, err := uc.GetConversation(ctx, 2, 1, false); err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	count, _ = uc.GetUnreadCount(ctx, 1, 2)
	if count != 3 {
		t.Errorf("GetUnreadCount(1,2) after plain fetch = %d, want 3", count)
	}

	views, err := uc.GetConversation(ctx, 2, 1, true)
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if len(views) != 4 {
		t.Errorf("transcript length = %d, want 4", len(views))
	}

	count, _ = uc.GetUnreadCount(ctx, 1, 2)
	if count != 0 {
		t.Errorf("GetUnreadCount(1,2) after receiver opened = %d, want 0", count)
	}
	// B's reply to A is still unread.
	count, _ = uc.GetUnreadCount(ctx, 2, 1)
	if count != 1 {
		t.Errorf("GetUnreadCount(2,1) = %d, want 1", count)
	}
}

func TestSoftDeleteConversationIsOneSided(t *testing.T) {
	uc := newTestConversation(t)
	ctx := context.Background()

	uc.SendMessage(ctx, 1, 2, "from a")
	uc.SendMessage(ctx, 2, 1, "from b")

	if err := uc.SoftDeleteConversation(ctx, 1, 2); err != nil {
		t.Fatalf("SoftDeleteConversation: %v", err)
	}

	forA, _ := uc.GetConversation(ctx, 1, 2, false)
	if len(forA) != 0 {
		t.Errorf("deleter's transcript = %+v, want empty", forA)
	}

	forB, _ := uc.GetConversation(ctx, 2, 1, false)
	if len(forB) != 2 {
		t.Errorf("partner's transcript length = %d, want 2", len(forB))
	}

	// Re-deleting is a no-op, not an error.
	if err := uc.SoftDeleteConversation(ctx, 1, 2); err != nil {
		t.Errorf("repeat SoftDeleteConversation: %v", err)
	}

	// The viewer's hidden history also drops out of recency.
	ts, _ := uc.GetLastMessageTimestamp(ctx, 1, 2)
	if ts != nil {
		t.Errorf("deleter's last message time = %v, want nil", ts)
	}
	ts, _ = uc.GetLastMessageTimestamp(ctx, 2, 1)
	if ts == nil {
		t.Error("partner's last message time should survive")
	}
}

func TestRevokeRendersNotices(t *testing.T) {
	uc := newTestConversation(t)
	ctx := context.Background()

	view, err := uc.SendMessage(ctx, 1, 2, "hello")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if err := uc.SoftDeleteMessages(ctx, []string{view.Id}, 1, DeleteModeEveryone); err != nil {
		t.Fatalf("SoftDeleteMessages: %v", err)
	}

	forSender, _ := uc.GetConversation(ctx, 1, 2, false)
	if len(forSender) != 1 || forSender[0].Content != entity.RevokedNoticeSender {
		t.Errorf("sender view = %+v, want %q", forSender, entity.RevokedNoticeSender)
	}

	forReceiver, _ := uc.GetConversation(ctx, 2, 1, false)
	if len(forReceiver) != 1 || forReceiver[0].Content != entity.RevokedNoticeOther {
		t.Errorf("receiver view = %+v, want %q", forReceiver, entity.RevokedNoticeOther)
	}

	// Revoking twice leaves the same state.
	if err := uc.SoftDeleteMessages(ctx, []string{view.Id}, 1, DeleteModeEveryone); err != nil {
		t.Fatalf("repeat SoftDeleteMessages: %v", err)
	}
	again, _ := uc.GetConversation(ctx, 2, 1, false)
	if len(again) != 1 || again[0].Content != entity.RevokedNoticeOther {
		t.Errorf("receiver view after repeat = %+v", again)
	}
}

func TestRevokeOnlyAppliesToOwnMessages(t *testing.T) {
	uc := newTestConversation(t)
	ctx := context.Background()

	mine, _ := uc.SendMessage(ctx, 1, 2, "mine")
	theirs, _ := uc.SendMessage(ctx, 2, 1, "theirs")

	// Receiver tries to revoke both; only silently skips the foreign one.
	if err := uc.SoftDeleteMessages(ctx, []string{mine.Id, theirs.Id}, 2, DeleteModeEveryone); err != nil {
		t.Fatalf("SoftDeleteMessages: %v", err)
	}

	views, _ := uc.GetConversation(ctx, 1, 2, false)
	if len(views) != 2 {
		t.Fatalf("transcript length = %d, want 2", len(views))
	}
	if views[0].Content != "mine" {
		t.Errorf("foreign message content = %q, want untouched", views[0].Content)
	}
	if views[1].Content != entity.RevokedNoticeOther {
		t.Errorf("own message content = %q, want revoked notice", views[1].Content)
	}
}

func TestLocalDeleteMessages(t *testing.T) {
	uc := newTestConversation(t)
	ctx := context.Background()

	m1, _ := uc.SendMessage(ctx, 1, 2, "sent by me")
	m2, _ := uc.SendMessage(ctx, 2, 1, "sent to me")

	// Default mode is local.
	if err := uc.SoftDeleteMessages(ctx, []string{m1.Id, m2.Id}, 1, ""); err != nil {
		t.Fatalf("SoftDeleteMessages: %v", err)
	}

	forMe, _ := uc.GetConversation(ctx, 1, 2, false)
	if len(forMe) != 0 {
		t.Errorf("my transcript = %+v, want empty", forMe)
	}

	forPartner, _ := uc.GetConversation(ctx, 2, 1, false)
	if len(forPartner) != 2 {
		t.Errorf("partner transcript length = %d, want 2", len(forPartner))
	}
}

func TestSoftDeleteMessagesValidation(t *testing.T) {
	uc := newTestConversation(t)
	ctx := context.Background()

	if err := uc.SoftDeleteMessages(ctx, nil, 1, DeleteModeLocal); err != ErrEmptyMessageIds {
		t.Errorf("empty ids error = %v, want %v", err, ErrEmptyMessageIds)
	}
	if err := uc.SoftDeleteMessages(ctx, []string{"x"}, 0, DeleteModeLocal); err != ErrMissingParty {
		t.Errorf("missing user error = %v, want %v", err, ErrMissingParty)
	}
	if err := uc.SoftDeleteMessages(ctx, []string{"x"}, 1, "purge"); err != ErrInvalidMode {
		t.Errorf("bad mode error = %v, want %v", err, ErrInvalidMode)
	}
	// Ids that resolve to nothing are a no-op, not a failure.
	if err := uc.SoftDeleteMessages(ctx, []string{"missing"}, 1, DeleteModeLocal); err != nil {
		t.Errorf("unknown ids error = %v, want nil", err)
	}
}

func TestRevokeAndLocalDeleteAreOrthogonal(t *testing.T) {
	uc := newTestConversation(t)
	ctx := context.Background()

	m, _ := uc.SendMessage(ctx, 1, 2, "hello")

	if err := uc.SoftDeleteMessages(ctx, []string{m.Id}, 1, DeleteModeEveryone); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	// The receiver can still hide the revoked message locally.
	if err := uc.SoftDeleteMessages(ctx, []string{m.Id}, 2, DeleteModeLocal); err != nil {
		t.Fatalf("local delete: %v", err)
	}

	forReceiver, _ := uc.GetConversation(ctx, 2, 1, false)
	if len(forReceiver) != 0 {
		t.Errorf("receiver transcript = %+v, want hidden", forReceiver)
	}
	// The sender still sees the revocation notice.
	forSender, _ := uc.GetConversation(ctx, 1, 2, false)
	if len(forSender) != 1 || forSender[0].Content != entity.RevokedNoticeSender {
		t.Errorf("sender transcript = %+v", forSender)
	}
}

func TestGetTotalUnread(t *testing.T) {
	uc := newTestConversation(t)
	ctx := context.Background()

	uc.SendMessage(ctx, 1, 2, "from alice")
	uc.SendMessage(ctx, 3, 2, "from carol")

	total, err := uc.GetTotalUnread(ctx, 2)
	if err != nil {
		t.Fatalf("GetTotalUnread: %v", err)
	}
	if total != 2 {
		t.Errorf("GetTotalUnread(2) = %d, want 2", total)
	}

	uc.GetConversation(ctx, 2, 1, true)
	total, _ = uc.GetTotalUnread(ctx, 2)
	if total != 1 {
		t.Errorf("GetTotalUnread(2) after reading alice = %d, want 1", total)
	}
}
