package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"staffchat/internal/entity"
	"staffchat/internal/repository"
)

// Delete modes for SoftDeleteMessages.
const (
	DeleteModeLocal    = "local"
	DeleteModeEveryone = "everyone"
)

var (
	ErrMissingParty    = errors.New("sender and receiver are required")
	ErrEmptyContent    = errors.New("message content is required")
	ErrSelfMessage     = errors.New("cannot send a message to yourself")
	ErrUnknownParty    = errors.New("sender or receiver not found in staff directory")
	ErrEmptyMessageIds = errors.New("message ids are required")
	ErrInvalidMode     = errors.New("delete mode must be \"local\" or \"everyone\"")
)

// ConversationUsecase is the public contract of the chat core: sending,
// per-viewer transcripts, unread counts, soft-deletes and revocation.
type ConversationUsecase interface {
	// SendMessage validates both parties against the staff directory
	// and appends a message to the log.
	SendMessage(ctx context.Context, senderId, receiverId int64, content string) (entity.MessageView, error)

	// GetConversation returns the transcript between viewer and partner
	// as seen by the viewer, ascending by timestamp. When markRead is
	// set, every unread partner->viewer message is first marked read;
	// that is the normal client flow when a thread is opened.
	GetConversation(ctx context.Context, viewerId, partnerId int64, markRead bool) ([]entity.MessageView, error)

	// GetLastMessageTimestamp returns the time of the newest message
	// visible to the viewer in the pair, or nil if there is none.
	GetLastMessageTimestamp(ctx context.Context, viewerId, partnerId int64) (*time.Time, error)

	// GetUnreadCount counts unread messages sent by senderId to
	// receiverId. Direction is explicit, not viewer-relative.
	GetUnreadCount(ctx context.Context, senderId, receiverId int64) (int64, error)

	// GetTotalUnread counts unread messages to receiverId across all
	// partners.
	GetTotalUnread(ctx context.Context, receiverId int64) (int64, error)

	// SoftDeleteConversation hides the whole conversation with
	// targetId from userId's view. One-sided and idempotent; the other
	// party's view is untouched.
	SoftDeleteConversation(ctx context.Context, userId, targetId int64) error

	// SoftDeleteMessages hides the given messages. DeleteModeLocal
	// hides them from userId's view only; DeleteModeEveryone revokes
	// them, but only those userId sent — the rest are silently skipped.
	SoftDeleteMessages(ctx context.Context, ids []string, userId int64, mode string) error
}

type conversationUsecase struct {
	messageRepo repository.MessageRepository
	staffDir    repository.StaffDirectory
}

func NewConversationUsecase(messageRepo repository.MessageRepository, staffDir repository.StaffDirectory) ConversationUsecase {
	return &conversationUsecase{
		messageRepo: messageRepo,
		staffDir:    staffDir,
	}
}

func (c *conversationUsecase) SendMessage(ctx context.Context, senderId, receiverId int64, content string) (entity.MessageView, error) {
	if senderId == 0 || receiverId == 0 {
		return entity.MessageView{}, ErrMissingParty
	}
	if senderId == receiverId {
		return entity.MessageView{}, ErrSelfMessage
	}
	if strings.TrimSpace(content) == "" {
		return entity.MessageView{}, ErrEmptyContent
	}

	for _, id := range []int64{senderId, receiverId} {
		exists, err := c.staffDir.Exists(ctx, id)
		if err != nil {
			return entity.MessageView{}, err
		}
		if !exists {
			return entity.MessageView{}, ErrUnknownParty
		}
	}

	message, err := c.messageRepo.Insert(ctx, senderId, receiverId, content)
	if err != nil {
		return entity.MessageView{}, err
	}

	return message.ViewFor(senderId), nil
}

func (c *conversationUsecase) GetConversation(ctx context.Context, viewerId, partnerId int64, markRead bool) ([]entity.MessageView, error) {
	if markRead {
		// Opening the thread reads everything the partner sent. A
		// message arriving while we fetch may miss this pass; it will
		// be caught on the next open.
		_, err := c.messageRepo.UpdateFlags(ctx, entity.MessageFlagFilter{
			SenderId:   partnerId,
			ReceiverId: viewerId,
			UnreadOnly: true,
		}, entity.MessageFlagPatch{IsRead: true})
		if err != nil {
			return nil, err
		}
	}

	messages, err := c.messageRepo.FindBetween(ctx, viewerId, partnerId)
	if err != nil {
		return nil, err
	}

	views := make([]entity.MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, m.ViewFor(viewerId))
	}

	return views, nil
}

func (c *conversationUsecase) GetLastMessageTimestamp(ctx context.Context, viewerId, partnerId int64) (*time.Time, error) {
	return c.messageRepo.LastTimestamp(ctx, viewerId, partnerId)
}

func (c *conversationUsecase) GetUnreadCount(ctx context.Context, senderId, receiverId int64) (int64, error) {
	return c.messageRepo.CountUnread(ctx, senderId, receiverId)
}

func (c *conversationUsecase) GetTotalUnread(ctx context.Context, receiverId int64) (int64, error) {
	return c.messageRepo.CountUnreadTotal(ctx, receiverId)
}

func (c *conversationUsecase) SoftDeleteConversation(ctx context.Context, userId, targetId int64) error {
	if userId == 0 || targetId == 0 {
		return ErrMissingParty
	}

	// Messages the user sent disappear via the sender flag, messages
	// they received via the receiver flag.
	_, err := c.messageRepo.UpdateFlags(ctx, entity.MessageFlagFilter{
		SenderId:   userId,
		ReceiverId: targetId,
	}, entity.MessageFlagPatch{DeletedBySender: true})
	if err != nil {
		return err
	}

	_, err = c.messageRepo.UpdateFlags(ctx, entity.MessageFlagFilter{
		SenderId:   targetId,
		ReceiverId: userId,
	}, entity.MessageFlagPatch{DeletedByReceiver: true})
	return err
}

func (c *conversationUsecase) SoftDeleteMessages(ctx context.Context, ids []string, userId int64, mode string) error {
	if len(ids) == 0 {
		return ErrEmptyMessageIds
	}
	if userId == 0 {
		return ErrMissingParty
	}
	if mode == "" {
		mode = DeleteModeLocal
	}

	switch mode {
	case DeleteModeEveryone:
		// A party can only revoke messages they sent; ids where the
		// caller is the receiver simply do not match.
		_, err := c.messageRepo.UpdateFlags(ctx, entity.MessageFlagFilter{
			Ids:      ids,
			SenderId: userId,
		}, entity.MessageFlagPatch{IsRevoked: true})
		return err

	case DeleteModeLocal:
		_, err := c.messageRepo.UpdateFlags(ctx, entity.MessageFlagFilter{
			Ids:      ids,
			SenderId: userId,
		}, entity.MessageFlagPatch{DeletedBySender: true})
		if err != nil {
			return err
		}

		_, err = c.messageRepo.UpdateFlags(ctx, entity.MessageFlagFilter{
			Ids:        ids,
			ReceiverId: userId,
		}, entity.MessageFlagPatch{DeletedByReceiver: true})
		return err

	default:
		return ErrInvalidMode
	}
}
