package repository

import (
	"context"
	"errors"
	"time"

	"staffchat/internal/entity"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrEmptySender   = errors.New("sender id is required")
	ErrEmptyReceiver = errors.New("receiver id is required")
	ErrEmptyContent  = errors.New("message content is required")
)

// MessageRepository is the message log: insert plus the flag and count
// primitives everything else is built from. Soft-delete and revocation
// go through UpdateFlags; nothing here ever removes a record.
type MessageRepository interface {
	// Insert stores a new message with all flags false, assigning its
	// id, timestamp and sequence number.
	Insert(ctx context.Context, senderId, receiverId int64, content string) (entity.Message, error)

	// FindBetween returns the messages of the (viewer, partner) pair
	// that are visible to the viewer, ordered by timestamp then seq
	// ascending.
	FindBetween(ctx context.Context, viewerId, partnerId int64) ([]entity.Message, error)

	// LastTimestamp returns the newest timestamp among the pair's
	// messages visible to the viewer, or nil when there are none.
	LastTimestamp(ctx context.Context, viewerId, partnerId int64) (*time.Time, error)

	// CountUnread counts unread sender->receiver messages not hidden
	// by the receiver.
	CountUnread(ctx context.Context, senderId, receiverId int64) (int64, error)

	// CountUnreadTotal counts unread messages to receiverId across all
	// senders, for the client's badge.
	CountUnreadTotal(ctx context.Context, receiverId int64) (int64, error)

	// UpdateFlags raises the patch's flags on every message matching
	// the filter and returns the number of records updated. An empty
	// id selection or an empty patch is a no-op.
	UpdateFlags(ctx context.Context, filter entity.MessageFlagFilter, patch entity.MessageFlagPatch) (int64, error)
}

type messageRepository struct {
	db mongo.Database
}

func NewMessageRepository(db mongo.Database) MessageRepository {
	return &messageRepository{
		db: db,
	}
}

// nextSeq increments and returns the message insert counter. The
// counter is what orders messages that land on the same timestamp.
func (r *messageRepository) nextSeq(ctx context.Context) (int64, error) {
	collection := r.db.Collection("counters")
	filter := bson.M{"_id": "messages"}
	update := bson.M{"$inc": bson.M{"seq": int64(1)}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&counter)
	if err != nil {
		return 0, err
	}

	return counter.Seq, nil
}

func (r *messageRepository) Insert(ctx context.Context, senderId, receiverId int64, content string) (entity.Message, error) {
	if senderId == 0 {
		return entity.Message{}, ErrEmptySender
	}
	if receiverId == 0 {
		return entity.Message{}, ErrEmptyReceiver
	}
	if content == "" {
		return entity.Message{}, ErrEmptyContent
	}

	seq, err := r.nextSeq(ctx)
	if err != nil {
		return entity.Message{}, err
	}

	message := entity.Message{
		Id:         uuid.New().String(),
		SenderId:   senderId,
		ReceiverId: receiverId,
		Content:    content,
		Timestamp:  time.Now().UTC(),
		Seq:        seq,
	}

	collection := r.db.Collection("messages")
	_, err = collection.InsertOne(ctx, message)
	if err != nil {
		return entity.Message{}, err
	}

	return message, nil
}

// pairFilter matches the pair's messages still visible to the viewer:
// each party's own delete flag hides only their side.
func pairFilter(viewerId, partnerId int64) bson.M {
	return bson.M{
		"$or": bson.A{
			bson.M{
				"senderId":        viewerId,
				"receiverId":      partnerId,
				"deletedBySender": false,
			},
			bson.M{
				"senderId":          partnerId,
				"receiverId":        viewerId,
				"deletedByReceiver": false,
			},
		},
	}
}

func (r *messageRepository) FindBetween(ctx context.Context, viewerId, partnerId int64) ([]entity.Message, error) {
	collection := r.db.Collection("messages")

	opts := options.Find().SetSort(bson.D{
		{Key: "timestamp", Value: 1},
		{Key: "seq", Value: 1},
	})

	cursor, err := collection.Find(ctx, pairFilter(viewerId, partnerId), opts)
	if err != nil {
		return nil, err
	}

	var messages []entity.Message
	err = cursor.All(ctx, &messages)
	if err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *messageRepository) LastTimestamp(ctx context.Context, viewerId, partnerId int64) (*time.Time, error) {
	collection := r.db.Collection("messages")

	opts := options.FindOne().SetSort(bson.D{
		{Key: "timestamp", Value: -1},
		{Key: "seq", Value: -1},
	})

	var message entity.Message
	err := collection.FindOne(ctx, pairFilter(viewerId, partnerId), opts).Decode(&message)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	ts := message.Timestamp
	return &ts, nil
}

func (r *messageRepository) CountUnread(ctx context.Context, senderId, receiverId int64) (int64, error) {
	collection := r.db.Collection("messages")
	filter := bson.M{
		"senderId":          senderId,
		"receiverId":        receiverId,
		"isRead":            false,
		"deletedByReceiver": false,
	}

	return collection.CountDocuments(ctx, filter)
}

func (r *messageRepository) CountUnreadTotal(ctx context.Context, receiverId int64) (int64, error) {
	collection := r.db.Collection("messages")
	filter := bson.M{
		"receiverId":        receiverId,
		"isRead":            false,
		"deletedByReceiver": false,
	}

	return collection.CountDocuments(ctx, filter)
}

func (r *messageRepository) UpdateFlags(ctx context.Context, filter entity.MessageFlagFilter, patch entity.MessageFlagPatch) (int64, error) {
	if patch.IsZero() {
		return 0, nil
	}

	bsonFilter := bson.M{}
	if filter.Ids != nil {
		if len(filter.Ids) == 0 {
			return 0, nil
		}
		bsonFilter["_id"] = bson.M{"$in": filter.Ids}
	}
	if filter.SenderId != 0 {
		bsonFilter["senderId"] = filter.SenderId
	}
	if filter.ReceiverId != 0 {
		bsonFilter["receiverId"] = filter.ReceiverId
	}
	if filter.UnreadOnly {
		bsonFilter["isRead"] = false
	}

	set := bson.M{}
	if patch.IsRead {
		set["isRead"] = true
	}
	if patch.DeletedBySender {
		set["deletedBySender"] = true
	}
	if patch.DeletedByReceiver {
		set["deletedByReceiver"] = true
	}
	if patch.IsRevoked {
		set["isRevoked"] = true
	}

	collection := r.db.Collection("messages")
	result, err := collection.UpdateMany(ctx, bsonFilter, bson.M{"$set": set})
	if err != nil {
		return 0, err
	}

	return result.ModifiedCount, nil
}
