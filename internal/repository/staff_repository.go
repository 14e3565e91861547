package repository

import (
	"context"
	"errors"

	"staffchat/internal/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrStaffNotFound = errors.New("staff member not found")

// StaffDirectory is the chat core's read-only view of the staff table.
// Staff records are owned by the rest of the back office; the core only
// resolves parties and lists active members for the roster.
type StaffDirectory interface {
	Get(ctx context.Context, staffId int64) (entity.Staff, error)
	GetByLoginId(ctx context.Context, loginId string) (entity.Staff, error)
	Exists(ctx context.Context, staffId int64) (bool, error)
	ListActive(ctx context.Context) ([]entity.Staff, error)
}

type staffDirectory struct {
	db mongo.Database
}

func NewStaffDirectory(db mongo.Database) StaffDirectory {
	return &staffDirectory{
		db: db,
	}
}

func (r *staffDirectory) Get(ctx context.Context, staffId int64) (entity.Staff, error) {
	collection := r.db.Collection("staff")
	filter := bson.M{"_id": staffId}

	var staff entity.Staff
	err := collection.FindOne(ctx, filter).Decode(&staff)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return entity.Staff{}, ErrStaffNotFound
		}
		return entity.Staff{}, err
	}

	return staff, nil
}

func (r *staffDirectory) GetByLoginId(ctx context.Context, loginId string) (entity.Staff, error) {
	collection := r.db.Collection("staff")
	filter := bson.M{"loginId": loginId}

	var staff entity.Staff
	err := collection.FindOne(ctx, filter).Decode(&staff)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return entity.Staff{}, ErrStaffNotFound
		}
		return entity.Staff{}, err
	}

	return staff, nil
}

func (r *staffDirectory) Exists(ctx context.Context, staffId int64) (bool, error) {
	collection := r.db.Collection("staff")
	filter := bson.M{"_id": staffId}

	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *staffDirectory) ListActive(ctx context.Context) ([]entity.Staff, error) {
	collection := r.db.Collection("staff")
	filter := bson.M{"active": true}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var staff []entity.Staff
	err = cursor.All(ctx, &staff)
	if err != nil {
		return nil, err
	}

	return staff, nil
}
