package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/JaiminPatel345/make-my-buddy/internal/models"
)

type mongoRequestRepo struct {
	col *mongo.Collection
}

func NewMongoRequestRepo(db *mongo.Database, collection string) BuddyRequestRepository {
	return &mongoRequestRepo{col: db.Collection(collection)}
}

// EnsureRequestIndexes enforces at most one request per (sender, receiver,
// type) triple.
func EnsureRequestIndexes(ctx context.Context, db *mongo.Database, collection string) error {
	_, err := db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "sender", Value: 1},
			{Key: "receiver", Value: 1},
			{Key: "type", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *mongoRequestRepo) Upsert(ctx context.Context, sender, receiver primitive.ObjectID, typ models.RequestType, expiresAt time.Time) (*models.BuddyRequest, error) {
	now := time.Now().UTC()
	var req models.BuddyRequest
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"sender": sender, "receiver": receiver, "type": typ},
		bson.M{
			"$set": bson.M{
				"status":     models.RequestStatusPending,
				"expires_at": expiresAt,
				"updated_at": now,
			},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&req)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *mongoRequestRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.BuddyRequest, error) {
	var req models.BuddyRequest
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *mongoRequestRepo) FindPendingTriple(ctx context.Context, sender, receiver primitive.ObjectID, typ models.RequestType) (*models.BuddyRequest, error) {
	var req models.BuddyRequest
	err := r.col.FindOne(ctx, bson.M{
		"sender":   sender,
		"receiver": receiver,
		"type":     typ,
		"status":   models.RequestStatusPending,
	}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *mongoRequestRepo) findPending(ctx context.Context, filter bson.M) ([]models.BuddyRequest, error) {
	filter["status"] = models.RequestStatusPending
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var reqs []models.BuddyRequest
	if err := cur.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *mongoRequestRepo) FindPendingBySender(ctx context.Context, sender primitive.ObjectID) ([]models.BuddyRequest, error) {
	return r.findPending(ctx, bson.M{"sender": sender})
}

func (r *mongoRequestRepo) FindPendingByReceiver(ctx context.Context, receiver primitive.ObjectID) ([]models.BuddyRequest, error) {
	return r.findPending(ctx, bson.M{"receiver": receiver})
}

func (r *mongoRequestRepo) SetStatus(ctx context.Context, id primitive.ObjectID, status models.RequestStatus) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRequestRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *mongoRequestRepo) DeleteMany(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}
