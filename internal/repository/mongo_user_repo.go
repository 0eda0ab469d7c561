package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/JaiminPatel345/make-my-buddy/internal/models"
)

type mongoUserRepo struct {
	col *mongo.Collection
}

func NewMongoUserRepo(db *mongo.Database, collection string) UserRepository {
	return &mongoUserRepo{col: db.Collection(collection)}
}

// EnsureUserIndexes creates the unique username/mobile indexes. Duplicate
// registrations surface as mongo duplicate-key errors mapped at the boundary.
func EnsureUserIndexes(ctx context.Context, db *mongo.Database, collection string) error {
	_, err := db.Collection(collection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "mobile", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "is_active", Value: 1}},
		},
	})
	return err
}

func (r *mongoUserRepo) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = id
	}
	return nil
}

func (r *mongoUserRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *mongoUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *mongoUserRepo) FindByMobile(ctx context.Context, mobile string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"mobile": mobile})
}

func (r *mongoUserRepo) UpdateProfile(ctx context.Context, username string, upd ProfileUpdate) (*models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Goal != nil {
		set["goal"] = *upd.Goal
	}
	if upd.Interests != nil {
		set["interests"] = upd.Interests
	}
	if upd.Avatar != nil {
		set["avatar"] = *upd.Avatar
	}

	var u models.User
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"username": username},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *mongoUserRepo) SetMobileVerified(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"is_mobile_verified": true, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *mongoUserRepo) SetBuddy(ctx context.Context, id primitive.ObjectID, buddy *primitive.ObjectID) error {
	var value interface{}
	if buddy != nil {
		value = *buddy
	}
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"buddy": value}})
}

func (r *mongoUserRepo) ArchiveBuddy(ctx context.Context, id, former primitive.ObjectID) error {
	// $addToSet keeps pvs_buddy duplicate-free no matter how often the same
	// pair splits up.
	return r.updateOne(ctx, id, bson.M{"$addToSet": bson.M{"pvs_buddy": former}})
}

func (r *mongoUserRepo) AddToBuddies(ctx context.Context, id, other primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{"$addToSet": bson.M{"buddies": other}})
}

func (r *mongoUserRepo) RemoveFromBuddies(ctx context.Context, id, other primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{"$pull": bson.M{"buddies": other}})
}

func (r *mongoUserRepo) AddBlocked(ctx context.Context, id, target primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{"$addToSet": bson.M{"blocked_users": target}})
}

func (r *mongoUserRepo) RemoveBlocked(ctx context.Context, id, target primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{"$pull": bson.M{"blocked_users": target}})
}

func (r *mongoUserRepo) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	update["$set"] = mergeSet(update["$set"], bson.M{"updated_at": time.Now().UTC()})
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func mergeSet(existing interface{}, extra bson.M) bson.M {
	set, ok := existing.(bson.M)
	if !ok {
		set = bson.M{}
	}
	for k, v := range extra {
		set[k] = v
	}
	return set
}

func candidateBase(exclude []primitive.ObjectID) bson.M {
	if exclude == nil {
		exclude = []primitive.ObjectID{}
	}
	return bson.M{
		"_id":       bson.M{"$nin": exclude},
		"buddy":     nil,
		"is_active": true,
	}
}

func (r *mongoUserRepo) FindCandidatesByGoal(ctx context.Context, goal models.Goal, exclude []primitive.ObjectID, limit int64) ([]models.User, error) {
	filter := candidateBase(exclude)
	if goal.Title != "" {
		filter["goal.title"] = goal.Title
	}
	if goal.Target != "" {
		filter["goal.target"] = goal.Target
	}
	if goal.Year != 0 {
		filter["goal.year"] = goal.Year
	}
	if goal.Level != "" {
		filter["goal.level"] = goal.Level
	}
	return r.findCandidates(ctx, filter, limit)
}

func (r *mongoUserRepo) FindCandidatesByCommunity(ctx context.Context, communities, exclude []primitive.ObjectID, limit int64) ([]models.User, error) {
	if len(communities) == 0 {
		return nil, nil
	}
	filter := candidateBase(exclude)
	filter["communities"] = bson.M{"$in": communities}
	return r.findCandidates(ctx, filter, limit)
}

func (r *mongoUserRepo) FindCandidatesByFuzzyGoal(ctx context.Context, titleWords []string, year int, exclude []primitive.ObjectID, limit int64) ([]models.User, error) {
	filter := candidateBase(exclude)
	if len(titleWords) > 0 {
		or := make([]bson.M, 0, len(titleWords))
		for _, w := range titleWords {
			or = append(or, bson.M{"goal.title": primitive.Regex{Pattern: regexp.QuoteMeta(w), Options: "i"}})
		}
		filter["$or"] = or
	}
	if year != 0 {
		filter["goal.year"] = bson.M{"$gte": year - 1, "$lte": year + 1}
	}
	return r.findCandidates(ctx, filter, limit)
}

func (r *mongoUserRepo) findCandidates(ctx context.Context, filter bson.M, limit int64) ([]models.User, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
