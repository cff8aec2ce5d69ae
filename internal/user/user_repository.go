package user

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"instafeed/internal/common"
	"instafeed/internal/dbmongo"
)

// TopCreatorsPageSize is the page length of the popular-creators listing.
const TopCreatorsPageSize = 12

// Creator is a user ranked by audience size.
type Creator struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Alias          string             `bson:"alias" json:"alias"`
	Image          string             `bson:"image" json:"image"`
	Bio            string             `bson:"bio" json:"bio"`
	FollowersCount int                `bson:"followersCount" json:"followersCount"`
}

// Patch lists the mutable profile fields, each optional.
type Patch struct {
	Name  *string `json:"name"`
	Alias *string `json:"alias"`
	Email *string `json:"email"`
	Bio   *string `json:"bio"`
	Image *string `json:"image"`
}

type Repository interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*dbmongo.User, error)
	GetUserByAlias(ctx context.Context, alias string) (*dbmongo.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, patch Patch) (*dbmongo.User, error)

	AttachPost(ctx context.Context, userID, postID primitive.ObjectID) error
	DetachPost(ctx context.Context, userID, postID primitive.ObjectID) error

	AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error
	RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error
	AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) error
	RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) error

	GetTopCreators(ctx context.Context, page int64) ([]Creator, error)
}

type repository struct {
	db *dbmongo.MongoClient
}

func NewRepository(db *dbmongo.MongoClient) Repository {
	return &repository{db: db}
}

func (r *repository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*dbmongo.User, error) {
	var u dbmongo.User
	err := r.db.Users().FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&u)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return &u, nil
}

func (r *repository) GetUserByAlias(ctx context.Context, alias string) (*dbmongo.User, error) {
	var u dbmongo.User
	err := r.db.Users().FindOne(ctx, bson.D{{Key: "alias", Value: alias}}).Decode(&u)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return &u, nil
}

func (r *repository) UpdateUser(ctx context.Context, id primitive.ObjectID, patch Patch) (*dbmongo.User, error) {
	set := bson.D{}
	if patch.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *patch.Name})
	}
	if patch.Alias != nil {
		set = append(set, bson.E{Key: "alias", Value: *patch.Alias})
	}
	if patch.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *patch.Email})
	}
	if patch.Bio != nil {
		set = append(set, bson.E{Key: "bio", Value: *patch.Bio})
	}
	if patch.Image != nil {
		set = append(set, bson.E{Key: "image", Value: *patch.Image})
	}
	if len(set) == 0 {
		return r.GetUserByID(ctx, id)
	}

	var u dbmongo.User
	err := r.db.Users().FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: set}, {Key: "$currentDate", Value: bson.D{{Key: "updatedAt", Value: true}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return &u, nil
}

func (r *repository) AttachPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return r.pushToSet(ctx, userID, "posts", postID)
}

func (r *repository) DetachPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return r.pull(ctx, userID, "posts", postID)
}

func (r *repository) AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error {
	return r.pushToSet(ctx, userID, "following", targetID)
}

func (r *repository) RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error {
	return r.pull(ctx, userID, "following", targetID)
}

func (r *repository) AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	return r.pushToSet(ctx, userID, "followers", followerID)
}

func (r *repository) RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	return r.pull(ctx, userID, "followers", followerID)
}

// GetTopCreators ranks users by audience size, newest id breaking ties so
// pages stay stable between requests.
func (r *repository) GetTopCreators(ctx context.Context, page int64) ([]Creator, error) {
	if page < 0 {
		page = 0
	}
	pipeline := mongo.Pipeline{
		{{Key: "$addFields", Value: bson.D{
			{Key: "followersCount", Value: bson.D{{Key: "$size", Value: bson.D{
				{Key: "$ifNull", Value: bson.A{"$followers", bson.A{}}},
			}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "followersCount", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$skip", Value: page * TopCreatorsPageSize}},
		{{Key: "$limit", Value: TopCreatorsPageSize}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 1},
			{Key: "name", Value: 1},
			{Key: "alias", Value: 1},
			{Key: "image", Value: 1},
			{Key: "bio", Value: 1},
			{Key: "followersCount", Value: 1},
		}}},
	}

	cursor, err := r.db.Users().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapStoreError(err)
	}
	defer cursor.Close(ctx)

	creators := []Creator{}
	if err := cursor.All(ctx, &creators); err != nil {
		return nil, mapStoreError(err)
	}
	return creators, nil
}

func (r *repository) pushToSet(ctx context.Context, userID primitive.ObjectID, field string, value primitive.ObjectID) error {
	res, err := r.db.Users().UpdateByID(ctx, userID,
		bson.D{{Key: "$addToSet", Value: bson.D{{Key: field, Value: value}}}})
	if err != nil {
		return mapStoreError(err)
	}
	if res.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *repository) pull(ctx context.Context, userID primitive.ObjectID, field string, value primitive.ObjectID) error {
	res, err := r.db.Users().UpdateByID(ctx, userID,
		bson.D{{Key: "$pull", Value: bson.D{{Key: field, Value: value}}}})
	if err != nil {
		return mapStoreError(err)
	}
	if res.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return common.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return common.ErrConflict
	default:
		return err
	}
}
