package comment

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"instafeed/internal/common"
	"instafeed/internal/dbmongo"
)

// PageSize is the page length of comment and reply listings. Shorter than
// the feed page: comments render inline under a post.
const PageSize = 5

type Repository interface {
	CreateComment(ctx context.Context, c *dbmongo.Comment) error
	GetCommentByID(ctx context.Context, id primitive.ObjectID) (*dbmongo.Comment, error)
	DeleteComment(ctx context.Context, id primitive.ObjectID) (*dbmongo.Comment, error)
	DeleteComments(ctx context.Context, ids []primitive.ObjectID) error

	AttachReply(ctx context.Context, parentID, replyID primitive.ObjectID) error
	DetachReply(ctx context.Context, replyID primitive.ObjectID) error

	GetCommentsByPost(ctx context.Context, postID primitive.ObjectID, page int64) ([]dbmongo.CommentView, error)
	GetReplies(ctx context.Context, ids []primitive.ObjectID, page int64) ([]dbmongo.CommentView, error)

	AddLike(ctx context.Context, commentID, userID primitive.ObjectID) (bool, error)
	RemoveLike(ctx context.Context, commentID, userID primitive.ObjectID) (bool, error)
}

type repository struct {
	db *dbmongo.MongoClient
}

func NewRepository(db *dbmongo.MongoClient) Repository {
	return &repository{db: db}
}

func (r *repository) CreateComment(ctx context.Context, c *dbmongo.Comment) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	res, err := r.db.Comments().InsertOne(ctx, c)
	if err != nil {
		return mapStoreError(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = id
	}
	return nil
}

func (r *repository) GetCommentByID(ctx context.Context, id primitive.ObjectID) (*dbmongo.Comment, error) {
	var c dbmongo.Comment
	err := r.db.Comments().FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&c)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return &c, nil
}

func (r *repository) DeleteComment(ctx context.Context, id primitive.ObjectID) (*dbmongo.Comment, error) {
	var c dbmongo.Comment
	err := r.db.Comments().FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&c)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return &c, nil
}

func (r *repository) DeleteComments(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Comments().DeleteMany(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	return mapStoreError(err)
}

func (r *repository) AttachReply(ctx context.Context, parentID, replyID primitive.ObjectID) error {
	res, err := r.db.Comments().UpdateByID(ctx, parentID,
		bson.D{{Key: "$addToSet", Value: bson.D{{Key: "replies", Value: replyID}}}})
	if err != nil {
		return mapStoreError(err)
	}
	if res.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

// DetachReply drops the reply reference from whichever comment holds it.
func (r *repository) DetachReply(ctx context.Context, replyID primitive.ObjectID) error {
	_, err := r.db.Comments().UpdateMany(ctx,
		bson.D{{Key: "replies", Value: replyID}},
		bson.D{{Key: "$pull", Value: bson.D{{Key: "replies", Value: replyID}}}})
	return mapStoreError(err)
}

func (r *repository) GetCommentsByPost(ctx context.Context, postID primitive.ObjectID, page int64) ([]dbmongo.CommentView, error) {
	filter := bson.D{
		{Key: "post", Value: postID},
		{Key: "isChild", Value: false},
	}
	return r.list(ctx, filter, page)
}

func (r *repository) GetReplies(ctx context.Context, ids []primitive.ObjectID, page int64) ([]dbmongo.CommentView, error) {
	filter := bson.D{
		{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}},
		{Key: "isChild", Value: true},
	}
	return r.list(ctx, filter, page)
}

func (r *repository) AddLike(ctx context.Context, commentID, userID primitive.ObjectID) (bool, error) {
	res, err := r.db.Comments().UpdateByID(ctx, commentID,
		bson.D{{Key: "$addToSet", Value: bson.D{{Key: "likes", Value: userID}}}})
	if err != nil {
		return false, mapStoreError(err)
	}
	if res.MatchedCount == 0 {
		return false, common.ErrNotFound
	}
	return res.ModifiedCount > 0, nil
}

func (r *repository) RemoveLike(ctx context.Context, commentID, userID primitive.ObjectID) (bool, error) {
	res, err := r.db.Comments().UpdateByID(ctx, commentID,
		bson.D{{Key: "$pull", Value: bson.D{{Key: "likes", Value: userID}}}})
	if err != nil {
		return false, mapStoreError(err)
	}
	if res.MatchedCount == 0 {
		return false, common.ErrNotFound
	}
	return res.ModifiedCount > 0, nil
}

func (r *repository) list(ctx context.Context, filter bson.D, page int64) ([]dbmongo.CommentView, error) {
	if page < 0 {
		page = 0
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$skip", Value: page * PageSize}},
		{{Key: "$limit", Value: PageSize}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: dbmongo.CollUsers},
			{Key: "localField", Value: "user"},
			{Key: "foreignField", Value: "_id"},
			{Key: "pipeline", Value: bson.A{summaryProject}},
			{Key: "as", Value: "user"},
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: dbmongo.CollUsers},
			{Key: "localField", Value: "likes"},
			{Key: "foreignField", Value: "_id"},
			{Key: "pipeline", Value: bson.A{summaryProject}},
			{Key: "as", Value: "likes"},
		}}},
	}

	cursor, err := r.db.Comments().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapStoreError(err)
	}
	defer cursor.Close(ctx)

	comments := []dbmongo.CommentView{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, mapStoreError(err)
	}
	return comments, nil
}

var summaryProject = bson.D{{Key: "$project", Value: bson.D{
	{Key: "_id", Value: 1},
	{Key: "name", Value: 1},
	{Key: "alias", Value: 1},
	{Key: "image", Value: 1},
}}}

func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return common.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return common.ErrConflict
	default:
		return err
	}
}
