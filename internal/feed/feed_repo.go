package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"instafeed/internal/common"
	"instafeed/internal/dbmongo"
)

// PostRepository is the typed query/mutation surface over the posts
// collection. It owns query shape only; ranking rules come in via Spec.
type PostRepository interface {
	CreatePost(ctx context.Context, post *dbmongo.Post) error
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*dbmongo.Post, error)
	GetFeedPostByID(ctx context.Context, id primitive.ObjectID) (*dbmongo.FeedPost, error)
	ListFeed(ctx context.Context, spec Spec, viewer *dbmongo.User, source *dbmongo.Post) ([]dbmongo.FeedPost, error)
	UpdatePost(ctx context.Context, id primitive.ObjectID, patch PostPatch) (*dbmongo.Post, error)
	DeletePost(ctx context.Context, id primitive.ObjectID) (*dbmongo.Post, error)

	AddLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error)
	RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error)
	AttachSave(ctx context.Context, postID, saveID primitive.ObjectID) error
	DetachSave(ctx context.Context, postID, saveID primitive.ObjectID) error
	AttachComment(ctx context.Context, postID, commentID primitive.ObjectID) error
	DetachComment(ctx context.Context, postID, commentID primitive.ObjectID) error
}

// SaveRepository manages the bookmark edges.
type SaveRepository interface {
	CreateSave(ctx context.Context, save *dbmongo.Save) error
	GetSaveByUserAndPost(ctx context.Context, userID, postID primitive.ObjectID) (*dbmongo.Save, error)
	DeleteSave(ctx context.Context, id primitive.ObjectID) error
	DeleteSavesByPost(ctx context.Context, postID primitive.ObjectID) error
}

// PostPatch lists the mutable post fields, each optional; applied
// field-by-field, never by generic merge.
type PostPatch struct {
	Content    *string
	Tags       []string
	Location   *string
	Visibility *dbmongo.Visibility
	Image      *string
}

type postRepository struct {
	db *dbmongo.MongoClient
}

func NewPostRepository(db *dbmongo.MongoClient) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) CreatePost(ctx context.Context, post *dbmongo.Post) error {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []primitive.ObjectID{}
	}
	if post.Saves == nil {
		post.Saves = []primitive.ObjectID{}
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}

	res, err := r.db.Posts().InsertOne(ctx, post)
	if err != nil {
		return mapStoreError(err)
	}
	post.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *postRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*dbmongo.Post, error) {
	var post dbmongo.Post
	err := r.db.Posts().FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&post)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return &post, nil
}

// GetFeedPostByID loads one post with creator/likers/savers resolved, the
// same enrichment the list shapes apply.
func (r *postRepository) GetFeedPostByID(ctx context.Context, id primitive.ObjectID) (*dbmongo.FeedPost, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}},
	}
	pipeline = append(pipeline, enrichStages("")...)

	cursor, err := r.db.Posts().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapStoreError(err)
	}
	defer cursor.Close(ctx)

	var posts []dbmongo.FeedPost
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, mapStoreError(err)
	}
	if len(posts) == 0 {
		return nil, common.ErrNotFound
	}
	return &posts[0], nil
}

func (r *postRepository) ListFeed(ctx context.Context, spec Spec, viewer *dbmongo.User, source *dbmongo.Post) ([]dbmongo.FeedPost, error) {
	pipeline, err := BuildPipeline(spec, viewer, source)
	if err != nil {
		return nil, err
	}

	cursor, err := r.db.Database.Collection(spec.Collection()).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapStoreError(err)
	}
	defer cursor.Close(ctx)

	posts := []dbmongo.FeedPost{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, mapStoreError(err)
	}
	return posts, nil
}

func (r *postRepository) UpdatePost(ctx context.Context, id primitive.ObjectID, patch PostPatch) (*dbmongo.Post, error) {
	set := bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}
	if patch.Content != nil {
		set = append(set, bson.E{Key: "content", Value: *patch.Content})
	}
	if patch.Tags != nil {
		set = append(set, bson.E{Key: "tags", Value: patch.Tags})
	}
	if patch.Location != nil {
		set = append(set, bson.E{Key: "location", Value: *patch.Location})
	}
	if patch.Visibility != nil {
		set = append(set, bson.E{Key: "visibility", Value: *patch.Visibility})
	}
	if patch.Image != nil {
		set = append(set, bson.E{Key: "image", Value: *patch.Image})
	}

	var post dbmongo.Post
	err := r.db.Posts().FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return &post, nil
}

func (r *postRepository) DeletePost(ctx context.Context, id primitive.ObjectID) (*dbmongo.Post, error) {
	var post dbmongo.Post
	err := r.db.Posts().FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&post)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return &post, nil
}

// AddLike is a single atomic $addToSet; duplicate adds report changed=false.
func (r *postRepository) AddLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	res, err := r.db.Posts().UpdateByID(ctx, postID,
		bson.D{{Key: "$addToSet", Value: bson.D{{Key: "likes", Value: userID}}}})
	if err != nil {
		return false, mapStoreError(err)
	}
	if res.MatchedCount == 0 {
		return false, common.ErrNotFound
	}
	return res.ModifiedCount > 0, nil
}

func (r *postRepository) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	res, err := r.db.Posts().UpdateByID(ctx, postID,
		bson.D{{Key: "$pull", Value: bson.D{{Key: "likes", Value: userID}}}})
	if err != nil {
		return false, mapStoreError(err)
	}
	if res.MatchedCount == 0 {
		return false, common.ErrNotFound
	}
	return res.ModifiedCount > 0, nil
}

func (r *postRepository) AttachSave(ctx context.Context, postID, saveID primitive.ObjectID) error {
	_, err := r.db.Posts().UpdateByID(ctx, postID,
		bson.D{{Key: "$addToSet", Value: bson.D{{Key: "saves", Value: saveID}}}})
	return mapStoreError(err)
}

func (r *postRepository) DetachSave(ctx context.Context, postID, saveID primitive.ObjectID) error {
	_, err := r.db.Posts().UpdateByID(ctx, postID,
		bson.D{{Key: "$pull", Value: bson.D{{Key: "saves", Value: saveID}}}})
	return mapStoreError(err)
}

func (r *postRepository) AttachComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	_, err := r.db.Posts().UpdateByID(ctx, postID,
		bson.D{{Key: "$addToSet", Value: bson.D{{Key: "comments", Value: commentID}}}})
	return mapStoreError(err)
}

func (r *postRepository) DetachComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	_, err := r.db.Posts().UpdateByID(ctx, postID,
		bson.D{{Key: "$pull", Value: bson.D{{Key: "comments", Value: commentID}}}})
	return mapStoreError(err)
}

type saveRepository struct {
	db *dbmongo.MongoClient
}

func NewSaveRepository(db *dbmongo.MongoClient) SaveRepository {
	return &saveRepository{db: db}
}

func (r *saveRepository) CreateSave(ctx context.Context, save *dbmongo.Save) error {
	save.CreatedAt = time.Now().UTC()
	res, err := r.db.Saves().InsertOne(ctx, save)
	if err != nil {
		// The unique (user, post) index turns a double-create race into a
		// conflict instead of a duplicate bookmark.
		return mapStoreError(err)
	}
	save.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *saveRepository) GetSaveByUserAndPost(ctx context.Context, userID, postID primitive.ObjectID) (*dbmongo.Save, error) {
	var save dbmongo.Save
	err := r.db.Saves().FindOne(ctx, bson.D{
		{Key: "user", Value: userID},
		{Key: "post", Value: postID},
	}).Decode(&save)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return &save, nil
}

func (r *saveRepository) DeleteSave(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.db.Saves().DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return mapStoreError(err)
	}
	if res.DeletedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *saveRepository) DeleteSavesByPost(ctx context.Context, postID primitive.ObjectID) error {
	_, err := r.db.Saves().DeleteMany(ctx, bson.D{{Key: "post", Value: postID}})
	return mapStoreError(err)
}

// mapStoreError translates driver errors into the service taxonomy.
func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return common.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("duplicate key: %w", common.ErrConflict)
	}
	return err
}
