package comment

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"instafeed/internal/cache"
	"instafeed/internal/common"
	"instafeed/internal/dbmongo"
	"instafeed/internal/feed"
)

// NewComment is a comment creation request. ReplyTo turns it into a child
// comment attached under the parent.
type NewComment struct {
	User    primitive.ObjectID
	Post    primitive.ObjectID
	Content string
	ReplyTo *primitive.ObjectID
}

type Service interface {
	CreateComment(ctx context.Context, req NewComment) (*dbmongo.Comment, error)
	// DeleteComment removes a comment, its replies, and every reference to
	// it. Only the comment's author may delete it.
	DeleteComment(ctx context.Context, userID, commentID primitive.ObjectID) (*dbmongo.Comment, error)
	GetComments(ctx context.Context, postID primitive.ObjectID, page int64) ([]dbmongo.CommentView, error)
	GetReplies(ctx context.Context, commentID primitive.ObjectID, page int64) ([]dbmongo.CommentView, error)
	LikeComment(ctx context.Context, userID, commentID primitive.ObjectID) (liked bool, changed bool, err error)
}

type service struct {
	comments Repository
	posts    feed.PostRepository
	cache    cache.Store
}

func NewService(comments Repository, posts feed.PostRepository, store cache.Store) Service {
	return &service{comments: comments, posts: posts, cache: store}
}

func (s *service) CreateComment(ctx context.Context, req NewComment) (*dbmongo.Comment, error) {
	switch {
	case req.Content == "":
		return nil, common.RequiredField("content")
	case req.User.IsZero():
		return nil, common.RequiredField("user")
	case req.Post.IsZero():
		return nil, common.RequiredField("post")
	}

	if _, err := s.posts.GetPostByID(ctx, req.Post); err != nil {
		return nil, err
	}

	var parent *dbmongo.Comment
	if req.ReplyTo != nil {
		p, err := s.comments.GetCommentByID(ctx, *req.ReplyTo)
		if err != nil {
			return nil, err
		}
		if p.Post != req.Post {
			return nil, fmt.Errorf("reply targets a comment on another post: %w", common.ErrValidation)
		}
		parent = p
	}

	c := &dbmongo.Comment{
		Content: req.Content,
		User:    req.User,
		Post:    req.Post,
		Likes:   []primitive.ObjectID{},
		Replies: []primitive.ObjectID{},
		IsChild: parent != nil,
	}
	if err := s.comments.CreateComment(ctx, c); err != nil {
		return nil, err
	}

	if parent != nil {
		if err := s.comments.AttachReply(ctx, parent.ID, c.ID); err != nil {
			return c, fmt.Errorf("comment created, reply edge not written: %w (%v)", common.ErrPartialMutation, err)
		}
	}
	if err := s.posts.AttachComment(ctx, req.Post, c.ID); err != nil {
		return c, fmt.Errorf("comment created, post edge not written: %w (%v)", common.ErrPartialMutation, err)
	}

	s.cache.Invalidate(ctx, cache.PostKey(req.Post.Hex()))
	return c, nil
}

func (s *service) DeleteComment(ctx context.Context, userID, commentID primitive.ObjectID) (*dbmongo.Comment, error) {
	existing, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if existing.User != userID {
		// Not the author; the comment's existence is no secret, the post
		// shows it, so a plain denial is fine here.
		return nil, fmt.Errorf("only the author may delete a comment: %w", common.ErrValidation)
	}

	deleted, err := s.comments.DeleteComment(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if len(deleted.Replies) > 0 {
		if err := s.comments.DeleteComments(ctx, deleted.Replies); err != nil {
			log.Warnf("delete replies of comment %s: %v", commentID.Hex(), err)
		}
	}
	if deleted.IsChild {
		if err := s.comments.DetachReply(ctx, commentID); err != nil {
			log.Warnf("detach reply %s from parent: %v", commentID.Hex(), err)
		}
	}
	if err := s.posts.DetachComment(ctx, deleted.Post, commentID); err != nil {
		log.Warnf("detach comment %s from post %s: %v", commentID.Hex(), deleted.Post.Hex(), err)
	}

	s.cache.Invalidate(ctx, cache.PostKey(deleted.Post.Hex()))
	return deleted, nil
}

func (s *service) GetComments(ctx context.Context, postID primitive.ObjectID, page int64) ([]dbmongo.CommentView, error) {
	if postID.IsZero() {
		return nil, common.RequiredField("post")
	}
	return s.comments.GetCommentsByPost(ctx, postID, page)
}

func (s *service) GetReplies(ctx context.Context, commentID primitive.ObjectID, page int64) ([]dbmongo.CommentView, error) {
	parent, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if len(parent.Replies) == 0 {
		return []dbmongo.CommentView{}, nil
	}
	return s.comments.GetReplies(ctx, parent.Replies, page)
}

func (s *service) LikeComment(ctx context.Context, userID, commentID primitive.ObjectID) (bool, bool, error) {
	existing, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return false, false, err
	}

	isLiked := false
	for _, id := range existing.Likes {
		if id == userID {
			isLiked = true
			break
		}
	}

	var changed bool
	if isLiked {
		changed, err = s.comments.RemoveLike(ctx, commentID, userID)
	} else {
		changed, err = s.comments.AddLike(ctx, commentID, userID)
	}
	if err != nil {
		return isLiked, false, err
	}
	return !isLiked, changed, nil
}
