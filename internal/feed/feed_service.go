package feed

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"instafeed/internal/cache"
	"instafeed/internal/common"
	"instafeed/internal/dbmongo"
	"instafeed/internal/monitoring"
)

// UserDirectory is the slice of the user store the feed engine needs:
// resolving viewers and keeping the creator's post list in sync.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*dbmongo.User, error)
	AttachPost(ctx context.Context, userID, postID primitive.ObjectID) error
	DetachPost(ctx context.Context, userID, postID primitive.ObjectID) error
}

// ImageStorage releases image references when a post drops or replaces its
// image. The engine stores and forwards references, never image bytes.
type ImageStorage interface {
	Release(ctx context.Context, ref string) error
}

// NewPost carries the fields of a post create request. Tags arrive as the
// comma-separated string clients send.
type NewPost struct {
	Creator    primitive.ObjectID
	Content    string
	Tags       string
	Location   string
	Visibility dbmongo.Visibility
	Image      string
}

// Service orchestrates the feed engine: it resolves the viewer, fronts the
// pipelines with the cache, and routes mutations through the engagement
// toggles with eager invalidation of single-entity keys. List-shaped keys
// cannot be enumerated cheaply and are left to their jittered TTL.
type Service struct {
	posts      PostRepository
	saves      SaveRepository
	users      UserDirectory
	engagement *Engagement
	cache      cache.Store
	images     ImageStorage
}

func NewService(posts PostRepository, saves SaveRepository, users UserDirectory, store cache.Store, images ImageStorage) *Service {
	return &Service{
		posts:      posts,
		saves:      saves,
		users:      users,
		engagement: NewEngagement(posts, saves),
		cache:      store,
		images:     images,
	}
}

// --------- FEED READS ---------

func (s *Service) GetPosts(ctx context.Context, viewerID primitive.ObjectID, page int64) ([]dbmongo.FeedPost, error) {
	return s.listFeed(ctx, Spec{Shape: ShapeChronological, Viewer: viewerID, Page: page})
}

func (s *Service) GetTopPosts(ctx context.Context, viewerID primitive.ObjectID, page int64) ([]dbmongo.FeedPost, error) {
	return s.listFeed(ctx, Spec{Shape: ShapeTop, Viewer: viewerID, Page: page})
}

func (s *Service) SearchPosts(ctx context.Context, viewerID primitive.ObjectID, query string, page int64) ([]dbmongo.FeedPost, error) {
	if strings.TrimSpace(query) == "" {
		return nil, common.RequiredField("search query")
	}
	return s.listFeed(ctx, Spec{Shape: ShapeSearch, Viewer: viewerID, Query: query, Page: page})
}

func (s *Service) GetRelatedPosts(ctx context.Context, viewerID, postID primitive.ObjectID) ([]dbmongo.FeedPost, error) {
	return s.listFeed(ctx, Spec{Shape: ShapeRelated, Viewer: viewerID, Source: postID})
}

func (s *Service) GetPostsByUser(ctx context.Context, viewerID, authorID primitive.ObjectID, page int64) ([]dbmongo.FeedPost, error) {
	return s.listFeed(ctx, Spec{Shape: ShapeByAuthor, Viewer: viewerID, Author: authorID, Page: page})
}

func (s *Service) GetLikedPosts(ctx context.Context, viewerID, userID primitive.ObjectID, page int64) ([]dbmongo.FeedPost, error) {
	return s.listFeed(ctx, Spec{Shape: ShapeLikedBy, Viewer: viewerID, Target: userID, Page: page})
}

func (s *Service) GetSavedPosts(ctx context.Context, viewerID, userID primitive.ObjectID, page int64) ([]dbmongo.FeedPost, error) {
	return s.listFeed(ctx, Spec{Shape: ShapeSavedBy, Viewer: viewerID, Target: userID, Page: page})
}

// GetPost returns one enriched post. The cached payload is
// viewer-independent; the visibility decision is re-evaluated per request,
// which keeps the key enumerable for eager invalidation.
func (s *Service) GetPost(ctx context.Context, viewerID, postID primitive.ObjectID) (*dbmongo.FeedPost, error) {
	viewer, err := s.users.GetUserByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	key := cache.PostKey(postID.Hex())
	var post *dbmongo.FeedPost
	if payload, ok := s.cache.Get(ctx, key); ok {
		post = &dbmongo.FeedPost{}
		if err := json.Unmarshal(payload, post); err != nil {
			post = nil
		}
	}
	if post == nil {
		post, err = s.posts.GetFeedPostByID(ctx, postID)
		if err != nil {
			return nil, err
		}
		if payload, err := json.Marshal(post); err == nil {
			s.cache.Set(ctx, key, payload)
		}
	}

	// Visibility restricts reads only; hide the post's existence entirely.
	if !CanView(viewer, post.Creator.ID, post.Visibility) {
		return nil, common.ErrNotFound
	}
	return post, nil
}

func (s *Service) listFeed(ctx context.Context, spec Spec) ([]dbmongo.FeedPost, error) {
	viewer, err := s.users.GetUserByID(ctx, spec.Viewer)
	if err != nil {
		// No anonymous feed reads; an unresolvable viewer is a hard failure.
		return nil, err
	}

	key := spec.CacheKey()
	if payload, ok := s.cache.Get(ctx, key); ok {
		var posts []dbmongo.FeedPost
		if err := json.Unmarshal(payload, &posts); err == nil {
			return posts, nil
		}
	}

	var source *dbmongo.Post
	if spec.Shape == ShapeRelated {
		if source, err = s.posts.GetPostByID(ctx, spec.Source); err != nil {
			return nil, err
		}
	}

	shape := spec.Shape.String()
	monitoring.FeedQueriesTotal.WithLabelValues(shape).Inc()
	start := time.Now()

	posts, err := s.posts.ListFeed(ctx, spec, viewer, source)
	if err != nil {
		return nil, err
	}
	monitoring.FeedQueryDuration.WithLabelValues(shape).Observe(time.Since(start).Seconds())

	// Only fully materialized results reach the cache; an abandoned request
	// leaves no partial entry behind.
	if payload, err := json.Marshal(posts); err == nil {
		s.cache.Set(ctx, key, payload)
	}
	return posts, nil
}

// --------- POST MUTATIONS ---------

// ownListKey names the acting user's own first page of a per-user list
// shape. That key is derivable from the mutation alone, so mutations
// invalidate it eagerly; other viewers' copies and deeper pages ride
// the TTL.
func ownListKey(shape Shape, userID primitive.ObjectID) string {
	spec := Spec{Shape: shape, Viewer: userID, Page: 0}
	if shape == ShapeByAuthor {
		spec.Author = userID
	} else {
		spec.Target = userID
	}
	return spec.CacheKey()
}

func (s *Service) CreatePost(ctx context.Context, req NewPost) (*dbmongo.Post, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, common.RequiredField("content")
	}
	if req.Creator.IsZero() {
		return nil, common.RequiredField("creator")
	}
	if req.Image == "" {
		return nil, common.RequiredField("image")
	}
	if req.Visibility == "" {
		req.Visibility = dbmongo.VisibilityPublic
	}
	if !req.Visibility.Valid() {
		return nil, common.RequiredField("valid visibility")
	}

	post := &dbmongo.Post{
		Content:    req.Content,
		Creator:    req.Creator,
		Visibility: req.Visibility,
		Tags:       ParseTags(req.Tags),
		Image:      req.Image,
		Location:   req.Location,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	if err := s.users.AttachPost(ctx, req.Creator, post.ID); err != nil {
		log.Warnf("attach post %s to creator %s: %v", post.ID.Hex(), req.Creator.Hex(), err)
	}

	s.cache.Invalidate(ctx, ownListKey(ShapeByAuthor, req.Creator))
	return post, nil
}

func (s *Service) UpdatePost(ctx context.Context, postID primitive.ObjectID, patch PostPatch) (*dbmongo.Post, error) {
	if postID.IsZero() {
		return nil, common.RequiredField("post id")
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return nil, common.RequiredField("content")
	}
	if patch.Visibility != nil && !patch.Visibility.Valid() {
		return nil, common.RequiredField("valid visibility")
	}

	// An image swap releases the replaced reference.
	if patch.Image != nil {
		old, err := s.posts.GetPostByID(ctx, postID)
		if err != nil {
			return nil, err
		}
		if old.Image != "" && old.Image != *patch.Image {
			if err := s.images.Release(ctx, old.Image); err != nil {
				log.Warnf("release image %s: %v", old.Image, err)
			}
		}
	}

	post, err := s.posts.UpdatePost(ctx, postID, patch)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.PostKey(postID.Hex()), ownListKey(ShapeByAuthor, post.Creator))
	return post, nil
}

// DeletePost removes a post and everything hanging off it: the creator's
// post list entry, dependent save records, and the image resource.
func (s *Service) DeletePost(ctx context.Context, postID primitive.ObjectID) (*dbmongo.Post, error) {
	post, err := s.posts.DeletePost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.users.DetachPost(ctx, post.Creator, post.ID); err != nil {
		log.Warnf("detach post %s from creator %s: %v", post.ID.Hex(), post.Creator.Hex(), err)
	}
	if err := s.saves.DeleteSavesByPost(ctx, post.ID); err != nil {
		log.Warnf("purge saves of post %s: %v", post.ID.Hex(), err)
	}
	if post.Image != "" {
		if err := s.images.Release(ctx, post.Image); err != nil {
			log.Warnf("release image %s: %v", post.Image, err)
		}
	}

	s.cache.Invalidate(ctx, cache.PostKey(postID.Hex()), ownListKey(ShapeByAuthor, post.Creator))
	return post, nil
}

// --------- ENGAGEMENT ---------

func (s *Service) LikePost(ctx context.Context, viewerID, postID primitive.ObjectID) (liked bool, changed bool, err error) {
	liked, changed, err = s.engagement.LikePost(ctx, viewerID, postID)
	if err != nil {
		return false, false, err
	}
	if changed {
		s.cache.Invalidate(ctx, cache.PostKey(postID.Hex()), ownListKey(ShapeLikedBy, viewerID))
	}
	return liked, changed, nil
}

func (s *Service) SavePost(ctx context.Context, viewerID, postID primitive.ObjectID) (saved bool, changed bool, err error) {
	saved, changed, err = s.engagement.SavePost(ctx, viewerID, postID)
	if err != nil {
		// A partial write still reports the state that was reached.
		return saved, changed, err
	}
	if changed {
		s.cache.Invalidate(ctx, cache.PostKey(postID.Hex()), ownListKey(ShapeSavedBy, viewerID))
	}
	return saved, changed, nil
}

// ParseTags splits a comma-separated tag string, trimming blanks and
// dropping duplicates while keeping first-seen order.
func ParseTags(raw string) []string {
	tags := []string{}
	seen := map[string]bool{}
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}
