package feed

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"instafeed/internal/common"
	"instafeed/internal/dbmongo"
)

// Engagement implements the toggle-style mutations. The membership read
// before each toggle only shapes the response; correctness comes from the
// single atomic set operation (or the unique save index) underneath, so
// concurrent toggles cannot double-apply.
type Engagement struct {
	posts PostRepository
	saves SaveRepository
}

func NewEngagement(posts PostRepository, saves SaveRepository) *Engagement {
	return &Engagement{posts: posts, saves: saves}
}

// LikePost flips the (user, post) like state. Returns the new state and
// whether the store actually changed.
func (e *Engagement) LikePost(ctx context.Context, userID, postID primitive.ObjectID) (liked bool, changed bool, err error) {
	post, err := e.posts.GetPostByID(ctx, postID)
	if err != nil {
		return false, false, err
	}

	isLiked := false
	for _, id := range post.Likes {
		if id == userID {
			isLiked = true
			break
		}
	}

	if isLiked {
		changed, err = e.posts.RemoveLike(ctx, postID, userID)
	} else {
		changed, err = e.posts.AddLike(ctx, postID, userID)
	}
	if err != nil {
		return false, false, err
	}
	return !isLiked, changed, nil
}

// SavePost flips the bookmark state. A save carries its own identity and
// timestamp, so it is a created/deleted join record rather than a set
// element.
func (e *Engagement) SavePost(ctx context.Context, userID, postID primitive.ObjectID) (saved bool, changed bool, err error) {
	if _, err := e.posts.GetPostByID(ctx, postID); err != nil {
		return false, false, err
	}

	existing, err := e.saves.GetSaveByUserAndPost(ctx, userID, postID)
	switch {
	case err == nil:
		if err := e.posts.DetachSave(ctx, postID, existing.ID); err != nil {
			return false, false, err
		}
		if err := e.saves.DeleteSave(ctx, existing.ID); err != nil && !common.IsNotFound(err) {
			return false, false, err
		}
		return false, true, nil

	case common.IsNotFound(err):
		save := &dbmongo.Save{User: userID, Post: postID}
		if err := e.saves.CreateSave(ctx, save); err != nil {
			if common.IsConflict(err) {
				// Lost a toggle race; the bookmark already exists.
				return true, false, nil
			}
			return false, false, err
		}
		if err := e.posts.AttachSave(ctx, postID, save.ID); err != nil {
			// The save record exists; only the post edge is missing.
			return true, true, fmt.Errorf("save created, post edge not written: %w (%v)", common.ErrPartialMutation, err)
		}
		return true, true, nil

	default:
		return false, false, err
	}
}
