package user

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"instafeed/internal/common"
	"instafeed/internal/dbmongo"
)

// ImageStorage releases stored image references that no profile points at
// anymore.
type ImageStorage interface {
	Release(ctx context.Context, ref string) error
}

type Service interface {
	// GetUser resolves a profile by hex object id or, failing that, by alias.
	GetUser(ctx context.Context, ref string) (*dbmongo.User, error)
	UpdateUser(ctx context.Context, userID primitive.ObjectID, patch Patch) (*dbmongo.User, error)
	// FollowUser toggles the follow edge and reports the resulting state.
	FollowUser(ctx context.Context, userID, targetID primitive.ObjectID) (bool, error)
	GetTopCreators(ctx context.Context, page int64) ([]Creator, error)
}

type service struct {
	users  Repository
	images ImageStorage
}

func NewService(users Repository, images ImageStorage) Service {
	return &service{users: users, images: images}
}

func (s *service) GetUser(ctx context.Context, ref string) (*dbmongo.User, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, common.RequiredField("user")
	}
	if id, err := primitive.ObjectIDFromHex(ref); err == nil {
		return s.users.GetUserByID(ctx, id)
	}
	return s.users.GetUserByAlias(ctx, common.NormalizeAlias(ref))
}

func (s *service) UpdateUser(ctx context.Context, userID primitive.ObjectID, patch Patch) (*dbmongo.User, error) {
	if patch.Alias != nil {
		alias := common.NormalizeAlias(*patch.Alias)
		if err := common.ValidateAlias(alias); err != nil {
			return nil, err
		}
		taken, err := s.users.GetUserByAlias(ctx, alias)
		if err != nil && !common.IsNotFound(err) {
			return nil, err
		}
		if taken != nil && taken.ID != userID {
			return nil, fmt.Errorf("alias %q is taken: %w", alias, common.ErrConflict)
		}
		patch.Alias = &alias
	}
	if patch.Email != nil {
		if err := common.ValidateEmail(*patch.Email); err != nil {
			return nil, err
		}
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, common.RequiredField("name")
	}

	var replaced string
	if patch.Image != nil {
		current, err := s.users.GetUserByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if current.Image != "" && current.Image != *patch.Image {
			replaced = current.Image
		}
	}

	updated, err := s.users.UpdateUser(ctx, userID, patch)
	if err != nil {
		return nil, err
	}

	if replaced != "" {
		if err := s.images.Release(ctx, replaced); err != nil {
			log.Warnf("release replaced profile image %s: %v", replaced, err)
		}
	}
	return updated, nil
}

// FollowUser flips the follow edge between two users. The edge is stored on
// both documents; when only one side gets written the caller receives
// ErrPartialMutation naming the side that failed, nothing is rolled back.
func (s *service) FollowUser(ctx context.Context, userID, targetID primitive.ObjectID) (bool, error) {
	if userID == targetID {
		return false, fmt.Errorf("cannot follow yourself: %w", common.ErrValidation)
	}

	follower, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if _, err := s.users.GetUserByID(ctx, targetID); err != nil {
		return false, err
	}

	if follower.IsFollowing(targetID) {
		if err := s.users.RemoveFollowing(ctx, userID, targetID); err != nil {
			return true, err
		}
		if err := s.users.RemoveFollower(ctx, targetID, userID); err != nil {
			return false, fmt.Errorf("unfollow: follower side not written: %w (%v)", common.ErrPartialMutation, err)
		}
		return false, nil
	}

	if err := s.users.AddFollowing(ctx, userID, targetID); err != nil {
		return false, err
	}
	if err := s.users.AddFollower(ctx, targetID, userID); err != nil {
		return true, fmt.Errorf("follow: follower side not written: %w (%v)", common.ErrPartialMutation, err)
	}
	return true, nil
}

func (s *service) GetTopCreators(ctx context.Context, page int64) ([]Creator, error) {
	return s.users.GetTopCreators(ctx, page)
}
