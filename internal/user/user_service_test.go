package user

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"instafeed/internal/common"
	"instafeed/internal/dbmongo"
)

type stubImages struct {
	released []string
}

func (s *stubImages) Release(_ context.Context, ref string) error {
	s.released = append(s.released, ref)
	return nil
}

func TestServiceGetUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepository(ctrl)
	svc := NewService(repo, &stubImages{})
	ctx := context.Background()

	id := primitive.NewObjectID()
	alice := &dbmongo.User{ID: id, Name: "Alice", Alias: "alice"}

	repo.EXPECT().GetUserByID(ctx, id).Return(alice, nil)
	got, err := svc.GetUser(ctx, id.Hex())
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	// Anything that is not a hex object id resolves as an alias,
	// normalized first.
	repo.EXPECT().GetUserByAlias(ctx, "alice").Return(alice, nil)
	got, err = svc.GetUser(ctx, " Alice ")
	require.NoError(t, err)
	assert.Equal(t, alice, got)

	_, err = svc.GetUser(ctx, "   ")
	assert.True(t, common.IsValidation(err))
}

func TestServiceUpdateUser(t *testing.T) {
	ctx := context.Background()
	self := primitive.NewObjectID()
	other := primitive.NewObjectID()
	str := func(s string) *string { return &s }

	tests := []struct {
		name        string
		patch       Patch
		setup       func(repo *MockRepository)
		wantErr     func(error) bool
		errContains string
	}{
		{
			name:  "alias taken by another user",
			patch: Patch{Alias: str("taken")},
			setup: func(repo *MockRepository) {
				repo.EXPECT().GetUserByAlias(ctx, "taken").Return(&dbmongo.User{ID: other, Alias: "taken"}, nil)
			},
			wantErr:     common.IsConflict,
			errContains: "taken",
		},
		{
			name:  "alias already owned by self",
			patch: Patch{Alias: str("mine")},
			setup: func(repo *MockRepository) {
				repo.EXPECT().GetUserByAlias(ctx, "mine").Return(&dbmongo.User{ID: self, Alias: "mine"}, nil)
				repo.EXPECT().UpdateUser(ctx, self, gomock.Any()).Return(&dbmongo.User{ID: self, Alias: "mine"}, nil)
			},
		},
		{
			name:  "alias is free",
			patch: Patch{Alias: str("Fresh")},
			setup: func(repo *MockRepository) {
				repo.EXPECT().GetUserByAlias(ctx, "fresh").Return(nil, common.ErrNotFound)
				repo.EXPECT().UpdateUser(ctx, self, gomock.Any()).DoAndReturn(
					func(_ context.Context, _ primitive.ObjectID, p Patch) (*dbmongo.User, error) {
						require.NotNil(t, p.Alias)
						assert.Equal(t, "fresh", *p.Alias, "alias stored normalized")
						return &dbmongo.User{ID: self, Alias: "fresh"}, nil
					})
			},
		},
		{
			name:    "invalid alias",
			patch:   Patch{Alias: str("a!")},
			setup:   func(repo *MockRepository) {},
			wantErr: common.IsValidation,
		},
		{
			name:    "invalid email",
			patch:   Patch{Email: str("nope")},
			setup:   func(repo *MockRepository) {},
			wantErr: common.IsValidation,
		},
		{
			name:    "blank name",
			patch:   Patch{Name: str("  ")},
			setup:   func(repo *MockRepository) {},
			wantErr: common.IsValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			repo := NewMockRepository(ctrl)
			tt.setup(repo)
			svc := NewService(repo, &stubImages{})

			_, err := svc.UpdateUser(ctx, self, tt.patch)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tt.wantErr(err))
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestServiceUpdateUserReleasesReplacedImage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepository(ctrl)
	images := &stubImages{}
	svc := NewService(repo, images)
	ctx := context.Background()
	id := primitive.NewObjectID()
	img := "new-img"

	repo.EXPECT().GetUserByID(ctx, id).Return(&dbmongo.User{ID: id, Image: "old-img"}, nil)
	repo.EXPECT().UpdateUser(ctx, id, gomock.Any()).Return(&dbmongo.User{ID: id, Image: img}, nil)

	_, err := svc.UpdateUser(ctx, id, Patch{Image: &img})
	require.NoError(t, err)
	assert.Equal(t, []string{"old-img"}, images.released)
}

func TestServiceFollowUser(t *testing.T) {
	ctx := context.Background()
	userID := primitive.NewObjectID()
	targetID := primitive.NewObjectID()

	t.Run("self follow rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc := NewService(NewMockRepository(ctrl), &stubImages{})

		_, err := svc.FollowUser(ctx, userID, userID)
		assert.True(t, common.IsValidation(err))
	})

	t.Run("follow writes both sides", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := NewMockRepository(ctrl)
		svc := NewService(repo, &stubImages{})

		repo.EXPECT().GetUserByID(ctx, userID).Return(&dbmongo.User{ID: userID}, nil)
		repo.EXPECT().GetUserByID(ctx, targetID).Return(&dbmongo.User{ID: targetID}, nil)
		repo.EXPECT().AddFollowing(ctx, userID, targetID).Return(nil)
		repo.EXPECT().AddFollower(ctx, targetID, userID).Return(nil)

		following, err := svc.FollowUser(ctx, userID, targetID)
		require.NoError(t, err)
		assert.True(t, following)
	})

	t.Run("second toggle unfollows", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := NewMockRepository(ctrl)
		svc := NewService(repo, &stubImages{})

		repo.EXPECT().GetUserByID(ctx, userID).Return(
			&dbmongo.User{ID: userID, Following: []primitive.ObjectID{targetID}}, nil)
		repo.EXPECT().GetUserByID(ctx, targetID).Return(&dbmongo.User{ID: targetID}, nil)
		repo.EXPECT().RemoveFollowing(ctx, userID, targetID).Return(nil)
		repo.EXPECT().RemoveFollower(ctx, targetID, userID).Return(nil)

		following, err := svc.FollowUser(ctx, userID, targetID)
		require.NoError(t, err)
		assert.False(t, following)
	})

	t.Run("unknown target", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := NewMockRepository(ctrl)
		svc := NewService(repo, &stubImages{})

		repo.EXPECT().GetUserByID(ctx, userID).Return(&dbmongo.User{ID: userID}, nil)
		repo.EXPECT().GetUserByID(ctx, targetID).Return(nil, common.ErrNotFound)

		_, err := svc.FollowUser(ctx, userID, targetID)
		assert.True(t, common.IsNotFound(err))
	})

	t.Run("partial write surfaces as partial mutation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		repo := NewMockRepository(ctrl)
		svc := NewService(repo, &stubImages{})

		repo.EXPECT().GetUserByID(ctx, userID).Return(&dbmongo.User{ID: userID}, nil)
		repo.EXPECT().GetUserByID(ctx, targetID).Return(&dbmongo.User{ID: targetID}, nil)
		repo.EXPECT().AddFollowing(ctx, userID, targetID).Return(nil)
		repo.EXPECT().AddFollower(ctx, targetID, userID).Return(errors.New("write concern"))

		following, err := svc.FollowUser(ctx, userID, targetID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrPartialMutation))
		assert.True(t, following, "the following side did land")
		assert.Contains(t, err.Error(), "follower side")
	})
}

func TestServiceGetTopCreators(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepository(ctrl)
	svc := NewService(repo, &stubImages{})
	ctx := context.Background()

	want := []Creator{{Name: "Alice", Alias: "alice", FollowersCount: 42}}
	repo.EXPECT().GetTopCreators(ctx, int64(2)).Return(want, nil)

	got, err := svc.GetTopCreators(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
