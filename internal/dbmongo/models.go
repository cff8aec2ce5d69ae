package dbmongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names.
const (
	CollUsers    = "users"
	CollPosts    = "posts"
	CollComments = "comments"
	CollSaves    = "saves"
)

type Visibility string

const (
	VisibilityPublic    Visibility = "Public"
	VisibilityPrivate   Visibility = "Private"
	VisibilityFollowers Visibility = "Followers"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityFollowers:
		return true
	}
	return false
}

type User struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name      string               `bson:"name" json:"name"`
	Alias     string               `bson:"alias" json:"alias"`
	Email     string               `bson:"email" json:"email"`
	Bio       string               `bson:"bio" json:"bio"`
	Image     string               `bson:"image" json:"image"`
	Posts     []primitive.ObjectID `bson:"posts" json:"posts"`
	Followers []primitive.ObjectID `bson:"followers" json:"followers"`
	Following []primitive.ObjectID `bson:"following" json:"following"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"-"`
}

// Summary is the bounded projection of a user embedded in feed payloads.
// Never more than these four fields.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Alias: u.Alias, Image: u.Image}
}

func (u *User) IsFollowing(id primitive.ObjectID) bool {
	for _, f := range u.Following {
		if f == id {
			return true
		}
	}
	return false
}

type Post struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Content    string               `bson:"content" json:"content"`
	Creator    primitive.ObjectID   `bson:"creator" json:"creator"`
	Visibility Visibility           `bson:"visibility" json:"visibility"`
	Likes      []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments   []primitive.ObjectID `bson:"comments" json:"comments"`
	Saves      []primitive.ObjectID `bson:"saves" json:"saves"`
	Tags       []string             `bson:"tags" json:"tags"`
	Image      string               `bson:"image" json:"image"`
	Location   string               `bson:"location" json:"location"`
	CreatedAt  time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time            `bson:"updatedAt" json:"-"`
}

type Comment struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Content   string               `bson:"content" json:"content"`
	User      primitive.ObjectID   `bson:"user" json:"user"`
	Post      primitive.ObjectID   `bson:"post" json:"post"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	Replies   []primitive.ObjectID `bson:"replies" json:"replies"`
	IsChild   bool                 `bson:"isChild" json:"isChild"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"-"`
}

// Save is the bookmark edge between a user and a post. Unique on
// (user, post); deleted when the post goes away or the bookmark is undone.
type Save struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Post      primitive.ObjectID `bson:"post" json:"post"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type UserSummary struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Alias string             `bson:"alias" json:"alias"`
	Image string             `bson:"image" json:"image"`
}

// SaveRef names the user behind a save record on an enriched post.
type SaveRef struct {
	User UserSummary `bson:"user" json:"user"`
}

// FeedPost is a post enriched by the ranking pipelines: creator, likers and
// savers are resolved to summaries at query time, never denormalized.
type FeedPost struct {
	ID         primitive.ObjectID   `bson:"_id" json:"id"`
	Content    string               `bson:"content" json:"content"`
	Creator    UserSummary          `bson:"creator" json:"creator"`
	Visibility Visibility           `bson:"visibility" json:"visibility"`
	Likes      []UserSummary        `bson:"likes" json:"likes"`
	Comments   []primitive.ObjectID `bson:"comments" json:"comments"`
	Saves      []SaveRef            `bson:"saves" json:"saves"`
	Tags       []string             `bson:"tags" json:"tags"`
	Image      string               `bson:"image" json:"image"`
	Location   string               `bson:"location" json:"location"`
	CreatedAt  time.Time            `bson:"createdAt" json:"createdAt"`
}

// CommentView is a comment with its author and likers resolved.
type CommentView struct {
	ID        primitive.ObjectID   `bson:"_id" json:"id"`
	Content   string               `bson:"content" json:"content"`
	User      UserSummary          `bson:"user" json:"user"`
	Post      primitive.ObjectID   `bson:"post" json:"post"`
	Likes     []UserSummary        `bson:"likes" json:"likes"`
	Replies   []primitive.ObjectID `bson:"replies" json:"replies"`
	IsChild   bool                 `bson:"isChild" json:"isChild"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
}
