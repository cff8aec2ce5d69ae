package feed

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"instafeed/internal/dbmongo"
)

// VisibilityFilter builds the per-viewer filter every content query must
// apply. A post matches iff it is Public, or Followers-only from someone the
// viewer follows (or the viewer), or Private from the viewer. Pure; must be
// rebuilt for every viewer.
func VisibilityFilter(viewer *dbmongo.User) bson.D {
	return visibilityFilter(viewer, "")
}

// visibilityFilter with a field prefix supports shapes that join posts under
// a sub-document, e.g. the saved feed matching on "post.visibility".
func visibilityFilter(viewer *dbmongo.User, prefix string) bson.D {
	vis := prefix + "visibility"
	creator := prefix + "creator"

	// A nil slice marshals as BSON null, and $in rejects null operands.
	following := viewer.Following
	if following == nil {
		following = []primitive.ObjectID{}
	}

	return bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: vis, Value: dbmongo.VisibilityPublic}},
		bson.D{{Key: "$and", Value: bson.A{
			bson.D{{Key: vis, Value: dbmongo.VisibilityFollowers}},
			bson.D{{Key: "$or", Value: bson.A{
				bson.D{{Key: creator, Value: bson.D{{Key: "$in", Value: following}}}},
				bson.D{{Key: creator, Value: viewer.ID}},
			}}},
		}}},
		bson.D{{Key: "$and", Value: bson.A{
			bson.D{{Key: vis, Value: dbmongo.VisibilityPrivate}},
			bson.D{{Key: creator, Value: viewer.ID}},
		}}},
	}}}
}

// CanView is the same predicate evaluated in-process, used on single-post
// reads where the payload is cached viewer-independently and authorization
// is re-checked per request.
func CanView(viewer *dbmongo.User, creator primitive.ObjectID, visibility dbmongo.Visibility) bool {
	switch visibility {
	case dbmongo.VisibilityPublic:
		return true
	case dbmongo.VisibilityFollowers:
		return creator == viewer.ID || viewer.IsFollowing(creator)
	case dbmongo.VisibilityPrivate:
		return creator == viewer.ID
	}
	return false
}
