package feed

import (
	"fmt"
	"regexp"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"instafeed/internal/cache"
	"instafeed/internal/dbmongo"
)

// PageSize is the fixed page length of every list-shaped feed.
const PageSize = 12

// RelatedLimit caps the related-posts shape; it is never paginated.
const RelatedLimit = 3

type Shape int

const (
	ShapeChronological Shape = iota
	ShapeTop
	ShapeSearch
	ShapeRelated
	ShapeByAuthor
	ShapeLikedBy
	ShapeSavedBy
)

func (s Shape) String() string {
	switch s {
	case ShapeChronological:
		return "chrono"
	case ShapeTop:
		return "top"
	case ShapeSearch:
		return "search"
	case ShapeRelated:
		return "related"
	case ShapeByAuthor:
		return "author"
	case ShapeLikedBy:
		return "liked"
	case ShapeSavedBy:
		return "saved"
	}
	return "unknown"
}

// Spec is the tagged description of one feed query: a shape plus every
// parameter the shape needs. Ranking rules live in BuildPipeline, nowhere
// else; call sites only fill in a Spec.
type Spec struct {
	Shape  Shape
	Viewer primitive.ObjectID
	Page   int64
	Query  string             // search text
	Author primitive.ObjectID // by-author shape
	Target primitive.ObjectID // liked-by / saved-by user
	Source primitive.ObjectID // related shape source post
}

// CacheKey folds every semantic input of the query into a deterministic key.
func (s Spec) CacheKey() string {
	parts := []string{
		"v=" + s.Viewer.Hex(),
		"p=" + strconv.FormatInt(s.Page, 10),
	}
	if s.Query != "" {
		parts = append(parts, "q="+s.Query)
	}
	if !s.Author.IsZero() {
		parts = append(parts, "a="+s.Author.Hex())
	}
	if !s.Target.IsZero() {
		parts = append(parts, "u="+s.Target.Hex())
	}
	if !s.Source.IsZero() {
		parts = append(parts, "s="+s.Source.Hex())
	}
	return cache.Key(s.Shape.String(), parts...)
}

// Collection names the collection the pipeline must run against. Every
// shape reads posts except the saved feed, which walks the save edges.
func (s Spec) Collection() string {
	if s.Shape == ShapeSavedBy {
		return dbmongo.CollSaves
	}
	return dbmongo.CollPosts
}

// BuildPipeline interprets a Spec into an aggregation pipeline. viewer is
// the resolved viewing user; source is required for the related shape and
// ignored otherwise.
func BuildPipeline(s Spec, viewer *dbmongo.User, source *dbmongo.Post) (mongo.Pipeline, error) {
	switch s.Shape {
	case ShapeChronological:
		return chronological(VisibilityFilter(viewer), s.Page), nil
	case ShapeTop:
		return top(VisibilityFilter(viewer), s.Page), nil
	case ShapeSearch:
		if s.Query == "" {
			return nil, fmt.Errorf("search shape requires a query")
		}
		return search(viewer, s.Query, s.Page), nil
	case ShapeRelated:
		if source == nil {
			return nil, fmt.Errorf("related shape requires a source post")
		}
		return related(viewer, source), nil
	case ShapeByAuthor:
		filter := andFilter(
			VisibilityFilter(viewer),
			bson.D{{Key: "creator", Value: s.Author}},
		)
		return chronological(filter, s.Page), nil
	case ShapeLikedBy:
		filter := andFilter(
			VisibilityFilter(viewer),
			bson.D{{Key: "likes", Value: s.Target}},
		)
		return chronological(filter, s.Page), nil
	case ShapeSavedBy:
		return savedBy(viewer, s.Target, s.Page), nil
	}
	return nil, fmt.Errorf("unknown feed shape %d", s.Shape)
}

func chronological(filter bson.D, page int64) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: chronoSort("")}},
	}
	p = append(p, pageStages(page)...)
	return append(p, enrichStages("")...)
}

func top(filter bson.D, page int64) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "likesCount", Value: bson.D{{Key: "$size", Value: "$likes"}}},
			{Key: "savesCount", Value: bson.D{{Key: "$size", Value: "$saves"}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "likesCount", Value: -1},
			{Key: "savesCount", Value: -1},
			{Key: "createdAt", Value: -1},
		}}},
	}
	p = append(p, pageStages(page)...)
	p = append(p, enrichStages("")...)
	return append(p, bson.D{{Key: "$project", Value: bson.D{
		{Key: "likesCount", Value: 0},
		{Key: "savesCount", Value: 0},
	}}})
}

func search(viewer *dbmongo.User, query string, page int64) mongo.Pipeline {
	// $text must be in the first stage, so the visibility filter rides in
	// the same $match.
	p := mongo.Pipeline{
		{{Key: "$match", Value: andFilter(
			bson.D{{Key: "$text", Value: bson.D{{Key: "$search", Value: query}}}},
			VisibilityFilter(viewer),
		)}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "score", Value: bson.D{{Key: "$meta", Value: "textScore"}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "score", Value: -1},
			{Key: "createdAt", Value: -1},
		}}},
	}
	p = append(p, pageStages(page)...)
	p = append(p, enrichStages("")...)
	return append(p, bson.D{{Key: "$project", Value: bson.D{{Key: "score", Value: 0}}}})
}

func related(viewer *dbmongo.User, source *dbmongo.Post) mongo.Pipeline {
	candidates := bson.A{}
	if len(source.Tags) > 0 {
		candidates = append(candidates, bson.D{{Key: "tags", Value: bson.D{{Key: "$in", Value: source.Tags}}}})
	}
	if source.Location != "" {
		candidates = append(candidates, bson.D{{Key: "location", Value: primitive.Regex{
			Pattern: regexp.QuoteMeta(source.Location),
			Options: "i",
		}}})
	}
	if len(candidates) == 0 {
		// A post with no tags and no location relates to nothing.
		candidates = append(candidates, bson.D{{Key: "_id", Value: primitive.NilObjectID}})
	}

	// $setIntersection rejects null, so an absent tag list becomes [].
	srcTags := bson.A{}
	for _, t := range source.Tags {
		srcTags = append(srcTags, t)
	}

	p := mongo.Pipeline{
		{{Key: "$match", Value: andFilter(
			VisibilityFilter(viewer),
			bson.D{{Key: "$or", Value: candidates}},
			bson.D{{Key: "_id", Value: bson.D{{Key: "$ne", Value: source.ID}}}},
		)}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "sharedTagsCount", Value: bson.D{{Key: "$size", Value: bson.D{
				{Key: "$setIntersection", Value: bson.A{"$tags", srcTags}},
			}}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "sharedTagsCount", Value: -1},
			{Key: "createdAt", Value: -1},
		}}},
		{{Key: "$limit", Value: RelatedLimit}},
	}
	p = append(p, enrichStages("")...)
	return append(p, bson.D{{Key: "$project", Value: bson.D{{Key: "sharedTagsCount", Value: 0}}}})
}

func savedBy(viewer *dbmongo.User, target primitive.ObjectID, page int64) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "user", Value: target}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: dbmongo.CollPosts},
			{Key: "localField", Value: "post"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "post"},
		}}},
		{{Key: "$unwind", Value: "$post"}},
		{{Key: "$match", Value: visibilityFilter(viewer, "post.")}},
		{{Key: "$sort", Value: chronoSort("post.")}},
	}
	p = append(p, pageStages(page)...)
	p = append(p, enrichStages("post.")...)
	return append(p, bson.D{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$post"}}}})
}

// chronoSort orders newest first; equal timestamps fall back to insertion
// order so pagination is stable.
func chronoSort(prefix string) bson.D {
	return bson.D{
		{Key: prefix + "createdAt", Value: -1},
		{Key: prefix + "_id", Value: 1},
	}
}

func pageStages(page int64) []bson.D {
	if page < 0 {
		page = 0
	}
	return []bson.D{
		{{Key: "$skip", Value: page * PageSize}},
		{{Key: "$limit", Value: PageSize}},
	}
}

func andFilter(filters ...bson.D) bson.D {
	clauses := bson.A{}
	for _, f := range filters {
		clauses = append(clauses, f)
	}
	return bson.D{{Key: "$and", Value: clauses}}
}

var summaryProject = bson.D{{Key: "$project", Value: bson.D{
	{Key: "_id", Value: 1},
	{Key: "name", Value: 1},
	{Key: "alias", Value: 1},
	{Key: "image", Value: 1},
}}}

// enrichStages resolves creator, likers and savers to user summaries. This
// is a join against current user data, not a denormalized copy.
func enrichStages(prefix string) []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: dbmongo.CollUsers},
			{Key: "localField", Value: prefix + "creator"},
			{Key: "foreignField", Value: "_id"},
			{Key: "pipeline", Value: bson.A{summaryProject}},
			{Key: "as", Value: prefix + "creator"},
		}}},
		{{Key: "$unwind", Value: "$" + prefix + "creator"}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: dbmongo.CollUsers},
			{Key: "localField", Value: prefix + "likes"},
			{Key: "foreignField", Value: "_id"},
			{Key: "pipeline", Value: bson.A{summaryProject}},
			{Key: "as", Value: prefix + "likes"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: dbmongo.CollSaves},
			{Key: "localField", Value: prefix + "saves"},
			{Key: "foreignField", Value: "_id"},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$lookup", Value: bson.D{
					{Key: "from", Value: dbmongo.CollUsers},
					{Key: "localField", Value: "user"},
					{Key: "foreignField", Value: "_id"},
					{Key: "pipeline", Value: bson.A{summaryProject}},
					{Key: "as", Value: "user"},
				}}},
				bson.D{{Key: "$unwind", Value: "$user"}},
				bson.D{{Key: "$project", Value: bson.D{
					{Key: "_id", Value: 0},
					{Key: "user", Value: 1},
				}}},
			}},
			{Key: "as", Value: prefix + "saves"},
		}}},
	}
}
