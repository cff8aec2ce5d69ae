package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"instafeed/internal/dbmongo"
)

func testViewer() *dbmongo.User {
	return &dbmongo.User{ID: primitive.NewObjectID()}
}

// stage returns the single element of a pipeline stage document.
func stage(t *testing.T, p bson.D, key string) any {
	t.Helper()
	require.Len(t, p, 1)
	require.Equal(t, key, p[0].Key)
	return p[0].Value
}

func TestChronologicalPipeline(t *testing.T) {
	viewer := testViewer()
	p, err := BuildPipeline(Spec{Shape: ShapeChronological, Page: 2}, viewer, nil)
	require.NoError(t, err)

	// match, sort, skip, limit, then three enrichment lookups + unwind
	require.GreaterOrEqual(t, len(p), 4)

	stage(t, p[0], "$match")
	sort := stage(t, p[1], "$sort").(bson.D)
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}, sort)

	assert.Equal(t, int64(2*PageSize), stage(t, p[2], "$skip"))
	assert.Equal(t, PageSize, stage(t, p[3], "$limit"))
}

func TestNegativePageClampedToZero(t *testing.T) {
	p, err := BuildPipeline(Spec{Shape: ShapeChronological, Page: -5}, testViewer(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stage(t, p[2], "$skip"))
}

func TestTopPipelineRanking(t *testing.T) {
	p, err := BuildPipeline(Spec{Shape: ShapeTop}, testViewer(), nil)
	require.NoError(t, err)

	fields := stage(t, p[1], "$addFields").(bson.D)
	assert.Equal(t, "likesCount", fields[0].Key)
	assert.Equal(t, "savesCount", fields[1].Key)

	sort := stage(t, p[2], "$sort").(bson.D)
	require.Len(t, sort, 3)
	assert.Equal(t, bson.E{Key: "likesCount", Value: -1}, sort[0])
	assert.Equal(t, bson.E{Key: "savesCount", Value: -1}, sort[1])
	assert.Equal(t, bson.E{Key: "createdAt", Value: -1}, sort[2])
}

func TestSearchPipelineTextFirstStage(t *testing.T) {
	p, err := BuildPipeline(Spec{Shape: ShapeSearch, Query: "sunset beach"}, testViewer(), nil)
	require.NoError(t, err)

	// $text is only legal in the first stage; visibility rides alongside.
	match := stage(t, p[0], "$match").(bson.D)
	require.Equal(t, "$and", match[0].Key)
	clauses := match[0].Value.(bson.A)
	text := clauses[0].(bson.D)
	assert.Equal(t, "$text", text[0].Key)

	sort := stage(t, p[2], "$sort").(bson.D)
	assert.Equal(t, "score", sort[0].Key)
	assert.Equal(t, "createdAt", sort[1].Key)
}

func TestSearchRequiresQuery(t *testing.T) {
	_, err := BuildPipeline(Spec{Shape: ShapeSearch}, testViewer(), nil)
	assert.Error(t, err)
}

func TestRelatedPipeline(t *testing.T) {
	source := &dbmongo.Post{
		ID:       primitive.NewObjectID(),
		Tags:     []string{"sunset", "beach"},
		Location: "Lisbon",
	}

	p, err := BuildPipeline(Spec{Shape: ShapeRelated}, testViewer(), source)
	require.NoError(t, err)

	fields := stage(t, p[1], "$addFields").(bson.D)
	assert.Equal(t, "sharedTagsCount", fields[0].Key)

	sort := stage(t, p[2], "$sort").(bson.D)
	assert.Equal(t, bson.E{Key: "sharedTagsCount", Value: -1}, sort[0])

	assert.Equal(t, RelatedLimit, stage(t, p[3], "$limit"))
}

func TestRelatedRequiresSource(t *testing.T) {
	_, err := BuildPipeline(Spec{Shape: ShapeRelated}, testViewer(), nil)
	assert.Error(t, err)
}

func TestRelatedExcludesSourcePost(t *testing.T) {
	source := &dbmongo.Post{ID: primitive.NewObjectID(), Tags: []string{"a"}}

	p, err := BuildPipeline(Spec{Shape: ShapeRelated}, testViewer(), source)
	require.NoError(t, err)

	match := stage(t, p[0], "$match").(bson.D)
	clauses := match[0].Value.(bson.A)
	exclusion := clauses[len(clauses)-1].(bson.D)
	assert.Equal(t, "_id", exclusion[0].Key)
	assert.Equal(t, bson.D{{Key: "$ne", Value: source.ID}}, exclusion[0].Value)
}

func TestSavedByRunsOnSavesCollection(t *testing.T) {
	target := primitive.NewObjectID()
	spec := Spec{Shape: ShapeSavedBy, Target: target}

	assert.Equal(t, dbmongo.CollSaves, spec.Collection())
	assert.Equal(t, dbmongo.CollPosts, Spec{Shape: ShapeChronological}.Collection())

	p, err := BuildPipeline(spec, testViewer(), nil)
	require.NoError(t, err)

	match := stage(t, p[0], "$match").(bson.D)
	assert.Equal(t, bson.D{{Key: "user", Value: target}}, match)

	// Visibility is matched on the joined post document.
	visMatch := stage(t, p[3], "$match").(bson.D)
	tiers := visMatch[0].Value.(bson.A)
	public := tiers[0].(bson.D)
	assert.Equal(t, "post.visibility", public[0].Key)

	last := p[len(p)-1]
	assert.Equal(t, "$replaceRoot", last[0].Key)
}

func TestByAuthorAndLikedByFilters(t *testing.T) {
	author := primitive.NewObjectID()
	p, err := BuildPipeline(Spec{Shape: ShapeByAuthor, Author: author}, testViewer(), nil)
	require.NoError(t, err)
	match := stage(t, p[0], "$match").(bson.D)
	clauses := match[0].Value.(bson.A)
	assert.Equal(t, bson.D{{Key: "creator", Value: author}}, clauses[1])

	user := primitive.NewObjectID()
	p, err = BuildPipeline(Spec{Shape: ShapeLikedBy, Target: user}, testViewer(), nil)
	require.NoError(t, err)
	match = stage(t, p[0], "$match").(bson.D)
	clauses = match[0].Value.(bson.A)
	assert.Equal(t, bson.D{{Key: "likes", Value: user}}, clauses[1])
}

func TestEnrichmentProjectsBoundedSummaries(t *testing.T) {
	stages := enrichStages("")
	require.Len(t, stages, 4)

	lookup := stages[0][0].Value.(bson.D)
	var pipeline bson.A
	for _, e := range lookup {
		if e.Key == "pipeline" {
			pipeline = e.Value.(bson.A)
		}
	}
	require.NotNil(t, pipeline)

	project := pipeline[0].(bson.D)[0].Value.(bson.D)
	keys := make([]string, 0, len(project))
	for _, e := range project {
		keys = append(keys, e.Key)
	}
	assert.ElementsMatch(t, []string{"_id", "name", "alias", "image"}, keys,
		"creator summaries carry exactly these fields")
}

func TestSpecCacheKeyDeterministic(t *testing.T) {
	viewer := primitive.NewObjectID()
	a := Spec{Shape: ShapeChronological, Viewer: viewer, Page: 1}
	b := Spec{Shape: ShapeChronological, Viewer: viewer, Page: 1}

	assert.Equal(t, a.CacheKey(), b.CacheKey())
}

func TestSpecCacheKeySensitivity(t *testing.T) {
	viewer := primitive.NewObjectID()
	base := Spec{Shape: ShapeChronological, Viewer: viewer, Page: 0}

	variants := []Spec{
		{Shape: ShapeTop, Viewer: viewer, Page: 0},
		{Shape: ShapeChronological, Viewer: primitive.NewObjectID(), Page: 0},
		{Shape: ShapeChronological, Viewer: viewer, Page: 1},
		{Shape: ShapeSearch, Viewer: viewer, Query: "x"},
		{Shape: ShapeByAuthor, Viewer: viewer, Author: primitive.NewObjectID()},
		{Shape: ShapeSavedBy, Viewer: viewer, Target: primitive.NewObjectID()},
		{Shape: ShapeRelated, Viewer: viewer, Source: primitive.NewObjectID()},
	}
	for _, v := range variants {
		assert.NotEqual(t, base.CacheKey(), v.CacheKey(), "shape %s", v.Shape)
	}
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, ParseTags("a, b ,c"))
	assert.Equal(t, []string{"a", "b"}, ParseTags("a,a,b"))
	assert.Equal(t, []string{}, ParseTags(""))
	assert.Equal(t, []string{}, ParseTags(" , ,"))
}
