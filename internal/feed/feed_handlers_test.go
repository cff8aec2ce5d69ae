package feed

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"instafeed/internal/cache"
	"instafeed/internal/dbmongo"
)

func newTestServer(t *testing.T, users ...*dbmongo.User) (*httptest.Server, *fixture) {
	t.Helper()
	f := newFixture(cache.NewMemory(time.Minute, 0), users...)
	r := mux.NewRouter()
	NewHandler(f.service).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, f
}

func doRequest(t *testing.T, method, url, viewer string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	if viewer != "" {
		req.Header.Set("X-Viewer-ID", viewer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodePosts(t *testing.T, resp *http.Response) []dbmongo.FeedPost {
	t.Helper()
	var posts []dbmongo.FeedPost
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&posts))
	return posts
}

func TestHandlerGetPosts(t *testing.T) {
	u := seedUser()
	srv, f := newTestServer(t, u)
	f.seedPost(u.ID, dbmongo.VisibilityPublic, time.Hour)

	resp := doRequest(t, http.MethodGet, srv.URL+"/posts", u.ID.Hex())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Len(t, decodePosts(t, resp), 1)
}

func TestHandlerRequiresViewerHeader(t *testing.T) {
	u := seedUser()
	srv, _ := newTestServer(t, u)

	resp := doRequest(t, http.MethodGet, srv.URL+"/posts", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, srv.URL+"/posts", "not-an-id")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandlerMalformedPostID(t *testing.T) {
	u := seedUser()
	srv, _ := newTestServer(t, u)

	resp := doRequest(t, http.MethodGet, srv.URL+"/posts/xyz", u.ID.Hex())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandlerGetPostStatusCodes(t *testing.T) {
	owner, stranger := seedUser(), seedUser()
	srv, f := newTestServer(t, owner, stranger)
	id := f.seedPost(owner.ID, dbmongo.VisibilityPrivate, time.Hour)

	resp := doRequest(t, http.MethodGet, srv.URL+"/posts/"+id.Hex(), owner.ID.Hex())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// A hidden post and a missing post are indistinguishable.
	resp = doRequest(t, http.MethodGet, srv.URL+"/posts/"+id.Hex(), stranger.ID.Hex())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, srv.URL+"/posts/"+primitive.NewObjectID().Hex(), owner.ID.Hex())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandlerSearchValidation(t *testing.T) {
	u := seedUser()
	srv, _ := newTestServer(t, u)

	resp := doRequest(t, http.MethodGet, srv.URL+"/posts/search", u.ID.Hex())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["error"])
}

func TestHandlerLikeToggle(t *testing.T) {
	u := seedUser()
	srv, f := newTestServer(t, u)
	id := f.seedPost(u.ID, dbmongo.VisibilityPublic, time.Hour)
	url := srv.URL + "/posts/" + id.Hex() + "/like"

	resp := doRequest(t, http.MethodPost, url, u.ID.Hex())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body["liked"])
	assert.True(t, body["changed"])

	resp = doRequest(t, http.MethodPost, url, u.ID.Hex())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body["liked"])
}

func TestHandlerSaveToggleAndSavedFeed(t *testing.T) {
	owner, saver := seedUser(), seedUser()
	srv, f := newTestServer(t, owner, saver)
	id := f.seedPost(owner.ID, dbmongo.VisibilityPublic, time.Hour)

	resp := doRequest(t, http.MethodPost, srv.URL+"/posts/"+id.Hex()+"/save", saver.ID.Hex())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body["saved"])

	resp = doRequest(t, http.MethodGet, srv.URL+"/users/"+saver.ID.Hex()+"/saved", saver.ID.Hex())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodePosts(t, resp), 1)
}

func TestHandlerUserFeeds(t *testing.T) {
	author, viewer := seedUser(), seedUser()
	srv, f := newTestServer(t, author, viewer)
	f.seedPost(author.ID, dbmongo.VisibilityPublic, time.Hour)

	resp := doRequest(t, http.MethodGet, srv.URL+"/users/"+author.ID.Hex()+"/posts", viewer.ID.Hex())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodePosts(t, resp), 1)

	resp = doRequest(t, http.MethodGet, srv.URL+"/users/"+author.ID.Hex()+"/liked", viewer.ID.Hex())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodePosts(t, resp))
}

func TestHandlerPageParam(t *testing.T) {
	u := seedUser()
	srv, f := newTestServer(t, u)
	f.seedPost(u.ID, dbmongo.VisibilityPublic, time.Hour)

	// Garbage and negative pages fall back to the first page.
	for _, q := range []string{"?page=abc", "?page=-3", ""} {
		resp := doRequest(t, http.MethodGet, srv.URL+"/posts"+q, u.ID.Hex())
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, decodePosts(t, resp), 1)
	}

	resp := doRequest(t, http.MethodGet, srv.URL+"/posts?page=5", u.ID.Hex())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodePosts(t, resp))

	// A page near MaxInt64 must cap instead of overflowing the skip
	// arithmetic into a negative value.
	resp = doRequest(t, http.MethodGet, srv.URL+"/posts?page=9223372036854775807", u.ID.Hex())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodePosts(t, resp))
}
