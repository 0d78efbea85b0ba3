// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package media

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/studycraft/internal/httputil"
	"github.com/pdiddy/studycraft/pkg/types"
)

func TestMain(m *testing.M) {
	httputil.RetryBaseDelay = time.Millisecond
	os.Exit(m.Run())
}

const (
	photosJSON = `{"photos":[
		{"alt":"A green leaf","photographer":"Ada","src":{"large":"https://img/large1.jpg","medium":"https://img/med1.jpg"}},
		{"alt":"","photographer":"Bo","src":{"large":"https://img/large2.jpg","medium":"https://img/med2.jpg"}}
	]}`
	videosJSON = `{"videos":[
		{"image":"https://vid/thumb1.jpg","user":{"name":"Cy"},"video_files":[{"link":"https://vid/1.mp4"},{"link":"https://vid/1-hd.mp4"}]},
		{"image":"https://vid/thumb2.jpg","user":{"name":"Di"},"video_files":[]}
	]}`
)

// withPexels points both endpoints at handlers for the duration of the test.
func withPexels(t *testing.T, images, videos http.HandlerFunc) {
	t.Helper()
	is := httptest.NewServer(images)
	vs := httptest.NewServer(videos)
	oldImg, oldVid := pexelsImageAPI, pexelsVideoAPI
	pexelsImageAPI, pexelsVideoAPI = is.URL+"/v1/search", vs.URL+"/videos/search"
	t.Cleanup(func() {
		pexelsImageAPI, pexelsVideoAPI = oldImg, oldVid
		is.Close()
		vs.Close()
	})
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte(body)) }
}

func TestEnrich(t *testing.T) {
	var imgQuery, vidQuery url.Values
	var auth string
	withPexels(t,
		func(w http.ResponseWriter, r *http.Request) {
			imgQuery = r.URL.Query()
			auth = r.Header.Get("Authorization")
			w.Write([]byte(photosJSON))
		},
		func(w http.ResponseWriter, r *http.Request) {
			vidQuery = r.URL.Query()
			w.Write([]byte(videosJSON))
		})

	e := New(types.MediaConfig{ImageCount: 2}, nil)
	set, err := e.Enrich(context.Background(), "photosynthesis", "px-key")
	require.NoError(t, err)

	assert.Equal(t, "px-key", auth)
	assert.Equal(t, "photosynthesis", imgQuery.Get("query"))
	assert.Equal(t, "2", imgQuery.Get("per_page"))
	assert.Equal(t, "landscape", imgQuery.Get("orientation"))
	assert.Equal(t, "3", vidQuery.Get("per_page"), "default video count")

	require.Len(t, set.Images, 2)
	assert.Equal(t, types.Media{
		URL: "https://img/large1.jpg", ThumbnailURL: "https://img/med1.jpg",
		Description: "A green leaf", Attribution: "Ada",
	}, set.Images[0])
	assert.Equal(t, "Image about photosynthesis", set.Images[1].Description)

	require.Len(t, set.Videos, 1, "videos without files are skipped")
	assert.Equal(t, types.Media{
		URL: "https://vid/1.mp4", ThumbnailURL: "https://vid/thumb1.jpg",
		Description: "Video about photosynthesis", Attribution: "Cy",
	}, set.Videos[0])
}

func TestEnrichMissingKey(t *testing.T) {
	var calls atomic.Int32
	count := func(w http.ResponseWriter, _ *http.Request) { calls.Add(1) }
	withPexels(t, count, count)

	_, err := New(types.MediaConfig{}, nil).Enrich(context.Background(), "x", "  ")
	assert.True(t, errors.Is(err, ErrMissingKey))
	assert.Zero(t, calls.Load(), "no request without a key")
}

func TestEnrichFailure(t *testing.T) {
	withPexels(t,
		respond(photosJSON),
		func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusUnauthorized) })

	set, err := New(types.MediaConfig{}, nil).Enrich(context.Background(), "x", "bad")
	require.Error(t, err)
	var se *httputil.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Empty(t, set.Images)
	assert.Empty(t, set.Videos)
}

func TestEnrichRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	withPexels(t,
		func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(photosJSON))
		},
		respond(`{"videos":[]}`))

	set, err := New(types.MediaConfig{}, nil).Enrich(context.Background(), "x", "k")
	require.NoError(t, err)
	assert.Len(t, set.Images, 2)
	assert.Empty(t, set.Videos)
	assert.Equal(t, int32(2), calls.Load())
}

func TestYouTubeLinks(t *testing.T) {
	links := YouTubeLinks("Black holes")
	require.Len(t, links, 5)
	assert.Equal(t, "Black holes - Complete Tutorial", links[0].Title)
	assert.Equal(t, "https://www.youtube.com/results?search_query=Black+holes+complete+tutorial", links[0].URL)
	assert.Equal(t, "Black holes Study Guide", links[4].Title)
	for _, l := range links {
		assert.True(t, strings.HasPrefix(l.URL, youtubeSearch))
		assert.NotEmpty(t, l.Description)
	}
}
