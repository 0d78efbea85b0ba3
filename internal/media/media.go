// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package media enriches study content with stock images and videos from
// Pexels and with video-search suggestions.
package media

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/studycraft/internal/httputil"
	"github.com/pdiddy/studycraft/pkg/types"
)

// Search endpoints. Tests point these at httptest servers.
var (
	pexelsImageAPI = "https://api.pexels.com/v1/search"
	pexelsVideoAPI = "https://api.pexels.com/videos/search"
)

// Default result counts.
const (
	DefaultImageCount = 10
	DefaultVideoCount = 3
)

// ErrMissingKey is returned by Enrich when no Pexels key is supplied. No
// request is made.
var ErrMissingKey = eris.New("media: missing pexels key")

// Enricher fetches images and videos for a topic.
type Enricher struct {
	client     *http.Client
	imageCount int
	videoCount int
	logger     *zap.Logger
}

// New returns an enricher configured from cfg.
func New(cfg types.MediaConfig, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	e := &Enricher{
		client:     &http.Client{Timeout: timeout},
		imageCount: cfg.ImageCount,
		videoCount: cfg.VideoCount,
		logger:     logger,
	}
	if e.imageCount <= 0 {
		e.imageCount = DefaultImageCount
	}
	if e.videoCount <= 0 {
		e.videoCount = DefaultVideoCount
	}
	return e
}

// Enrich fetches images and videos for topic concurrently. Either request
// failing fails the call; the caller decides what to keep.
func (e *Enricher) Enrich(ctx context.Context, topic, key string) (types.MediaSet, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return types.MediaSet{}, ErrMissingKey
	}

	var set types.MediaSet
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		imgs, err := e.Images(gctx, topic, key)
		set.Images = imgs
		return err
	})
	g.Go(func() error {
		vids, err := e.Videos(gctx, topic, key)
		set.Videos = vids
		return err
	})
	if err := g.Wait(); err != nil {
		return types.MediaSet{}, err
	}
	e.logger.Debug("media: enriched",
		zap.String("topic", topic),
		zap.Int("images", len(set.Images)),
		zap.Int("videos", len(set.Videos)))
	return set, nil
}

type photoResponse struct {
	Photos []struct {
		Alt          string `json:"alt"`
		Photographer string `json:"photographer"`
		Src          struct {
			Large  string `json:"large"`
			Medium string `json:"medium"`
		} `json:"src"`
	} `json:"photos"`
}

// Images searches Pexels for landscape photos of query.
func (e *Enricher) Images(ctx context.Context, query, key string) ([]types.Media, error) {
	params := url.Values{
		"query":       {query},
		"per_page":    {strconv.Itoa(e.imageCount)},
		"orientation": {"landscape"},
	}
	var resp photoResponse
	if err := e.get(ctx, pexelsImageAPI, params, key, &resp); err != nil {
		return nil, eris.Wrap(err, "media: images")
	}

	out := make([]types.Media, 0, len(resp.Photos))
	for _, p := range resp.Photos {
		desc := p.Alt
		if desc == "" {
			desc = "Image about " + query
		}
		out = append(out, types.Media{
			URL:          p.Src.Large,
			ThumbnailURL: p.Src.Medium,
			Description:  desc,
			Attribution:  p.Photographer,
		})
	}
	return out, nil
}

type videoResponse struct {
	Videos []struct {
		Image string `json:"image"`
		User  struct {
			Name string `json:"name"`
		} `json:"user"`
		VideoFiles []struct {
			Link string `json:"link"`
		} `json:"video_files"`
	} `json:"videos"`
}

// Videos searches Pexels for videos of query. Videos without a playable
// file are skipped.
func (e *Enricher) Videos(ctx context.Context, query, key string) ([]types.Media, error) {
	params := url.Values{
		"query":    {query},
		"per_page": {strconv.Itoa(e.videoCount)},
	}
	var resp videoResponse
	if err := e.get(ctx, pexelsVideoAPI, params, key, &resp); err != nil {
		return nil, eris.Wrap(err, "media: videos")
	}

	out := make([]types.Media, 0, len(resp.Videos))
	for _, v := range resp.Videos {
		if len(v.VideoFiles) == 0 || v.VideoFiles[0].Link == "" {
			continue
		}
		out = append(out, types.Media{
			URL:          v.VideoFiles[0].Link,
			ThumbnailURL: v.Image,
			Description:  "Video about " + query,
			Attribution:  v.User.Name,
		})
	}
	return out, nil
}

func (e *Enricher) get(ctx context.Context, base string, params url.Values, key string, v any) error {
	header := http.Header{"Authorization": {key}}
	return httputil.GetJSON(ctx, e.client, base+"?"+params.Encode(), header, httputil.Retry{Logger: e.logger}, v)
}
