// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package media

import (
	"fmt"
	"net/url"

	"github.com/pdiddy/studycraft/pkg/types"
)

const youtubeSearch = "https://www.youtube.com/results?search_query="

var tutorialQueries = []struct {
	title, description, suffix string
}{
	{"%s - Complete Tutorial", "Comprehensive video explanation", " complete tutorial"},
	{"%s for Beginners", "Start from scratch with basics", " for beginners explained"},
	{"%s in 10 Minutes", "Quick overview of key concepts", " explained in 10 minutes"},
	{"%s - Crash Course", "Fast-paced comprehensive lesson", " crash course"},
	{"%s Study Guide", "Perfect for exam preparation", " study guide exam"},
}

// YouTubeLinks returns five video-search suggestions for topic. No
// request is made; each link opens a search results page.
func YouTubeLinks(topic string) []types.SearchLink {
	links := make([]types.SearchLink, len(tutorialQueries))
	for i, q := range tutorialQueries {
		links[i] = types.SearchLink{
			Title:       fmt.Sprintf(q.title, topic),
			Description: q.description,
			URL:         youtubeSearch + url.QueryEscape(topic+q.suffix),
		}
	}
	return links
}
