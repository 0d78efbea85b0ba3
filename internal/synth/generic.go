// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synth

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pdiddy/studycraft/pkg/types"
)

// GenericSource labels content built by GenericContent.
const GenericSource = "Generic Fallback"

var titleCaser = cases.Title(language.English)

// DisplayTitle title-cases a topic for headings.
func DisplayTitle(topic string) string {
	return titleCaser.String(strings.TrimSpace(topic))
}

// GenericContent returns placeholder study content for a topic with no
// provider or encyclopedia coverage. It always satisfies the StudyContent
// invariants.
func GenericContent(topic string) types.StudyContent {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = "this topic"
	}
	return types.StudyContent{
		Topic: topic,
		Notes: []string{
			topic + " is an important subject worth studying.",
			"To learn more about " + topic + ", try enabling AI mode in settings.",
			"The encyclopedia sources don't have detailed information on this specific topic.",
			"Consider searching for related terms or broader categories.",
			"AI mode with a provider key can provide more comprehensive content.",
		},
		ImageKeywords: []string{topic + " concept", topic + " diagram", "education learning"},
		Slides: []types.Slide{
			{
				Title: "About " + DisplayTitle(topic),
				BulletPoints: []string{
					"You're studying: " + topic,
					"Limited info available in offline mode",
					"Enable AI mode for better results",
				},
			},
			{
				Title: "Recommendations",
				BulletPoints: []string{
					"Try a more specific or common topic",
					"Enable AI mode in settings",
					"Search online resources for this topic",
				},
			},
		},
		Quiz: []types.QuizItem{
			{
				Question:     "What are you currently studying?",
				Options:      []string{topic, "General knowledge", "Random topics", "Nothing specific"},
				CorrectIndex: 0,
				Explanation:  fmt.Sprintf("You selected %q as your study topic. For comprehensive quiz questions, please enable AI mode.", topic),
			},
		},
		Source: GenericSource,
	}
}

// GenericProjectIdeas returns one placeholder project per level.
func GenericProjectIdeas(topic string) types.ProjectIdeas {
	title := DisplayTitle(topic)
	return types.ProjectIdeas{
		Topic: topic,
		Beginner: []types.ProjectIdea{{
			Title: title + " Basics", Description: "Start with fundamentals",
			Skills: []string{"Research"}, TimeEstimate: "1-2 hours", Tools: []string{"Internet"},
		}},
		Intermediate: []types.ProjectIdea{{
			Title: title + " Deep Dive", Description: "Intermediate project",
			Skills: []string{"Analysis"}, TimeEstimate: "3-5 hours", Tools: []string{"Notebook"},
		}},
		Advanced: []types.ProjectIdea{{
			Title: title + " Mastery", Description: "Advanced project",
			Skills: []string{"Synthesis"}, TimeEstimate: "1 week", Tools: []string{"Various"},
		}},
	}
}
