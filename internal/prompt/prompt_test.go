// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/studycraft/pkg/types"
)

func TestStudyContent(t *testing.T) {
	out, err := StudyContent("Photosynthesis", types.Beginner, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Topic: Photosynthesis")
	assert.Contains(t, out, "Learner level: beginner")
	assert.Contains(t, out, `"correctIndex": 0`)
	assert.NotContains(t, out, "struggled")

	out, err = StudyContent("Photosynthesis", "", []string{"chlorophyll", "stomata"})
	require.NoError(t, err)
	assert.Contains(t, out, "Learner level: intermediate")
	assert.Contains(t, out, "struggled with: chlorophyll, stomata.")
}

func TestTutor(t *testing.T) {
	out, err := Tutor("Gravity", "Why do apples fall?", "")
	require.NoError(t, err)
	assert.Contains(t, out, `teaching about "Gravity"`)
	assert.Contains(t, out, "learning about: Gravity")
	assert.Contains(t, out, "STUDENT'S QUESTION: Why do apples fall?")
}

func TestProjectIdeas(t *testing.T) {
	out, err := ProjectIdeas("Rust")
	require.NoError(t, err)
	assert.Contains(t, out, `"topic": "Rust"`)
	assert.Contains(t, out, `"advanced"`)
}

func TestDeepStudy(t *testing.T) {
	for _, level := range types.StudyLevels {
		t.Run(string(level), func(t *testing.T) {
			out, subject, err := DeepStudy("Python loops", level)
			require.NoError(t, err)
			assert.Equal(t, types.SubjectCoding, subject)
			assert.Contains(t, out, `"level": "`+string(level)+`"`)
			assert.Contains(t, out, "Python loops")
			assert.Contains(t, out, TeachingStyle(types.SubjectCoding))
			assert.NotContains(t, out, "{{")
		})
	}

	_, _, err := DeepStudy("x", "expert")
	assert.Error(t, err)
}

func TestDetectSubject(t *testing.T) {
	tests := []struct {
		topic string
		want  types.Subject
	}{
		{"Quantum Physics", types.SubjectScience},
		{"Linear Algebra", types.SubjectMathematics},
		{"JavaScript closures", types.SubjectCoding},
		{"The Roman Empire", types.SubjectHistory},
		{"Rivers of Africa", types.SubjectGeography},
		{"Poetry", types.SubjectGeneral},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectSubject(tt.topic), tt.topic)
	}
}
