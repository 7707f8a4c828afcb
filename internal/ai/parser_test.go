package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kidtales-server/internal/models"
)

const validStoryJSON = `{
	"title": "The Brave Little Fox",
	"moral": "Courage grows with kindness.",
	"vocabulary": ["courage", "burrow"],
	"coverImage": "a little fox standing on a hill at sunrise",
	"chapters": [
		{"title": "The Hill", "text": "Once upon a time...", "imagePrompt": "a fox climbing a grassy hill"},
		{"title": "The Storm", "text": "Dark clouds came...", "imagePrompt": "a fox sheltering under a big oak"}
	]
}`

func TestParseStoryOutput_PlainJSON(t *testing.T) {
	out, err := ParseStoryOutput(validStoryJSON)

	require.NoError(t, err)
	assert.Equal(t, "The Brave Little Fox", out.Title)
	assert.Equal(t, "a little fox standing on a hill at sunrise", out.CoverImage)
	assert.Len(t, out.Chapters, 2)
	assert.Equal(t, "a fox sheltering under a big oak", out.Chapters[1].ImagePrompt)
}

func TestParseStoryOutput_MarkdownFence(t *testing.T) {
	out, err := ParseStoryOutput("```json\n" + validStoryJSON + "\n```")

	require.NoError(t, err)
	assert.Equal(t, "The Brave Little Fox", out.Title)
}

func TestParseStoryOutput_LeadingProse(t *testing.T) {
	out, err := ParseStoryOutput("Here is your story:\n" + validStoryJSON)

	require.NoError(t, err)
	assert.Len(t, out.Vocabulary, 2)
}

func TestParseStoryOutput_NoJSON(t *testing.T) {
	_, err := ParseStoryOutput("sorry, I cannot help with that")

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrStoryGeneration)
}

func TestParseStoryOutput_MissingChapters(t *testing.T) {
	_, err := ParseStoryOutput(`{"title": "Empty", "coverImage": "none", "chapters": []}`)

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrStoryGeneration)
}
