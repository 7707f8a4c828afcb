package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kidtales-server/internal/models"
)

func TestGenerateDeterministicSeed(t *testing.T) {
	t.Run("Deterministic for identical inputs", func(t *testing.T) {
		s1 := GenerateDeterministicSeed("story-abc", 7, 0)
		s2 := GenerateDeterministicSeed("story-abc", 7, 0)
		assert.Equal(t, s1, s2)
	})

	t.Run("Changes with page index", func(t *testing.T) {
		s0 := GenerateDeterministicSeed("story-abc", 7, 0)
		s1 := GenerateDeterministicSeed("story-abc", 7, 1)
		s2 := GenerateDeterministicSeed("story-abc", 7, 2)
		assert.NotEqual(t, s0, s1)
		assert.NotEqual(t, s1, s2)
	})

	t.Run("Changes with story and character", func(t *testing.T) {
		base := GenerateDeterministicSeed("story-abc", 7, 3)
		assert.NotEqual(t, base, GenerateDeterministicSeed("story-xyz", 7, 3))
		assert.NotEqual(t, base, GenerateDeterministicSeed("story-abc", 8, 3))
	})

	t.Run("Seed is a non-negative decimal string", func(t *testing.T) {
		seed := GenerateDeterministicSeed("s", 1, 0)
		require.NotEmpty(t, seed)
		assert.False(t, strings.HasPrefix(seed, "-"))
		for _, r := range seed {
			assert.True(t, r >= '0' && r <= '9', "seed must be decimal: %s", seed)
		}
	})
}

func TestGenerateStyleToken(t *testing.T) {
	descriptors := models.CharacterDescriptors{
		Age:       "6-8",
		Traits:    "brave",
		Mood:      "happy",
		HairColor: "red",
		EyeColor:  "green",
	}

	t.Run("Deterministic", func(t *testing.T) {
		assert.Equal(t,
			GenerateStyleToken(descriptors, "watercolor"),
			GenerateStyleToken(descriptors, "watercolor"),
		)
	})

	t.Run("Sensitive to every descriptor field", func(t *testing.T) {
		base := GenerateStyleToken(descriptors, "watercolor")

		mutations := []models.CharacterDescriptors{}
		m := descriptors
		m.Age = "9-12"
		mutations = append(mutations, m)
		m = descriptors
		m.Traits = "shy"
		mutations = append(mutations, m)
		m = descriptors
		m.Mood = "sad"
		mutations = append(mutations, m)
		m = descriptors
		m.Backstory = "from a tiny village"
		mutations = append(mutations, m)
		m = descriptors
		m.HairColor = "black"
		mutations = append(mutations, m)
		m = descriptors
		m.EyeColor = "blue"
		mutations = append(mutations, m)

		for i, mut := range mutations {
			assert.NotEqual(t, base, GenerateStyleToken(mut, "watercolor"), "mutation %d must change token", i)
		}
	})

	t.Run("Sensitive to style label", func(t *testing.T) {
		assert.NotEqual(t,
			GenerateStyleToken(descriptors, "watercolor"),
			GenerateStyleToken(descriptors, "pixel"),
		)
	})
}

func TestBuildCharacterPrompt(t *testing.T) {
	t.Run("Full descriptor set, cover", func(t *testing.T) {
		ch := models.CharacterPromptData{
			Name:         "Luna",
			Descriptors:  &models.CharacterDescriptors{Age: "6-8", Traits: "brave"},
			PrimaryColor: "purple",
		}
		got := BuildCharacterPrompt(ch, "3D", true)
		assert.Equal(t, "Luna, 6-8 years old, brave, purple clothing, centered, storybook cover style, 3D art style, high quality, detailed", got)
	})

	t.Run("Name only, non-cover", func(t *testing.T) {
		ch := models.CharacterPromptData{Name: "Max"}
		got := BuildCharacterPrompt(ch, "watercolor", false)
		assert.Equal(t, "Max, watercolor art style, high quality, detailed", got)
	})

	t.Run("Mood and outfit clauses", func(t *testing.T) {
		ch := models.CharacterPromptData{
			Name:        "Mia",
			Descriptors: &models.CharacterDescriptors{Mood: "cheerful"},
			Outfit:      "a yellow raincoat",
		}
		got := BuildCharacterPrompt(ch, "cartoon", false)
		assert.Equal(t, "Mia, cheerful expression, wearing a yellow raincoat, cartoon art style, high quality, detailed", got)
	})

	t.Run("Byte-identical on repeated calls", func(t *testing.T) {
		ch := models.CharacterPromptData{
			Name:        "Luna",
			Descriptors: &models.CharacterDescriptors{Age: "6-8", Traits: "brave", Mood: "happy"},
			Outfit:      "a red scarf",
		}
		assert.Equal(t, BuildCharacterPrompt(ch, "anime", true), BuildCharacterPrompt(ch, "anime", true))
	})

	t.Run("Omitting one field drops exactly its clause", func(t *testing.T) {
		full := models.CharacterPromptData{
			Name:         "Leo",
			Descriptors:  &models.CharacterDescriptors{Age: "5", Traits: "curious", Mood: "calm"},
			PrimaryColor: "green",
			Outfit:       "overalls",
		}
		withoutMood := full
		d := *full.Descriptors
		d.Mood = ""
		withoutMood.Descriptors = &d

		fullPrompt := BuildCharacterPrompt(full, "pixel", false)
		prompt := BuildCharacterPrompt(withoutMood, "pixel", false)
		assert.Equal(t, strings.Replace(fullPrompt, ", calm expression", "", 1), prompt)
	})
}

func TestBuildNegativePrompt(t *testing.T) {
	t.Run("Base terms are always present", func(t *testing.T) {
		got := BuildNegativePrompt(models.CharacterPromptData{Name: "Max"})
		assert.Equal(t, "blurry, low quality, distorted, ugly, deformed", got)
	})

	t.Run("Hair color clause", func(t *testing.T) {
		ch := models.CharacterPromptData{
			Name:        "Luna",
			Descriptors: &models.CharacterDescriptors{HairColor: "red"},
		}
		got := BuildNegativePrompt(ch)
		assert.Contains(t, got, "different hair color than red")
		assert.NotContains(t, got, "eye color")
	})

	t.Run("Eye color clause", func(t *testing.T) {
		ch := models.CharacterPromptData{
			Name:        "Luna",
			Descriptors: &models.CharacterDescriptors{EyeColor: "green"},
		}
		got := BuildNegativePrompt(ch)
		assert.Contains(t, got, "different eye color than green")
		assert.NotContains(t, got, "hair color")
	})

	t.Run("Both clauses in order", func(t *testing.T) {
		ch := models.CharacterPromptData{
			Name:        "Luna",
			Descriptors: &models.CharacterDescriptors{HairColor: "red", EyeColor: "green"},
		}
		got := BuildNegativePrompt(ch)
		assert.Equal(t, "blurry, low quality, distorted, ugly, deformed, different hair color than red, different eye color than green", got)
	})
}

func TestValidateCharacterData(t *testing.T) {
	cases := []struct {
		name     string
		charName string
		want     bool
	}{
		{"Empty name", "", false},
		{"Whitespace only", "   ", false},
		{"Single char", "A", true},
		{"Exactly 50 chars", strings.Repeat("a", 50), true},
		{"51 chars", strings.Repeat("a", 51), false},
		{"Trimmed to valid", "  Luna  ", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidateCharacterData(models.CharacterPromptData{Name: tc.charName})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSceneFormatters(t *testing.T) {
	t.Run("Cover scene prompt", func(t *testing.T) {
		got := FormatCoverScenePrompt("a fox in a forest", "Fox Tales", "pixel")
		assert.Equal(t, `a fox in a forest in pixel style. Text: "Fox Tales" in bold, centered at the top like a storybook cover. Clean background, well-lit, high-quality illustration.`, got)
	})

	t.Run("Chapter scene prompt", func(t *testing.T) {
		got := FormatChapterScenePrompt("the fox meets an owl", "watercolor")
		assert.Equal(t, "the fox meets an owl in watercolor style. High quality, detailed illustration.", got)
	})

	t.Run("Character clause prepended with comma", func(t *testing.T) {
		assert.Equal(t, "Luna, a scene", PrependCharacterClause("Luna", "a scene"))
		assert.Equal(t, "a scene", PrependCharacterClause("", "a scene"))
	})
}
