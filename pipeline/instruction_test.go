package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BaSui01/promptlens/types"
)

func TestBuildInstruction_Text(t *testing.T) {
	got := BuildInstruction(types.GenerationOptions{
		MaxChars:    150,
		Style:       " watercolor ",
		AspectRatio: "16:9",
		ExtraParams: "no people",
	})

	assert.Contains(t, got, "under 150 characters")
	assert.Contains(t, got, "style: watercolor.")
	assert.Contains(t, got, "aspect ratio: 16:9")
	assert.Contains(t, got, "Additional requirements: no people")
	assert.Contains(t, got, "Output only the prompt")
	assert.NotContains(t, got, "JSON")
}

func TestBuildInstruction_OmitsEmptyOptions(t *testing.T) {
	got := BuildInstruction(types.GenerationOptions{MaxChars: 80})

	assert.NotContains(t, got, "style:")
	assert.NotContains(t, got, "aspect ratio")
	assert.NotContains(t, got, "Additional requirements")
}

func TestBuildInstruction_Structured(t *testing.T) {
	got := BuildInstruction(types.GenerationOptions{MaxChars: 80, OutputFormat: types.OutputStructured})

	assert.Contains(t, got, "JSON object")
	assert.Contains(t, got, `"keywords"`)
	assert.Contains(t, got, "at most 8 words")
	assert.Contains(t, got, "at most 10 lowercase keywords")
}
