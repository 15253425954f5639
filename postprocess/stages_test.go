package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/promptlens/types"
)

func TestFirstLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single line", "A cat on a sofa", "A cat on a sofa"},
		{"skips blank lines", "\n\n  A cat on a sofa  \nSecond line", "A cat on a sofa"},
		{"crlf", "\r\nA dog\r\nmore", "A dog"},
		{"prompt label", "Prompt: A dog in the rain", "A dog in the rain"},
		{"markdown label", "**Prompt:** A dog in the rain", "A dog in the rain"},
		{"quoted", `"A dog in the rain"`, "A dog in the rain"},
		{"empty", "  \n \n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FirstLine(tt.in, &Context{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStripCopySpace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trailing clause", "A cat on a sofa, copy space on the left", "A cat on a sofa"},
		{"middle clause", "A cat, negative space at the top, soft light", "A cat, soft light"},
		{"with adjective", "Minimal desk with ample copy space for text", "Minimal desk"},
		{"directional prefix", "Coffee cup, right side copy space, morning light", "Coffee cup, morning light"},
		{"hyphenated", "Flat lay, copy-space at the bottom right corner.", "Flat lay."},
		{"nothing to strip", "A cat on a sofa", "A cat on a sofa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StripCopySpace(tt.in, &Context{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWhiteBackground(t *testing.T) {
	cutout := &Context{Signals: types.AnalyzerSignals{Cutout: true}, MaxChars: 200}
	plain := &Context{MaxChars: 200}

	t.Run("rewrites transparent phrase", func(t *testing.T) {
		got, err := WhiteBackground("A cat on a transparent background", plain)
		require.NoError(t, err)
		assert.Equal(t, "A cat isolated on white background", got)
	})

	t.Run("signal appends suffix", func(t *testing.T) {
		got, err := WhiteBackground("A sneaker, studio lighting", cutout)
		require.NoError(t, err)
		assert.Equal(t, "A sneaker, studio lighting, isolated on white background", got)
	})

	t.Run("bare phrase rewritten", func(t *testing.T) {
		got, err := WhiteBackground("Logo with no background", plain)
		require.NoError(t, err)
		assert.NotContains(t, got, "no background")
		assert.Contains(t, got, "white background")
		assert.Contains(t, got, WhiteBackgroundPhrase)
	})

	t.Run("untouched without signal or mention", func(t *testing.T) {
		got, err := WhiteBackground("A forest at dawn", plain)
		require.NoError(t, err)
		assert.Equal(t, "A forest at dawn", got)
	})

	t.Run("checkerboard signal", func(t *testing.T) {
		sc := &Context{Signals: types.AnalyzerSignals{Checkerboard: true}, MaxChars: 200}
		got, err := WhiteBackground("Red mug", sc)
		require.NoError(t, err)
		assert.Equal(t, "Red mug, isolated on white background", got)
	})
}

func TestMentionsClearBackground(t *testing.T) {
	assert.True(t, MentionsClearBackground("PNG with a transparent background"))
	assert.True(t, MentionsClearBackground("icon, alpha background"))
	assert.True(t, MentionsClearBackground("product shot without a background"))
	assert.False(t, MentionsClearBackground("white background"))
	assert.False(t, MentionsClearBackground("a clear sky"))
}
