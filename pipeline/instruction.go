package pipeline

import (
	"fmt"
	"strings"

	"github.com/BaSui01/promptlens/types"
)

const (
	maxTitleWords = 8
	maxKeywords   = 10
)

// BuildInstruction 构造随图片一起发送的文本指令
func BuildInstruction(opts types.GenerationOptions) string {
	opts = opts.Normalize()

	var b strings.Builder
	b.WriteString("Write a text-to-image prompt that would recreate this image. ")
	b.WriteString("Describe the main subject, composition, lighting, colors and mood in one line. ")
	fmt.Fprintf(&b, "Keep the prompt under %d characters. ", opts.MaxChars)
	if opts.Style != "" {
		fmt.Fprintf(&b, "Render it in this style: %s. ", opts.Style)
	}
	if opts.AspectRatio != "" {
		fmt.Fprintf(&b, "Target aspect ratio: %s. ", opts.AspectRatio)
	}
	if opts.ExtraParams != "" {
		fmt.Fprintf(&b, "Additional requirements: %s. ", opts.ExtraParams)
	}
	b.WriteString("Do not mention copy space, text placement or the image format. ")

	if opts.OutputFormat == types.OutputStructured {
		fmt.Fprintf(&b, "Respond with a single JSON object with the fields \"prompt\" (the prompt text), "+
			"\"title\" (at most %d words) and \"keywords\" (at most %d lowercase keywords). ", maxTitleWords, maxKeywords)
		b.WriteString("Output only the JSON object.")
	} else {
		b.WriteString("Output only the prompt, without labels, quotes or explanations.")
	}
	return b.String()
}
