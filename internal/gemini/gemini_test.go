package gemini

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
)

func TestPartsText(t *testing.T) {
	parts := []genai.Part{genai.Text("2"), genai.Text("\n")}
	assert.Equal(t, "2", partsText(parts))
	assert.Empty(t, partsText(nil))
}

func TestPartsTextConcatenates(t *testing.T) {
	parts := []genai.Part{genai.Text("- one\n"), genai.Text("- two\n- three")}
	assert.Equal(t, "- one\n- two\n- three", partsText(parts))
}
