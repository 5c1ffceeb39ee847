package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidExpertType(t *testing.T) {
	for _, known := range ExpertTypes {
		assert.True(t, IsValidExpertType(known), known)
	}
	assert.False(t, IsValidExpertType("forensic"))
	assert.False(t, IsValidExpertType(""))
	assert.False(t, IsValidExpertType("Medical"))
}

func TestBuildPersonaUserPromptGeneralHasNoHint(t *testing.T) {
	out := BuildPersonaUserPrompt("patent dispute", "general")

	assert.Contains(t, out, `Create an expert witness persona for: "patent dispute"`)
	assert.NotContains(t, out, "expert needed")

	// empty expert type behaves like general
	assert.Equal(t, out, BuildPersonaUserPrompt("patent dispute", ""))
}

func TestBuildPersonaUserPromptFoldsHint(t *testing.T) {
	out := BuildPersonaUserPrompt("patent dispute", "technical")

	assert.Contains(t, out, "[technical expert needed] patent dispute")
}

func TestBuildSummaryUserPrompt(t *testing.T) {
	out := BuildSummaryUserPrompt("Dr. Smith is a seasoned engineer.")

	assert.True(t, strings.HasPrefix(out, "Condense this expert witness profile"))
	assert.Contains(t, out, "Dr. Smith is a seasoned engineer.")
}

func TestBuildPortraitPrompt(t *testing.T) {
	out := BuildPortraitPrompt("  A woman in her 50s in a gray suit.  ")

	assert.True(t, strings.HasPrefix(out, "Professional headshot portrait"))
	assert.Contains(t, out, "Additional specifications: A woman in her 50s in a gray suit.")
}

func TestBuildPortraitPromptEmptyDescription(t *testing.T) {
	out := BuildPortraitPrompt("   ")

	assert.Equal(t, portraitBasePrompt, out)
	assert.NotContains(t, out, "Additional specifications")
}
