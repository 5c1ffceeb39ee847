package prompt

import (
	"fmt"
	"strings"
)

// PersonaSystemPrompt instructs the chat model to act as an expert witness
// persona writer. The structure it asks for is what the demo UI renders.
const PersonaSystemPrompt = `You are an AI assistant that creates detailed expert witness personas for legal proceedings.

Create a realistic, credible expert witness profile that includes:
- Professional background and credentials
- Areas of expertise relevant to the case
- Communication style and key strengths
- Brief experience summary

Keep the response focused and professional for legal use.`

// personaUserTemplate is the single user message sent with the system prompt.
const personaUserTemplate = `Create an expert witness persona for: "%s"

Include:
- Name and title
- Education and credentials
- Years of experience
- Key areas of expertise
- Notable qualifications
- Professional strengths

Make it realistic and suitable for legal testimony.`

// SummarySystemPrompt compresses a full persona narrative into a short visual
// description. Feeding the whole multi-paragraph narrative into an image
// prompt produces incoherent portraits, so this stage gates the image path.
const SummarySystemPrompt = `You condense expert witness profiles into portrait descriptions.

Given a full expert witness persona, respond with a 1-2 sentence physical and
professional description of the person, suitable for generating a portrait
photograph. Mention approximate age, attire, and demeanor. Do not include
names, credentials, or case details.`

// portraitBasePrompt is the fixed portion of every image-generation prompt.
const portraitBasePrompt = `Professional headshot portrait of an expert witness:
- Business formal attire (suit or professional clothing)
- Confident and trustworthy expression
- Clean, neutral background
- Professional lighting
- Photorealistic style
- Age-appropriate for their experience level
- Suitable for legal proceedings`

// ExpertTypes are the persona categories the demo UI offers. "general" is the
// default and adds no hint to the prompt.
var ExpertTypes = []string{"general", "technical", "medical", "financial", "academic"}

// IsValidExpertType reports whether t is a recognized expert category.
func IsValidExpertType(t string) bool {
	for _, known := range ExpertTypes {
		if t == known {
			return true
		}
	}
	return false
}

// BuildPersonaUserPrompt builds the user message for the persona stage.
// A non-default expertType is folded in as a hint ahead of the content.
func BuildPersonaUserPrompt(content, expertType string) string {
	if expertType != "" && expertType != "general" {
		content = fmt.Sprintf("[%s expert needed] %s", expertType, content)
	}
	return fmt.Sprintf(personaUserTemplate, content)
}

// BuildSummaryUserPrompt builds the user message for the summarizer stage.
func BuildSummaryUserPrompt(personaNarrative string) string {
	return "Condense this expert witness profile into a portrait description:\n\n" + personaNarrative
}

// BuildPortraitPrompt builds the image-generation prompt from a visual
// description produced by the summarizer.
func BuildPortraitPrompt(description string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return portraitBasePrompt
	}
	return portraitBasePrompt + "\n\nAdditional specifications: " + description
}
