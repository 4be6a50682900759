package prompt

import (
	"strings"

	"github.com/markdave123-py/Vivid/internal/models"
)

// Instructions is the pair sent when a conversation is opened.
type Instructions struct {
	System string
	User   string
}

const systemInstruction = `You are an expert in creating visual descriptions for the blind and visually impaired community.
Analyze videos and generate detailed, objective descriptions.
- Follow the video's timeline chronologically.
- Describe the setting, characters (if any), actions, and key visual cues.
- ALWAYS include and transcribe any on-screen text, captions, or titles that appear. This is a critical requirement.
- Capture the mood and key visual cues.
- The description should be clear, concise, and suitable for a social media caption or alt-text.
- IMPORTANT: Do not include any introductory phrases or sentences. Begin the description directly with the visual information.`

const (
	BaseRequest = "Please generate the description for this video."

	BriefClause    = "\n- Keep the description brief and to the point, summarizing the key visual information concisely."
	DetailedClause = "\n- Provide a highly detailed, comprehensive, scene-by-scene description, capturing as much visual information as possible."

	profilesIntro = "\n\n- The following people may appear in the video. Please identify them by name if you can, using their provided description and pronouns:\n"
)

// SystemInstruction is identical for every session.
func SystemInstruction() string { return systemInstruction }

// Assemble builds the instructions for the first turn. It is pure: equal
// inputs give byte-identical output. Profiles are emitted in the given order.
func Assemble(level models.DetailLevel, focus []string, profiles []models.Profile) Instructions {
	var b strings.Builder
	b.WriteString(BaseRequest)

	switch level {
	case models.DetailBrief:
		b.WriteString(BriefClause)
	case models.DetailDetailed:
		b.WriteString(DetailedClause)
	}

	if len(focus) > 0 {
		b.WriteString("\n- The main focus of the video is on the following aspects: ")
		b.WriteString(strings.Join(focus, ", "))
		b.WriteString(". Pay special attention to these.")
	}

	if len(profiles) > 0 {
		b.WriteString(profilesIntro)
		for _, p := range profiles {
			writeProfile(&b, p)
		}
	}

	return Instructions{System: systemInstruction, User: b.String()}
}

func writeProfile(b *strings.Builder, p models.Profile) {
	b.WriteString("  - Name: ")
	b.WriteString(p.Name)
	if pronouns := strings.TrimSpace(p.Pronouns); pronouns != "" {
		b.WriteString(", Pronouns: ")
		b.WriteString(p.Pronouns)
	}
	b.WriteString(", Description: ")
	b.WriteString(p.Description)
	b.WriteString("\n")
}
