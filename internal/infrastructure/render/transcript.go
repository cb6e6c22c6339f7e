package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/comparewise/backend/internal/domain"
)

// TranscriptMarkdown formats messages in submission order as markdown
func TranscriptMarkdown(messages []domain.Message) string {
	var sb strings.Builder
	for i, m := range messages {
		if i > 0 {
			sb.WriteString("\n---\n\n")
		}
		role := "Assistant"
		if m.Role == domain.RoleUser {
			role = "You"
		}
		fmt.Fprintf(&sb, "**%s**\n\n%s\n", role, m.Content)
	}
	return sb.String()
}

// Transcript renders messages for a terminal using the colorless style
func Transcript(messages []domain.Message, width int) (string, error) {
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("notty"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}

	out, err := r.Render(TranscriptMarkdown(messages))
	if err != nil {
		return "", fmt.Errorf("failed to render transcript: %w", err)
	}
	return out, nil
}
