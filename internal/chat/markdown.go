package chat

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"
)

//go:embed transcript.tmpl
var transcriptTemplate string

var transcript = template.Must(template.New("transcript").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(transcriptTemplate))

// transcriptData is the data the transcript template is rendered with
type transcriptData struct {
	CreatedAt string
	Messages  []transcriptMessage
}

type transcriptMessage struct {
	Role    string
	Content string
	Sources []string
}

// ToMarkdown renders the conversation as a Markdown transcript, oldest turn first
func (c Conversation) ToMarkdown(now time.Time) (string, error) {
	data := transcriptData{
		CreatedAt: now.Format("2006-01-02 15:04:05 MST"),
	}
	for _, turn := range c.turns {
		data.Messages = append(data.Messages, transcriptMessage{
			Role:    string(turn.role),
			Content: turn.content,
			Sources: turn.sources,
		})
	}

	var buf bytes.Buffer
	if err := transcript.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render transcript: %w", err)
	}
	return buf.String(), nil
}
