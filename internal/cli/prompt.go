package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter reads interactive answers from the terminal.
type Prompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewPrompter creates a prompter over the given reader and writer.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	return &Prompter{reader: bufio.NewReader(reader), writer: writer}
}

// Ask prints the prompt and returns the trimmed answer line.
func (p *Prompter) Ask(prompt string) (string, error) {
	if _, err := fmt.Fprint(p.writer, InfoStyle.Render(prompt+" ")); err != nil {
		return "", err
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question, defaulting to no.
func (p *Prompter) Confirm(prompt string) (bool, error) {
	answer, err := p.Ask(prompt + " [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
