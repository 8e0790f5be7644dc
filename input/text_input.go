package input

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

// TextInput reads one LF-terminated line per Chunk from an inline string,
// the BytesSourceTypeText case of a FilterList's Source.
type TextInput struct {
	text   string
	reader *bufio.Reader
}

// NewTextInput returns an Input reading lines from the given inline text.
func NewTextInput(text string) *TextInput {
	return &TextInput{text: text}
}

func (t *TextInput) ensureOpen() {
	if t.reader == nil {
		t.reader = bufio.NewReader(strings.NewReader(t.text))
	}
}

func (t *TextInput) Chunk(_ context.Context) ([]byte, error) {
	t.ensureOpen()

	line, err := t.reader.ReadBytes('\n')
	if len(line) > 0 {
		if err == nil || errors.Is(err, io.EOF) {
			return line, nil
		}
	}

	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}

	return line, err
}

func (t *TextInput) Reset(_ context.Context) error {
	t.reader = bufio.NewReader(strings.NewReader(t.text))

	return nil
}

// Len returns the byte length of the inline text itself.
func (t *TextInput) Len(_ context.Context) (int64, bool, error) {
	return int64(len(t.text)), true, nil
}
