// Package clip writes transcripts to the system clipboard.
package clip

import "github.com/atotto/clipboard"

// Writer copies text to the system clipboard.
type Writer struct{}

func New() *Writer {
	return &Writer{}
}

// Write replaces the clipboard contents with text.
func (*Writer) Write(text string) error {
	return clipboard.WriteAll(text)
}

// Available reports whether a clipboard backend exists on this system.
// Headless Linux sessions without xclip or xsel have none.
func Available() bool {
	return !clipboard.Unsupported
}
