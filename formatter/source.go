package formatter

import (
	"os"
	"strings"
)

// SourceCode stores the content of a program file.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode reads the content of a file and returns it as a `SourceCode` struct.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")
	return &SourceCode{Lines: lines}, nil
}

// line returns the 1-based line n, or false if the source has no such line.
func (s *SourceCode) line(n int) (string, bool) {
	if s == nil || n < 1 || n > len(s.Lines) {
		return "", false
	}
	return s.Lines[n-1], true
}
