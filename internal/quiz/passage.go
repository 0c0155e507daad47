package quiz

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadPassage returns the reading passage a question refers to. Passages
// are plain text files named <name>.txt in dir. An empty dir or name
// yields "" without error.
func ReadPassage(dir, name string) (string, error) {
	if dir == "" || name == "" {
		return "", nil
	}
	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(name)+".txt"))
	if err != nil {
		return "", fmt.Errorf("read passage %q: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}
