package listfile

import (
	"fmt"
	"os"

	"listradar/internal/ports"
)

// Reader reads the curated list from the local filesystem.
type Reader struct{}

var _ ports.ListReader = Reader{}

// ReadList returns the raw text of the list file.
func (Reader) ReadList(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read list %s: %w", path, err)
	}
	return string(raw), nil
}
