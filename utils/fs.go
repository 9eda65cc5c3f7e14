package utils

import (
	"fmt"
	"os"
)

// CreateFolder creates folderPath (and any missing parents) if it does
// not already exist.
func CreateFolder(folderPath string) error {
	if err := os.MkdirAll(folderPath, 0755); err != nil {
		return fmt.Errorf("failed to create folder %q: %w", folderPath, err)
	}
	return nil
}
