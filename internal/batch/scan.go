package batch

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// imageExtensions is the fixed set of recognized photo formats.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".bmp":  {},
	".tiff": {},
}

// ScanImages walks root recursively and returns every image file in
// deterministic (lexical walk) order. Extension matching is case-insensitive.
func ScanImages(root string) ([]string, error) {
	var images []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := imageExtensions[ext]; ok {
			images = append(images, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan images: %w", err)
	}
	return images, nil
}
