package pagefiles

import (
	"path"
	"strings"
)

// FindPageFile returns the page-specific file for pageID among files, or
// nil when the page has no file of that type.
func FindPageFile(files []*PageFile, pageID string) *PageFile {
	for _, f := range files {
		if IsDefaultFile(f.FilePath) {
			continue
		}
		if PageID(f.FilePath) == pageID {
			return f
		}
	}
	return nil
}

// FindDefaultFiles returns all shared `_default.*` files among files, in
// discovery order.
func FindDefaultFiles(files []*PageFile) []*PageFile {
	var defaults []*PageFile
	for _, f := range files {
		if IsDefaultFile(f.FilePath) {
			defaults = append(defaults, f)
		}
	}
	return defaults
}

// FindDefaultFile selects the default file closest to pageID by filesystem
// proximity: ascending directory distance between the default file's
// directory and the page's directory, ties broken by discovery order.
// Returns nil when no default file exists.
func FindDefaultFile(files []*PageFile, pageID string) *PageFile {
	var best *PageFile
	bestDistance := -1
	for _, f := range FindDefaultFiles(files) {
		d := directoryDistance(path.Dir(pageID), path.Dir(f.FilePath))
		if best == nil || d < bestDistance {
			best = f
			bestDistance = d
		}
	}
	return best
}

// directoryDistance counts the path segments separating two directories:
// the segments from each directory up to their common ancestor, summed.
// Identical directories have distance 0; a direct ancestor of pageDir has
// distance equal to the number of levels between them.
func directoryDistance(pageDir, fileDir string) int {
	pageSegs := splitSegments(pageDir)
	fileSegs := splitSegments(fileDir)

	common := 0
	for common < len(pageSegs) && common < len(fileSegs) && pageSegs[common] == fileSegs[common] {
		common++
	}
	return (len(pageSegs) - common) + (len(fileSegs) - common)
}

func splitSegments(dir string) []string {
	dir = strings.Trim(dir, "/")
	if dir == "" || dir == "." {
		return nil
	}
	return strings.Split(dir, "/")
}
