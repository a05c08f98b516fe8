package batch_engine

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/markdave123-py/uloader/internal/core/loader"
	"github.com/markdave123-py/uloader/internal/models"
)

// ErrInvalidSource marks resolution failures: the descriptor points at
// something that does not exist or cannot be read. Scoped to one descriptor.
var ErrInvalidSource = errors.New("invalid source")

// ResolvedItem is one concrete unit of work after descriptor expansion:
// a single file path or a single URL.
type ResolvedItem struct {
	Location string
	IsURL    bool
}

// Resolve expands a descriptor into its ordered list of concrete items.
// Expansion is deterministic: the same descriptor over an unchanged
// filesystem yields the same ordered list. An empty list is not an error.
func Resolve(desc *models.SourceDescriptor) ([]ResolvedItem, error) {
	switch desc.Kind {
	case models.SourceFile:
		info, err := os.Stat(desc.Location)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSource, desc.Location, err)
		}
		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("%w: %s is not a regular file", ErrInvalidSource, desc.Location)
		}
		return []ResolvedItem{{Location: desc.Location}}, nil

	case models.SourceDirectory:
		return resolveDirectory(desc)

	case models.SourceURL:
		// No reachability check here; fetch failures surface as item failures.
		return []ResolvedItem{{Location: desc.Location, IsURL: true}}, nil

	case models.SourceURLList:
		return resolveURLList(desc.Location)

	default:
		return nil, fmt.Errorf("%w: unknown source type %q", ErrInvalidSource, desc.Kind)
	}
}

func resolveDirectory(desc *models.SourceDescriptor) ([]ResolvedItem, error) {
	info, err := os.Stat(desc.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSource, desc.Location, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidSource, desc.Location)
	}

	var paths []string
	root := filepath.Clean(desc.Location)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if !desc.Recursive && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if !matches(path, desc) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walk %s: %v", ErrInvalidSource, desc.Location, err)
	}

	sort.Strings(paths)
	items := make([]ResolvedItem, 0, len(paths))
	for _, p := range paths {
		items = append(items, ResolvedItem{Location: p})
	}
	return items, nil
}

// matches applies include patterns (must match at least one, if any are set)
// then exclude patterns (matching any drops the file). Patterns match the
// basename unless they contain a path separator. Without include patterns
// only files the collaborator supports are picked up.
func matches(path string, desc *models.SourceDescriptor) bool {
	if len(desc.IncludePatterns) == 0 {
		if !loader.Supported(path) {
			return false
		}
	} else {
		included := false
		for _, pat := range desc.IncludePatterns {
			if globMatch(pat, path) {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}
	for _, pat := range desc.ExcludePatterns {
		if globMatch(pat, path) {
			return false
		}
	}
	return true
}

func globMatch(pattern, path string) bool {
	target := filepath.Base(path)
	if strings.ContainsRune(pattern, filepath.Separator) {
		target = path
	}
	ok, err := filepath.Match(pattern, target)
	return err == nil && ok
}

// resolveURLList reads one URL per line; blank lines and #-comments are
// skipped.
func resolveURLList(path string) ([]ResolvedItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: url list %s: %v", ErrInvalidSource, path, err)
	}
	defer f.Close()

	var items []ResolvedItem
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		items = append(items, ResolvedItem{Location: line, IsURL: true})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read url list %s: %v", ErrInvalidSource, path, err)
	}
	return items, nil
}
