package ecmascript

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LibraryProvider resolves a library name into source.
type LibraryProvider func(ctx context.Context, name string) (string, error)

// DefaultLibraryProvider reads libraries relative to the current
// directory.
var DefaultLibraryProvider = MakeFileLibraryProvider(".")

// MakeFileLibraryProvider makes a LibraryProvider that reads files
// in the given directory.  Names can be plain relative paths or
// "file://" URLs.  Names that escape the directory are rejected.
func MakeFileLibraryProvider(dir string) LibraryProvider {
	return func(ctx context.Context, name string) (string, error) {
		filename := name
		if parts := strings.SplitN(name, "://", 2); len(parts) == 2 {
			if parts[0] != "file" {
				return "", fmt.Errorf("unknown protocol '%s'", parts[0])
			}
			filename = parts[1]
		}
		if !filepath.IsLocal(filename) {
			return "", fmt.Errorf("bad library name '%s'", name)
		}
		bs, err := os.ReadFile(filepath.Join(dir, filename))
		if err != nil {
			return "", err
		}
		return string(bs), nil
	}
}

// MakeMapLibraryProvider makes a LibraryProvider backed by a map.
func MakeMapLibraryProvider(srcs map[string]string) LibraryProvider {
	return func(ctx context.Context, name string) (string, error) {
		src, have := srcs[name]
		if !have {
			return "", fmt.Errorf("undefined library '%s'", name)
		}
		return src, nil
	}
}
