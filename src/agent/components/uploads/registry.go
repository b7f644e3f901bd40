// Package uploads resolves plan placeholder references to the binary files
// submitted with a request. The planning model only ever sees filenames, so
// media actions targeting an upload use an upload:<index> or
// upload:<filename> reference instead of a URL.
package uploads

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/verisight-labs/trustagent/src/agent/types"
)

const placeholderPrefix = "upload:"

// ErrNotFound reports a reference that matched no registered file. Distinct
// from an empty registry so the dispatcher can name the unresolved ref.
var ErrNotFound = errors.New("uploads: file not found")

// Registry holds a request's uploaded files. Read-only after construction;
// concurrent resolves are safe.
type Registry struct {
	files []types.UploadedFile
}

func NewRegistry(files []types.UploadedFile) *Registry {
	return &Registry{files: files}
}

func (r *Registry) Len() int { return len(r.files) }

// IsPlaceholder reports whether ref is an upload placeholder rather than a
// URL.
func IsPlaceholder(ref string) bool {
	return strings.HasPrefix(strings.TrimSpace(ref), placeholderPrefix)
}

// Resolve maps an upload:<index> or upload:<filename> reference to its file.
// Integer suffixes resolve by position; anything else matches filenames in
// registration order.
func (r *Registry) Resolve(ref string) (types.UploadedFile, error) {
	suffix := strings.TrimPrefix(strings.TrimSpace(ref), placeholderPrefix)
	if idx, err := strconv.Atoi(suffix); err == nil {
		if idx < 0 || idx >= len(r.files) {
			return types.UploadedFile{}, fmt.Errorf("%w: %q", ErrNotFound, suffix)
		}
		return r.files[idx], nil
	}
	for _, f := range r.files {
		if f.Filename == suffix {
			return f, nil
		}
	}
	return types.UploadedFile{}, fmt.Errorf("%w: %q", ErrNotFound, suffix)
}
