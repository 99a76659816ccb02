package artifacts

import (
	"os"
	"path/filepath"
)

// Resolver maps artifact identifiers to something displayable. When Dir
// is set, identifiers are file names under Dir and missing files are
// reported through OnError instead of failing the caller.
type Resolver struct {
	Dir     string
	OnError func(artifact string, err error)
}

// Resolve returns the display target for artifact and whether it can be
// shown.
func (r Resolver) Resolve(artifact string) (string, bool) {
	if artifact == "" {
		return "", false
	}
	if r.Dir == "" {
		return artifact, true
	}
	path := filepath.Join(r.Dir, artifact)
	if _, err := os.Stat(path); err != nil {
		if r.OnError != nil {
			r.OnError(artifact, err)
		}
		return "", false
	}
	return path, true
}
