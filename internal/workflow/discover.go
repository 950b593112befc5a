package workflow

import (
	"os"
	"path/filepath"
	"strings"

	"scenepack/internal/services"
	"scenepack/internal/textutil"
)

// Folder is one movie folder found under an input root.
type Folder struct {
	// Source is the folder's name as found on disk.
	Source string
	Path   string
	// Name is the normalized name used for outputs and the ledger.
	Name string
}

// Discovery splits the folders of an input root into work and rejects.
type Discovery struct {
	Folders []Folder
	// Rejected folders are reported as skipped outcomes without running.
	Rejected []Outcome
}

// Discover lists the movie folders of root in lexical order. Hidden entries
// and plain files are ignored. When two folders normalize to the same name,
// the later one is rejected as a collision.
func Discover(root string) (Discovery, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return Discovery{}, services.Wrap(services.ErrMissingInputDirectory, "", "discover", root, err)
		}
		return Discovery{}, services.Wrap(services.ErrIOFailure, "", "discover", root, err)
	}

	var result Discovery
	claimed := make(map[string]string, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		source := entry.Name()
		name := textutil.NormalizeFolderName(source)
		if name == "" {
			result.Rejected = append(result.Rejected, Outcome{
				Source: source,
				Status: OutcomeSkipped,
				Reason: ReasonUnnamed,
			})
			continue
		}
		if first, ok := claimed[name]; ok {
			result.Rejected = append(result.Rejected, Outcome{
				Movie:  name,
				Source: source,
				Status: OutcomeSkipped,
				Reason: ReasonNameCollision,
				Error:  "collides with " + first,
			})
			continue
		}
		claimed[name] = source
		result.Folders = append(result.Folders, Folder{
			Source: source,
			Path:   filepath.Join(root, source),
			Name:   name,
		})
	}
	return result, nil
}
