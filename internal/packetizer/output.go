package packetizer

import (
	"fmt"
	"os"
	"path/filepath"

	"scenepack/internal/fileutil"
	"scenepack/internal/packet"
	"scenepack/internal/services"
	"scenepack/internal/textutil"
)

// SkipReason explains why PrepareOutput declined a folder.
type SkipReason string

const (
	SkipNone             SkipReason = ""
	SkipAlreadyProcessed SkipReason = "already_processed"
	SkipLegacyOutput     SkipReason = "legacy_output_present"
)

// Policy controls how existing output folders are treated.
type Policy struct {
	// LegacySkip treats any existing output folder as done, marker or not.
	LegacySkip bool
}

// Output describes the output folder prepared for one source folder.
type Output struct {
	Name    string
	Dir     string
	Skipped bool
	Reason  SkipReason
	// Resumed is set when an interrupted folder was cleared for rebuilding.
	Resumed bool
}

// OutputDir returns the normalized output folder for a source folder.
func OutputDir(root, source string) (string, string, error) {
	name := textutil.NormalizeFolderName(source)
	if name == "" {
		return "", "", fmt.Errorf("%w: cannot derive an output name from %q", services.ErrConfiguration, source)
	}
	return name, filepath.Join(root, name), nil
}

// Inspect applies the resumability rule for source under root without
// touching the filesystem. Output.Skipped reports a finished folder.
func Inspect(root, source string, policy Policy) (Output, bool, error) {
	name, dir, err := OutputDir(root, source)
	if err != nil {
		return Output{}, false, err
	}
	out := Output{Name: name, Dir: dir}

	exists, err := fileutil.Exists(dir)
	if err != nil {
		return out, false, services.Wrap(services.ErrIOFailure, "", "stat output", dir, err)
	}
	if !exists {
		return out, false, nil
	}
	switch {
	case fileutil.IsComplete(dir):
		out.Skipped = true
		out.Reason = SkipAlreadyProcessed
	case policy.LegacySkip:
		out.Skipped = true
		out.Reason = SkipLegacyOutput
	}
	return out, true, nil
}

// PrepareOutput applies the resumability rule for source under root. A
// skipped folder receives no writes; an interrupted one is cleared.
func PrepareOutput(root, source string, policy Policy) (Output, error) {
	out, exists, err := Inspect(root, source, policy)
	if err != nil || out.Skipped {
		return out, err
	}
	if exists {
		if err := clearPartial(out.Dir); err != nil {
			return out, services.Wrap(services.ErrIOFailure, "", "clear interrupted output", out.Dir, err)
		}
		out.Resumed = true
		return out, nil
	}

	if err := os.MkdirAll(out.Dir, 0o755); err != nil {
		return out, services.Wrap(services.ErrIOFailure, "", "create output", out.Dir, err)
	}
	return out, nil
}

// clearPartial removes packets and in-flight temp files left by an
// interrupted run. Other files are left untouched.
func clearPartial(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if _, ok := packet.ParseIndex(name); !ok && !fileutil.IsTemp(name) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}
