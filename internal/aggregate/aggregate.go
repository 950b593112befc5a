// Package aggregate reduces a movie's merged feature set to per-dimension
// statistics and persists them as one JSON document per movie.
package aggregate

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"scenepack/internal/config"
	"scenepack/internal/features"
	"scenepack/internal/fileutil"
	"scenepack/internal/services"
	"scenepack/internal/textutil"
)

// Places is the rounding applied to every aggregated value.
const Places = 6

// Result holds the selected statistics. Unselected statistics are nil and
// left out of the encoded file.
type Result struct {
	Max  []float64 `json:"Max,omitempty"`
	Mean []float64 `json:"Mean,omitempty"`
}

// Compute returns the element-wise statistics named in methods across every
// frame of set. An empty set (or one without values) is ErrEmptyFeatureSet;
// frames of differing length are ErrDimensionMismatch.
func Compute(set features.FeatureSet, methods []string) (Result, error) {
	if len(set) == 0 {
		return Result{}, fmt.Errorf("%w: no frames to aggregate", services.ErrEmptyFeatureSet)
	}
	dim, err := set.Dimension()
	if err != nil {
		return Result{}, err
	}
	if dim == 0 {
		return Result{}, fmt.Errorf("%w: frames carry no feature values", services.ErrEmptyFeatureSet)
	}

	wantMax, wantMean := false, false
	for _, method := range methods {
		switch method {
		case config.MethodMax:
			wantMax = true
		case config.MethodMean:
			wantMean = true
		default:
			return Result{}, fmt.Errorf("%w: unsupported aggregation method %q", services.ErrConfiguration, method)
		}
	}

	maxes := make([]float64, dim)
	sums := make([]float64, dim)
	for i := range maxes {
		maxes[i] = math.Inf(-1)
	}
	for _, frame := range set {
		for i, v := range frame.Features {
			x := float64(v)
			if x > maxes[i] {
				maxes[i] = x
			}
			sums[i] += x
		}
	}

	var result Result
	if wantMax {
		result.Max = make([]float64, dim)
		for i, m := range maxes {
			result.Max[i] = features.Round(m, Places)
		}
	}
	if wantMean {
		result.Mean = make([]float64, dim)
		n := float64(len(set))
		for i, s := range sums {
			result.Mean[i] = features.Round(s/n, Places)
		}
	}
	return result, nil
}

// OutputPath returns <root>/<name>.json for a normalized movie name.
func OutputPath(root, name string) string {
	return filepath.Join(root, textutil.SanitizeFileName(name)+".json")
}

// Exists reports whether the aggregated file for name is already present.
func Exists(root, name string) (bool, error) {
	return fileutil.Exists(OutputPath(root, name))
}

// WriteFile persists result atomically at OutputPath. An existing file is
// left untouched and reported as skipped.
func WriteFile(root, name string, result Result) (string, bool, error) {
	path := OutputPath(root, name)
	exists, err := fileutil.Exists(path)
	if err != nil {
		return path, false, services.Wrap(services.ErrIOFailure, config.StageAggregate, "stat output", path, err)
	}
	if exists {
		return path, true, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return path, false, services.Wrap(services.ErrIOFailure, config.StageAggregate, "encode aggregate", name, err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return path, false, services.Wrap(services.ErrIOFailure, config.StageAggregate, "create output root", root, err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return path, false, services.Wrap(services.ErrIOFailure, config.StageAggregate, "write aggregate", path, err)
	}
	return path, false, nil
}

// ReadFile loads a previously written aggregate.
func ReadFile(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return result, nil
}
