// Package merge reassembles a packet folder into one ordered feature set.
package merge

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"scenepack/internal/features"
	"scenepack/internal/logging"
	"scenepack/internal/packet"
	"scenepack/internal/services"
)

// Result is the merged content of one packet folder.
type Result struct {
	Set     features.FeatureSet
	Packets int
	Corrupt int
}

// ListPackets returns the packet files of dir in numeric index order.
// Non-packet entries such as the completion marker are ignored.
func ListPackets(dir string) ([]packet.File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrMissingInputDirectory, "", "list packets", dir, err)
		}
		return nil, services.Wrap(services.ErrIOFailure, "", "list packets", dir, err)
	}
	files := make([]packet.File, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		index, ok := packet.ParseIndex(entry.Name())
		if !ok {
			continue
		}
		files = append(files, packet.File{Path: filepath.Join(dir, entry.Name()), Index: index})
	}
	packet.SortFiles(files)
	return files, nil
}

// Folder merges every packet of dir in numeric order. Corrupt packets are
// logged once each and skipped. A folder yielding no records returns the
// empty result together with services.ErrEmptyFeatureSet.
func Folder(ctx context.Context, dir string, logger *slog.Logger) (Result, error) {
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "merge"))

	files, err := ListPackets(dir)
	if err != nil {
		return Result{}, err
	}

	var result Result
	sampler := logging.NewProgressSampler(25)
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		name := filepath.Base(file.Path)
		data, err := os.ReadFile(file.Path)
		if err != nil {
			return result, services.Wrap(services.ErrIOFailure, "", "read packet", name, err)
		}
		records, err := packet.Decode(data)
		if err != nil {
			result.Corrupt++
			logging.WarnWithContext(logger, "skipping corrupt packet", "corrupt_packet",
				logging.Packet(name),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "delete the folder's completion marker and re-run packetize"),
				logging.String(logging.FieldImpact, fmt.Sprintf("frames of %s are missing from the merged set", name)),
			)
			continue
		}
		result.Packets++
		result.Set = append(result.Set, records...)

		percent := logging.Percent(i+1, len(files))
		if sampler.ShouldLog(percent, "merge") {
			logger.Debug("merge progress",
				logging.Float64(logging.FieldProgressPercent, features.Round(percent, 1)),
				logging.Int("records", len(result.Set)),
			)
		}
	}

	if len(result.Set) == 0 {
		return result, services.Wrap(services.ErrEmptyFeatureSet, "", "merge packets", dir, nil)
	}

	logger.Debug("packets merged",
		logging.Int("packets", result.Packets),
		logging.Int("corrupt_packets", result.Corrupt),
		logging.Int("records", len(result.Set)),
	)
	return result, nil
}
