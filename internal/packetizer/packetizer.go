package packetizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"scenepack/internal/features"
	"scenepack/internal/fileutil"
	"scenepack/internal/logging"
	"scenepack/internal/packet"
	"scenepack/internal/services"
)

// Stats summarizes what a packetizer wrote.
type Stats struct {
	Records int
	Packets int
	Skipped int
}

// Packetizer buffers records and flushes them as packet files.
type Packetizer struct {
	dir    string
	size   int
	stage  string
	logger *slog.Logger

	buf    []features.FrameFeature
	next   int
	stats  Stats
	closed bool
}

// New creates a packetizer writing into dir, creating it when needed.
// size must be positive.
func New(dir string, size int, stage string, logger *slog.Logger) (*Packetizer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: packet size must be positive, got %d", services.ErrConfiguration, size)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrIOFailure, stage, "create output", dir, err)
	}
	return &Packetizer{
		dir:    dir,
		size:   size,
		stage:  stage,
		logger: logger,
		buf:    make([]features.FrameFeature, 0, size),
		next:   1,
	}, nil
}

// Add appends a record and flushes a packet once the buffer is full.
func (p *Packetizer) Add(rec features.FrameFeature) error {
	if p.closed {
		return errors.New("packetizer closed")
	}
	p.buf = append(p.buf, rec)
	p.stats.Records++
	if len(p.buf) >= p.size {
		return p.flush()
	}
	return nil
}

// Close flushes the remaining records and marks the folder complete.
func (p *Packetizer) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if len(p.buf) > 0 {
		if err := p.flush(); err != nil {
			return err
		}
	}
	if err := fileutil.MarkComplete(p.dir); err != nil {
		return services.Wrap(services.ErrIOFailure, p.stage, "mark complete", p.dir, err)
	}
	p.logger.Debug("packet folder complete",
		logging.String("output_dir", p.dir),
		logging.Int("packets", p.stats.Packets),
		logging.Int("records", p.stats.Records),
	)
	return nil
}

// Stats reports the records and packets written so far.
func (p *Packetizer) Stats() Stats {
	return p.stats
}

func (p *Packetizer) flush() error {
	data, err := packet.Encode(p.buf)
	if err != nil {
		return services.Wrap(services.ErrIOFailure, p.stage, "encode packet", packet.FileName(p.next), err)
	}
	name := packet.FileName(p.next)
	if err := fileutil.WriteFileAtomic(filepath.Join(p.dir, name), data, 0o644); err != nil {
		return services.Wrap(services.ErrIOFailure, p.stage, "write packet", name, err)
	}
	p.logger.Debug("packet saved",
		logging.Packet(name),
		logging.Int("records", len(p.buf)),
	)
	p.stats.Packets++
	p.next++
	p.buf = p.buf[:0]
	return nil
}

// Drain feeds every record of src through a new packetizer writing into dir
// and closes it. Corrupt source records are logged and skipped; any other
// source or write error aborts the folder.
func Drain(ctx context.Context, dir string, size int, src features.Source, stage string, logger *slog.Logger) (Stats, error) {
	p, err := New(dir, size, stage, logger)
	if err != nil {
		return Stats{}, err
	}
	for {
		if err := ctx.Err(); err != nil {
			return p.Stats(), err
		}
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, services.ErrCorruptPacket) {
			p.stats.Skipped++
			logging.WarnWithContext(p.logger, "skipping unreadable frame record", "corrupt_record",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "re-run the feature extractor for this frame"),
				logging.String(logging.FieldImpact, "frame missing from packets"),
			)
			continue
		}
		if err != nil {
			return p.Stats(), fmt.Errorf("read record: %w", err)
		}
		if err := p.Add(rec); err != nil {
			return p.Stats(), err
		}
	}
	if err := p.Close(); err != nil {
		return p.Stats(), err
	}
	return p.Stats(), nil
}

// WriteSet persists an in-memory feature set through a packetizer.
func WriteSet(ctx context.Context, dir string, size int, set features.FeatureSet, stage string, logger *slog.Logger) (Stats, error) {
	return Drain(ctx, dir, size, features.NewSliceSource(set), stage, logger)
}
