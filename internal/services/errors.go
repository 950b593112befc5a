package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingInputDirectory aborts the invoking stage for the whole batch.
	ErrMissingInputDirectory = errors.New("missing input directory")
	// ErrCorruptPacket marks a packet that could not be decoded; merges skip it.
	ErrCorruptPacket = errors.New("corrupt packet")
	// ErrDimensionMismatch marks a movie whose frame vectors differ in length.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrEmptyFeatureSet marks a movie that yielded no frame records.
	ErrEmptyFeatureSet = errors.New("empty feature set")
	// ErrIOFailure marks a failed write; fatal for the affected movie only.
	ErrIOFailure = errors.New("io failure")
	// ErrConfiguration marks a configuration problem for a stage.
	ErrConfiguration = errors.New("configuration error")
)

// Kind is the classification recorded for a failed unit of work.
type Kind string

const (
	KindNone              Kind = ""
	KindMissingInput      Kind = "missing_input"
	KindCorruptPacket     Kind = "corrupt_packet"
	KindDimensionMismatch Kind = "dimension_mismatch"
	KindEmptyFeatureSet   Kind = "empty_feature_set"
	KindIOFailure         Kind = "io_failure"
	KindConfiguration     Kind = "configuration"
	KindCanceled          Kind = "canceled"
	KindUnknown           Kind = "unknown"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrIOFailure
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps an error to the Kind persisted in the ledger and run summary.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrMissingInputDirectory):
		return KindMissingInput
	case errors.Is(err, ErrCorruptPacket):
		return KindCorruptPacket
	case errors.Is(err, ErrDimensionMismatch):
		return KindDimensionMismatch
	case errors.Is(err, ErrEmptyFeatureSet):
		return KindEmptyFeatureSet
	case errors.Is(err, ErrIOFailure):
		return KindIOFailure
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindUnknown
	}
}

// Recoverable reports whether a movie-level error lets the batch continue.
// Only stage-level preconditions are fatal to a run.
func Recoverable(err error) bool {
	switch Classify(err) {
	case KindMissingInput, KindConfiguration, KindCanceled:
		return false
	default:
		return true
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
