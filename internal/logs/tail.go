package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	maxLineSize  = 1024 * 1024
	pollInterval = 250 * time.Millisecond
)

// TailOptions controls a Tail call. A negative Offset reads the last Limit
// lines; otherwise reading resumes at Offset. With Follow set, an empty read
// polls for up to Wait before returning.
type TailOptions struct {
	Offset int64
	Limit  int
	Follow bool
	Wait   time.Duration
}

// TailResult holds the lines read and the offset to resume from.
type TailResult struct {
	Lines  []string
	Offset int64
}

// Tail reads lines from the log file at path. A missing file yields no lines
// and a zero offset, so a follower can start before the first run of the day.
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	var (
		result TailResult
		err    error
	)
	if opts.Offset < 0 {
		result, err = readLast(path, opts.Limit)
	} else {
		result, err = readFrom(path, opts.Offset)
	}
	if err != nil || !opts.Follow || opts.Wait <= 0 || len(result.Lines) > 0 {
		return result, err
	}
	return poll(ctx, path, result.Offset, opts.Wait)
}

// readLast keeps the final limit lines in a ring buffer. limit <= 0 only
// reports the end offset.
func readLast(path string, limit int) (TailResult, error) {
	file, size, err := openLog(path)
	if err != nil || file == nil {
		return TailResult{}, err
	}
	defer file.Close()

	if limit <= 0 {
		return TailResult{Offset: size}, nil
	}

	ring := make([]string, 0, limit)
	next := 0
	scanner := newScanner(file)
	for scanner.Scan() {
		if len(ring) < limit {
			ring = append(ring, scanner.Text())
			continue
		}
		ring[next] = scanner.Text()
		next = (next + 1) % limit
	}
	if err := scanner.Err(); err != nil {
		return TailResult{}, fmt.Errorf("read log file: %w", err)
	}

	lines := append(ring[next:len(ring):len(ring)], ring[:next]...)
	offset, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return TailResult{}, fmt.Errorf("determine log offset: %w", err)
	}
	return TailResult{Lines: lines, Offset: offset}, nil
}

// readFrom reads every complete line after offset. An offset past the end
// means the file was rotated or truncated, so reading restarts at the end.
func readFrom(path string, offset int64) (TailResult, error) {
	file, size, err := openLog(path)
	if err != nil || file == nil {
		return TailResult{}, err
	}
	defer file.Close()

	if offset > size {
		offset = size
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return TailResult{}, fmt.Errorf("seek log file: %w", err)
	}

	var lines []string
	scanner := newScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return TailResult{}, fmt.Errorf("read log file: %w", err)
	}
	end, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return TailResult{}, fmt.Errorf("determine log offset: %w", err)
	}
	return TailResult{Lines: lines, Offset: end}, nil
}

func poll(ctx context.Context, path string, offset int64, wait time.Duration) (TailResult, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	result := TailResult{Offset: offset}
	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-timer.C:
			return result, nil
		case <-ticker.C:
		}
		next, err := readFrom(path, result.Offset)
		if err != nil {
			return result, err
		}
		result.Offset = next.Offset
		if len(next.Lines) > 0 {
			result.Lines = next.Lines
			return result, nil
		}
	}
}

// openLog returns a nil file without error when path does not exist.
func openLog(path string) (*os.File, int64, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		file.Close()
		return nil, 0, fmt.Errorf("log path %q is a directory", path)
	}
	return file, info.Size(), nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return scanner
}
