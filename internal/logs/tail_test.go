package logs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"scenepack/internal/logs"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenepack-20260101.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailLastLines(t *testing.T) {
	path := writeLog(t, "a\nb\nc\nd\ne\n")

	cases := []struct {
		limit int
		want  []string
	}{
		{limit: 2, want: []string{"d", "e"}},
		{limit: 3, want: []string{"c", "d", "e"}},
		{limit: 10, want: []string{"a", "b", "c", "d", "e"}},
		{limit: 0, want: nil},
	}
	for _, tc := range cases {
		result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: tc.limit})
		if err != nil {
			t.Fatalf("limit %d: %v", tc.limit, err)
		}
		if !slices.Equal(result.Lines, tc.want) {
			t.Fatalf("limit %d: lines = %#v, want %#v", tc.limit, result.Lines, tc.want)
		}
		if result.Offset != 10 {
			t.Fatalf("limit %d: offset = %d, want 10", tc.limit, result.Offset)
		}
	}
}

func TestTailMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenepack-20260101.log")
	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 5})
	if err != nil {
		t.Fatalf("tail missing file: %v", err)
	}
	if len(result.Lines) != 0 || result.Offset != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestTailResumesFromOffset(t *testing.T) {
	path := writeLog(t, "first\nsecond\n")

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: 6})
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if !slices.Equal(result.Lines, []string{"second"}) {
		t.Fatalf("lines = %#v", result.Lines)
	}

	// An offset beyond the end is clamped so a truncated file does not error.
	result, err = logs.Tail(context.Background(), path, logs.TailOptions{Offset: 1000})
	if err != nil {
		t.Fatalf("tail past end: %v", err)
	}
	if len(result.Lines) != 0 || result.Offset != 13 {
		t.Fatalf("unexpected result past end: %+v", result)
	}
}

func TestTailFollowWaitsForNewLines(t *testing.T) {
	path := writeLog(t, "start\n")
	ctx := context.Background()

	result, err := logs.Tail(ctx, path, logs.TailOptions{Offset: -1, Limit: 1})
	if err != nil {
		t.Fatalf("initial tail: %v", err)
	}

	type outcome struct {
		result logs.TailResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := logs.Tail(ctx, path, logs.TailOptions{Offset: result.Offset, Follow: true, Wait: 5 * time.Second})
		done <- outcome{res, err}
	}()

	time.Sleep(100 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	select {
	case got := <-done:
		if got.err != nil {
			t.Fatalf("follow tail error: %v", got.err)
		}
		if !slices.Equal(got.result.Lines, []string{"later"}) {
			t.Fatalf("unexpected follow lines: %#v", got.result.Lines)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("tail follow did not return")
	}
}

func TestTailFollowStopsOnCancel(t *testing.T) {
	path := writeLog(t, "only\n")
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	result, err := logs.Tail(ctx, path, logs.TailOptions{Offset: 5, Follow: true, Wait: time.Minute})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if result.Offset != 5 {
		t.Fatalf("offset = %d, want 5", result.Offset)
	}
}
