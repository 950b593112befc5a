package services_test

import (
	"context"
	"testing"

	"scenepack/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithMovie(ctx, "MovieShots12")
	ctx = services.WithStage(ctx, "shots")
	ctx = services.WithRunID(ctx, "run-123")

	if movie, ok := services.MovieFromContext(ctx); !ok || movie != "MovieShots12" {
		t.Fatalf("unexpected movie: %v %v", movie, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "shots" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RunIDFromContext(ctx); !ok || rid != "run-123" {
		t.Fatalf("unexpected run id: %v %v", rid, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.MovieFromContext(ctx); ok {
		t.Fatal("expected no movie value")
	}
}
