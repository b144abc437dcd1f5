package services_test

import (
	"context"
	"testing"

	"taxonsort/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithImagePath(ctx, "/photos/IMG_001.JPG")
	ctx = services.WithStage(ctx, "classifying")
	ctx = services.WithRunID(ctx, "run-123")

	if path, ok := services.ImagePathFromContext(ctx); !ok || path != "/photos/IMG_001.JPG" {
		t.Fatalf("unexpected image path: %v %v", path, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "classifying" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
