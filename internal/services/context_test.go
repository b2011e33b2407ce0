package services_test

import (
	"context"
	"testing"

	"ydkpoints/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithSection(ctx, "main")

	if rid, ok := services.RunIDFromContext(ctx); !ok || rid != "run-123" {
		t.Fatalf("unexpected run id: %v %v", rid, ok)
	}
	if section, ok := services.SectionFromContext(ctx); !ok || section != "main" {
		t.Fatalf("unexpected section: %v %v", section, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	if services.WithRunID(ctx, "") != ctx {
		t.Fatal("empty run id should return the same context")
	}
	ctx = services.WithSection(ctx, "")
	if _, ok := services.SectionFromContext(ctx); ok {
		t.Fatal("expected no section on blank value")
	}
}
