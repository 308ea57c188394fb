package main

import (
	"os"
	"testing"
)

func TestApplyServeFlags(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DEBUG", "false")

	cmd := newServeCmd()
	if err := cmd.Flags().Set("port", "9191"); err != nil {
		t.Fatalf("Failed to set port flag: %v", err)
	}
	if err := cmd.Flags().Set("debug", "true"); err != nil {
		t.Fatalf("Failed to set debug flag: %v", err)
	}

	if err := applyServeFlags(cmd, "9191", true); err != nil {
		t.Fatalf("applyServeFlags failed: %v", err)
	}
	if got := os.Getenv("PORT"); got != "9191" {
		t.Errorf("Expected PORT=9191, got %q", got)
	}
	if got := os.Getenv("DEBUG"); got != "true" {
		t.Errorf("Expected DEBUG=true, got %q", got)
	}
}

func TestApplyServeFlags_UnsetFlagsLeaveEnv(t *testing.T) {
	t.Setenv("PORT", "8080")

	if err := applyServeFlags(newServeCmd(), "9191", false); err != nil {
		t.Fatalf("applyServeFlags failed: %v", err)
	}
	if got := os.Getenv("PORT"); got != "8080" {
		t.Errorf("Expected PORT to stay 8080, got %q", got)
	}
}

func TestApplyServeFlags_SetenvError(t *testing.T) {
	t.Setenv("PORT", "8080")

	cmd := newServeCmd()
	if err := cmd.Flags().Set("port", "80\x0080"); err != nil {
		t.Fatalf("Failed to set port flag: %v", err)
	}

	if err := applyServeFlags(cmd, "80\x0080", false); err == nil {
		t.Error("Expected an error for a value the environment cannot hold")
	}
}
