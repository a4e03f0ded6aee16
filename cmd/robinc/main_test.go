package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo.robin")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture source: %v", err)
	}
	return path
}

func TestRobinc_CleanProgramExitsZero(t *testing.T) {
	input := writeSource(t, `program hi is begin write "x"; end`)
	status := Handler([]string{input}, map[string]string{})
	if status != 0 {
		t.Fatalf("expected exit status 0, got %d", status)
	}
}

func TestRobinc_FaultedProgramExitsNonZero(t *testing.T) {
	input := writeSource(t, `program p is var x,x : integer; begin end`)
	status := Handler([]string{input}, map[string]string{})
	if status == 0 {
		t.Fatalf("expected a non-zero exit status for a faulted program")
	}
}

func TestRobinc_MissingInputExitsNonZero(t *testing.T) {
	status := Handler(nil, map[string]string{})
	if status == 0 {
		t.Fatalf("expected a non-zero exit status with no input file")
	}
}

func TestRobinc_UnknownScannerRejected(t *testing.T) {
	input := writeSource(t, `program hi is begin write "x"; end`)
	status := Handler([]string{input}, map[string]string{"scanner": "Quantum"})
	if status == 0 {
		t.Fatalf("expected a non-zero exit status for an unknown scanner kind")
	}
}

func TestRobinc_LL1ParserSelectable(t *testing.T) {
	input := writeSource(t, `program hi is begin write "x"; end`)
	status := Handler([]string{input}, map[string]string{"parser": "LL1", "print-ast": "true", "print-tokens": "true"})
	if status != 0 {
		t.Fatalf("expected exit status 0, got %d", status)
	}
}
