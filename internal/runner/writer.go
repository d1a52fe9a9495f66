package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DocExtension is the suffix appended to a source path to name its digest
// document.
const DocExtension = ".dg"

// AtomicWriter writes digest documents using the temp → rename pattern, so
// readers never observe a half-written document.
type AtomicWriter struct {
	outputDir string
	tempDir   string
}

// NewAtomicWriter creates a new atomic writer rooted at outputDir.
func NewAtomicWriter(outputDir string) (*AtomicWriter, error) {
	tempDir := filepath.Join(outputDir, ".tmp")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Clean up stale temp files from an interrupted run
	if err := os.RemoveAll(tempDir); err != nil {
		return nil, fmt.Errorf("failed to clean temp directory: %w", err)
	}
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &AtomicWriter{
		outputDir: outputDir,
		tempDir:   tempDir,
	}, nil
}

// DocPath returns where the document for a source file lives, mirroring the
// source tree under the output directory.
func (w *AtomicWriter) DocPath(sourcePath string) string {
	return filepath.Join(w.outputDir, filepath.FromSlash(sourcePath)+DocExtension)
}

// Exists reports whether a document already exists for the source file.
func (w *AtomicWriter) Exists(sourcePath string) bool {
	_, err := os.Stat(w.DocPath(sourcePath))
	return err == nil
}

// Read returns the persisted document for a source file.
func (w *AtomicWriter) Read(sourcePath string) ([]byte, error) {
	data, err := os.ReadFile(w.DocPath(sourcePath))
	if err != nil {
		return nil, fmt.Errorf("failed to read digest document: %w", err)
	}
	return data, nil
}

// Write writes one document atomically.
func (w *AtomicWriter) Write(sourcePath string, doc []byte) error {
	tempName := strings.ReplaceAll(sourcePath, "/", "__") + DocExtension
	tempPath := filepath.Join(w.tempDir, tempName)
	if err := os.WriteFile(tempPath, doc, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	finalPath := w.DocPath(sourcePath)
	if err := os.MkdirAll(filepath.Dir(finalPath), 0755); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to create document directory: %w", err)
	}

	// Rename to final location (atomic operation)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Cleanup removes the temp directory after a run.
func (w *AtomicWriter) Cleanup() {
	_ = os.RemoveAll(w.tempDir)
}
