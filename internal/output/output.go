// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output persists extraction results: the per-page raw text dump
// and the skeleton JSON document.
package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/fieldguide/pkg/types"
)

var rule = strings.Repeat("=", 60)

func suffix(method types.ExtractionMethod) string {
	if method == types.MethodOCR {
		return "_ocr"
	}
	return ""
}

// RawTextPath returns where the raw text dump for radioID lives.
func RawTextPath(dir, radioID string, method types.ExtractionMethod) string {
	return filepath.Join(dir, radioID+"_raw_text"+suffix(method)+".txt")
}

// SkeletonPath returns where the skeleton for radioID lives.
func SkeletonPath(dir, radioID string, method types.ExtractionMethod) string {
	return filepath.Join(dir, radioID+"_skeleton"+suffix(method)+".json")
}

// WriteRawText writes every page preceded by a ruled PAGE header. Page text
// is written verbatim.
func WriteRawText(w io.Writer, pages []types.Page) error {
	bw := bufio.NewWriter(w)
	for _, p := range pages {
		fmt.Fprintf(bw, "\n%s\nPAGE %d\n%s\n\n", rule, p.Number, rule)
		bw.WriteString(p.Text)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing raw text: %w", err)
	}
	return nil
}

// SaveRawText writes the raw text dump to path.
func SaveRawText(path string, pages []types.Page) error {
	var buf bytes.Buffer
	if err := WriteRawText(&buf, pages); err != nil {
		return err
	}
	return WriteFile(path, buf.Bytes())
}

// MarshalSkeleton renders s as 2-space indented JSON with a trailing newline.
func MarshalSkeleton(s types.Skeleton) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling skeleton: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteSkeleton writes s to path as indented JSON.
func WriteSkeleton(path string, s types.Skeleton) error {
	data, err := MarshalSkeleton(s)
	if err != nil {
		return err
	}
	return WriteFile(path, data)
}

// ReadSkeleton loads a previously written skeleton.
func ReadSkeleton(path string) (types.Skeleton, error) {
	var s types.Skeleton
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("reading skeleton: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing skeleton %s: %w", path, err)
	}
	return s, nil
}

// WriteFile replaces path atomically through a temp file in the same
// directory, creating the directory when needed.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".fieldguide-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", filepath.Base(path), writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
