// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/fieldguide/internal/skeleton"
	"github.com/pdiddy/fieldguide/pkg/types"
)

func TestPaths(t *testing.T) {
	tests := []struct {
		method   types.ExtractionMethod
		wantRaw  string
		wantSkel string
	}{
		{types.MethodNative, "out/elecraft-kx2_raw_text.txt", "out/elecraft-kx2_skeleton.json"},
		{types.MethodOCR, "out/elecraft-kx2_raw_text_ocr.txt", "out/elecraft-kx2_skeleton_ocr.json"},
	}
	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tt.wantRaw), RawTextPath("out", "elecraft-kx2", tt.method))
			assert.Equal(t, filepath.FromSlash(tt.wantSkel), SkeletonPath("out", "elecraft-kx2", tt.method))
		})
	}
}

func TestWriteRawText(t *testing.T) {
	pages := []types.Page{
		{Number: 1, Text: "  first page\n"},
		{Number: 2, Text: ""},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteRawText(&buf, pages))

	r := strings.Repeat("=", 60)
	want := "\n" + r + "\nPAGE 1\n" + r + "\n\n  first page\n" +
		"\n" + r + "\nPAGE 2\n" + r + "\n\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteRawText_NoPages(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRawText(&buf, nil))
	assert.Empty(t, buf.String())
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteRawText_WriteError(t *testing.T) {
	err := WriteRawText(failWriter{}, []types.Page{{Number: 1, Text: "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestSaveRawText_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "extracted")
	path := RawTextPath(dir, "yaesu-ft710", types.MethodNative)

	require.NoError(t, SaveRawText(path, []types.Page{{Number: 1, Text: "hello"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "hello"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWriteSkeleton_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	radio := types.RadioInfo{ID: "elecraft-kx2", Manufacturer: "Elecraft", Model: "KX2", Revision: "B2", PDFFilename: "KX2.pdf"}
	s := skeleton.Assemble(radio, []types.Page{{Number: 1}}, []types.TOCEntry{{Title: "Operation", Page: 3}}, types.MethodNative)
	path := SkeletonPath(dir, radio.ID, types.MethodNative)

	require.NoError(t, WriteSkeleton(path, s))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n  \"radio\": {"), "two-space indentation")
	assert.True(t, strings.HasSuffix(string(data), "}\n"))

	got, err := ReadSkeleton(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestWriteSkeleton_Overwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x_skeleton.json")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	s := skeleton.Assemble(types.RadioInfo{ID: "x"}, nil, nil, types.MethodOCR)
	require.NoError(t, WriteSkeleton(path, s))

	got, err := ReadSkeleton(path)
	require.NoError(t, err)
	assert.Equal(t, types.MethodOCR, got.ExtractionMethod)
}

func TestReadSkeleton_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadSkeleton(filepath.Join(dir, "missing.json"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = ReadSkeleton(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing skeleton")
}
