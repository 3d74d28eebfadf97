// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 18, c.Len())

	kx2, ok := c.Lookup("elecraft-kx2")
	require.True(t, ok)
	assert.Equal(t, "Elecraft", kx2.Manufacturer)
	assert.Equal(t, "KX2", kx2.Name)
	assert.Equal(t, "B2", kx2.Revision)
	assert.Equal(t, "KX2_owners_man_B2.pdf", kx2.Filename)
	assert.False(t, kx2.ForceOCR)

	sw6b, ok := c.Lookup("venus-sw6b")
	require.True(t, ok)
	assert.True(t, sw6b.ForceOCR)

	_, ok = c.Lookup("kenwood-ts890")
	assert.False(t, ok)
}

func TestIDsSorted(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	ids := c.IDs()
	assert.True(t, sort.StringsAreSorted(ids))
	assert.Contains(t, ids, "bg2fx-fx4cr")
	assert.Equal(t, "elecraft-k1", c.Manuals()[0].ID, "Manuals keeps file order")
}

func TestByFilename(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	m, ok := c.ByFilename("FT-710_Manual.pdf")
	require.True(t, ok)
	assert.Equal(t, "yaesu-ft710", m.ID)

	_, ok = c.ByFilename("unknown.pdf")
	assert.False(t, ok)
}

func TestManualsReturnsCopy(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	ms := c.Manuals()
	ms[0].ID = "changed"
	assert.Equal(t, "elecraft-k1", c.Manuals()[0].ID)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"bad yaml", "manuals: [", "parsing catalog"},
		{"missing id", "manuals:\n  - filename: a.pdf\n", "missing id"},
		{"missing filename", "manuals:\n  - id: a\n", "missing filename"},
		{"duplicate", "manuals:\n  - id: a\n    filename: a.pdf\n  - id: a\n    filename: b.pdf\n", "duplicate id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := "manuals:\n  - id: test-radio\n    manufacturer: Test\n    name: TR-1\n    filename: tr1.pdf\n    force_ocr: true\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"test-radio"}, c.IDs())
	m, _ := c.Lookup("test-radio")
	assert.True(t, m.ForceOCR)

	def, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 18, def.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
