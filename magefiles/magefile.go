//go:build mage

// Package main contains Mage build targets for fieldguide developer tooling.
package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/pdiddy/fieldguide/internal/catalog"
)

// projectDirs lists the working directories the pipeline expects.
var projectDirs = []string{
	"content/pdfs",
	"content/extracted",
	"content/extracted/index",
}

// Init creates the project directory structure for the pipeline.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Project directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "fieldguide"
	cmdPkg  = "./cmd/fieldguide"

	// buildTags enables the SQLite FTS5 module the extraction ledger uses.
	buildTags = "sqlite_fts5"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-tags", buildTags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	if err := sh.RunV("go", "test", "-tags", buildTags, "./..."); err != nil {
		return fmt.Errorf("go test: %w", err)
	}
	return nil
}

// Extract builds the CLI and extracts every catalog manual found in content/pdfs.
func Extract() error {
	mg.Deps(Init, Build)
	return sh.RunV(filepath.Join(binDir, binName), "extract", "--all", "--record")
}

// Check builds the CLI and prints the extraction method report.
func Check() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "check")
}

// Stats prints non-blank Go lines per package, split into production and
// test code, followed by the catalog size and the skeletons extracted so far.
func Stats() error {
	pkgs, err := countGoLines(".")
	if err != nil {
		return err
	}
	dirs := make([]string, 0, len(pkgs))
	for dir := range pkgs {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	var prod, test int
	fmt.Printf("%-32s %8s %8s\n", "Package", "Prod", "Test")
	for _, dir := range dirs {
		c := pkgs[dir]
		fmt.Printf("%-32s %8d %8d\n", dir, c.prod, c.test)
		prod += c.prod
		test += c.test
	}
	fmt.Printf("%-32s %8d %8d\n", "total", prod, test)

	cat, err := catalog.Default()
	if err != nil {
		return err
	}
	skeletons, err := filepath.Glob(filepath.Join("content", "extracted", "*_skeleton*.json"))
	if err != nil {
		return err
	}
	fmt.Printf("\nCatalog manuals:     %d\n", cat.Len())
	fmt.Printf("Skeletons extracted: %d\n", len(skeletons))
	return nil
}

type lineCount struct {
	prod, test int
}

// countGoLines counts non-blank lines of Go files per directory, skipping
// hidden and underscore-prefixed trees.
func countGoLines(root string) (map[string]lineCount, error) {
	counts := map[string]lineCount{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(name) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := 0
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) != "" {
				n++
			}
		}
		dir := filepath.Dir(path)
		c := counts[dir]
		if strings.HasSuffix(name, "_test.go") {
			c.test += n
		} else {
			c.prod += n
		}
		counts[dir] = c
		return nil
	})
	return counts, err
}
