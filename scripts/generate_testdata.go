//go:build ignore

// generate_testdata.go writes synthetic passenger datasets for benchmarking
// and manual testing.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	testdata/benchmark/small.csv   (100 passengers)
//	testdata/benchmark/titanic.csv (891 passengers, the size of the real file)
//	testdata/benchmark/large.csv   (10000 passengers)
//	testdata/benchmark/large.tsv   (same rows, tab separated)
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mehaktrehan/titanic/pkg/testutil"
)

type datasetSpec struct {
	name string
	size int
}

var datasets = []datasetSpec{
	{"small", 100},
	{"titanic", 891},
	{"large", 10000},
}

func main() {
	outputDir := filepath.Join("testdata", "benchmark")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		cfg := testutil.DefaultConfig()
		cfg.Seed = int64(ds.size)
		csv := testutil.ToCSV(testutil.New(cfg).Passengers(ds.size))

		write(filepath.Join(outputDir, ds.name+".csv"), csv)
		if ds.name == "large" {
			write(filepath.Join(outputDir, ds.name+".tsv"), strings.ReplaceAll(csv, ",", "\t"))
		}
	}

	fmt.Println("\nDone! Datasets created in", outputDir)
}

func write(path, content string) {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
		os.Exit(1)
	}
	fmt.Printf("  Written %s (%d bytes)\n", path, len(content))
}
