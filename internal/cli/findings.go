package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/findings/internal/model"
	"github.com/ppiankov/findings/internal/worker"
)

var (
	skipPending  bool
	shapeName    string
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// flattenCmd prints the single-entry view of findings
var flattenCmd = &cobra.Command{
	Use:   "flatten <file>",
	Short: "Print findings as flat single-entry records",
	Long: `Flatten reads findings in any layout (flat, entries or hybrid) and prints
each as a flat record built from its first entry.

A finding without entries cannot be flattened and is reported as malformed
unless --skip-pending is given.

Example:
  findings flatten litter.json
  findings flatten litter.json --skip-pending`,
	Args: cobra.ExactArgs(1),
	RunE: runFlatten,
}

// normalizeCmd rewrites findings files into one layout
var normalizeCmd = &cobra.Command{
	Use:   "normalize <file>...",
	Short: "Rewrite findings files into a single layout",
	Long: `Normalize decodes findings files of any layout and writes them back in the
requested one, processing files in parallel.

Example:
  findings normalize export.json
  findings normalize data/*.json --shape hybrid --output-dir ./normalized`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(flattenCmd)
	rootCmd.AddCommand(normalizeCmd)

	flattenCmd.Flags().BoolVar(&skipPending, "skip-pending", false, "skip findings that have no entries yet")

	normalizeCmd.Flags().StringVar(&shapeName, "shape", string(model.ShapeEntries), "output layout (entries, flat, hybrid)")
	normalizeCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	normalizeCmd.Flags().StringVar(&outputDir, "output-dir", "", "write results here instead of stdout")
	normalizeCmd.Flags().DurationVar(&batchTimeout, "timeout", 5*time.Minute, "total timeout")
}

func runFlatten(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read findings: %w", err)
	}

	findings, err := model.DecodeFindings(data)
	if err != nil {
		return err
	}

	var flats []model.FlatFinding
	if skipPending {
		flats, err = model.FlattenAll(findings)
		if err != nil {
			return err
		}
	} else {
		flats = make([]model.FlatFinding, 0, len(findings))
		for _, f := range findings {
			flat, err := model.Flatten(f)
			if err != nil {
				return err
			}
			flats = append(flats, flat)
		}
	}

	out, err := json.MarshalIndent(flats, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	fmt.Println(string(out))

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Flattened %d of %d findings\n", len(flats), len(findings))
	}
	return nil
}

func runNormalize(cmd *cobra.Command, args []string) error {
	shape, err := model.ParseShape(shapeName)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Normalizing %d files to %s with %d workers\n", len(args), shape, concurrency)
	}

	normalizer := worker.NewNormalizer(concurrency, shape, outputDir, logger)
	results, err := normalizer.NormalizeFiles(ctx, args)
	if err != nil {
		return err
	}

	failures := 0
	for _, r := range results {
		if r.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Path, r.Error)
			continue
		}

		if r.Output == "" {
			fmt.Println(string(r.Data))
		}
		if verbose || r.Output != "" {
			fmt.Fprintf(os.Stderr, "✓ %s (%d findings", r.Path, r.Findings)
			if r.Skipped > 0 {
				fmt.Fprintf(os.Stderr, ", %d pending skipped", r.Skipped)
			}
			fmt.Fprintf(os.Stderr, ")\n")
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d files failed", failures, len(results))
	}
	return nil
}
