package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/ppiankov/findings/internal/model"
)

// NormalizeJob rewrites one findings file into a target shape
type NormalizeJob struct {
	Index     int
	Path      string
	Shape     model.Shape
	OutputDir string // Empty keeps the output in the result instead of writing it
}

// NormalizeResult is the outcome of a NormalizeJob
type NormalizeResult struct {
	Index    int
	Path     string
	Output   string // Written file, if any
	Data     []byte // Encoded records when OutputDir is empty
	Findings int    // Records written
	Skipped  int    // Pending records left out of flat output
	Error    error
}

// Execute decodes every record in the file, whatever its shape, and encodes
// the lot in the job's shape
func (j NormalizeJob) Execute(ctx context.Context) NormalizeResult {
	res := NormalizeResult{Index: j.Index, Path: j.Path}
	if err := ctx.Err(); err != nil {
		res.Error = err
		return res
	}

	data, err := os.ReadFile(j.Path)
	if err != nil {
		res.Error = fmt.Errorf("read: %w", err)
		return res
	}

	findings, err := model.DecodeFindings(data)
	if err != nil {
		res.Error = err
		return res
	}

	encoded := make([]json.RawMessage, 0, len(findings))
	for _, f := range findings {
		if j.Shape == model.ShapeFlat && f.Pending() {
			res.Skipped++
			continue
		}
		raw, err := model.EncodeFinding(f, j.Shape)
		if err != nil {
			res.Error = err
			return res
		}
		encoded = append(encoded, raw)
	}
	res.Findings = len(encoded)

	out, err := json.MarshalIndent(encoded, "", "  ")
	if err != nil {
		res.Error = fmt.Errorf("encode: %w", err)
		return res
	}

	if j.OutputDir == "" {
		res.Data = out
		return res
	}

	res.Output = filepath.Join(j.OutputDir, filepath.Base(j.Path))
	if err := os.WriteFile(res.Output, append(out, '\n'), 0o644); err != nil {
		res.Error = fmt.Errorf("write: %w", err)
	}
	return res
}

// Normalizer converts many findings files concurrently
type Normalizer struct {
	concurrency int
	shape       model.Shape
	outputDir   string
	log         *zap.Logger
}

// NewNormalizer creates a normalizer
func NewNormalizer(concurrency int, shape model.Shape, outputDir string, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{
		concurrency: concurrency,
		shape:       shape,
		outputDir:   outputDir,
		log:         logger,
	}
}

// NormalizeFiles processes paths (deduplicated) and returns results in input order
func (n *Normalizer) NormalizeFiles(ctx context.Context, paths []string) ([]NormalizeResult, error) {
	if len(paths) == 0 {
		return []NormalizeResult{}, nil
	}

	if n.outputDir != "" {
		if err := os.MkdirAll(n.outputDir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	seen := make(map[string]bool)
	outputs := make(map[string]string)
	var jobs []Job[NormalizeResult]
	for _, path := range paths {
		if seen[path] {
			continue
		}
		seen[path] = true

		base := filepath.Base(path)
		if other, clash := outputs[base]; clash && n.outputDir != "" {
			return nil, fmt.Errorf("%s and %s would both be written to %s", other, path, base)
		}
		outputs[base] = path

		jobs = append(jobs, NormalizeJob{
			Index:     len(jobs),
			Path:      path,
			Shape:     n.shape,
			OutputDir: n.outputDir,
		})
	}

	pool := NewPool[NormalizeResult](ctx, n.concurrency)
	results := pool.Run(jobs)

	sort.Slice(results, func(a, b int) bool { return results[a].Index < results[b].Index })

	if err := ctx.Err(); err != nil && len(results) < len(jobs) {
		return results, fmt.Errorf("normalize interrupted after %d of %d files: %w", len(results), len(jobs), err)
	}

	for _, r := range results {
		switch {
		case r.Error == nil:
			n.log.Debug("normalized", zap.String("path", r.Path), zap.Int("findings", r.Findings), zap.Int("skipped", r.Skipped))
		case errors.Is(r.Error, model.ErrMalformedFinding):
			n.log.Warn("malformed finding", zap.String("path", r.Path), zap.Error(r.Error))
		default:
			n.log.Warn("normalize failed", zap.String("path", r.Path), zap.Error(r.Error))
		}
	}

	return results, nil
}
