package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Normalizer runs the full pass: header plan, row folding, result.
// A Normalizer holds no per-run state and may be shared.
type Normalizer struct {
	canon  *Canonicalizer
	logger *slog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLogger sets the logger used for plan and summary output.
func WithLogger(l *slog.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.logger = l
		}
	}
}

// NewNormalizer returns a Normalizer that validates phones with phones for region.
func NewNormalizer(phones PhoneParser, region string, opts ...Option) *Normalizer {
	n := &Normalizer{
		canon:  NewCanonicalizer(phones, region),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NormalizeReader reads all of r and normalizes it.
func (n *Normalizer) NormalizeReader(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return n.Normalize(data)
}

// Normalize builds the column plan from the first line and folds every
// following non-blank line into the dataset. The only error is a
// *ConfigurationError for a header without an identity column.
func (n *Normalizer) Normalize(data []byte) (*Result, error) {
	start := time.Now()
	lines := SplitLines(sanitizeInput(data))

	plan, err := BuildColumnPlan(lines[0])
	if err != nil {
		return nil, err
	}
	n.logPlan(plan)

	ds := NewDataset(n.canon)
	stats := Stats{Lines: len(lines)}

	for i, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			stats.BlankLines++
			continue
		}
		ds.mergeRow(plan, SplitRow(line), i+2)
		stats.Rows++
	}

	// A trailing newline is not a line of its own.
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		stats.Lines--
		stats.BlankLines--
	}

	stats.Records = ds.Len()
	stats.Rejected = len(ds.Rejections())

	for _, rej := range ds.Rejections() {
		n.logger.Debug("address rejected",
			"line", rej.Line,
			"eid", rej.IdentityKey,
			"type", rej.Kind,
			"value", rej.Value,
		)
	}

	n.logger.Info("normalization complete",
		"rows", stats.Rows,
		"records", stats.Records,
		"rejected", stats.Rejected,
		"blank_lines", stats.BlankLines,
		"region", n.canon.Region(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Result{
		Records:    ds.Records(),
		Rejections: ds.Rejections(),
		Stats:      stats,
	}, nil
}

func (n *Normalizer) logPlan(plan *Plan) {
	if !n.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for _, col := range plan.Columns {
		n.logger.Debug("column",
			"position", col.Position,
			"name", col.BaseName,
			"kind", col.Kind.String(),
			"tags", col.Tags,
		)
	}
}
