package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/JonMunkholm/contacts/internal/config"
	"github.com/JonMunkholm/contacts/internal/core"
)

// normalizeFile reads cfg.InputPath, writes the records to cfg.OutputPath and,
// when cfg.RejectsPath is set, the rejected address values to a CSV report.
func normalizeFile(cfg config.NormalizeConfig, n *core.Normalizer) (*core.Result, error) {
	in, err := os.Open(cfg.InputPath)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	defer in.Close()

	res, err := n.NormalizeReader(in)
	if err != nil {
		return nil, err
	}

	if err := writeAtomic(cfg.OutputPath, func(w io.Writer) error {
		return core.EncodeRecords(w, res.Records)
	}); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}

	if cfg.RejectsPath != "" {
		if err := writeAtomic(cfg.RejectsPath, func(w io.Writer) error {
			return writeRejections(w, res.Rejections)
		}); err != nil {
			return nil, fmt.Errorf("write rejects: %w", err)
		}
	}

	return res, nil
}

// writeAtomic writes to a temporary file next to path and renames it into
// place once fill and Close succeed.
func writeAtomic(path string, fill func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = fill(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

var rejectsHeader = []string{"line", "eid", "column", "type", "value"}

func writeRejections(w io.Writer, rejections []core.Rejection) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rejectsHeader); err != nil {
		return err
	}
	for _, rej := range rejections {
		if err := cw.Write([]string{
			strconv.Itoa(rej.Line),
			rej.IdentityKey,
			rej.Column,
			string(rej.Kind),
			rej.Value,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
