// Command normalize converts a contact export CSV into normalized JSON records.
//
// Paths and the phone region come from the environment (INPUT_PATH,
// OUTPUT_PATH, REJECTS_PATH, PHONE_REGION) or a .env file. The output file
// is replaced atomically, so a failed run leaves any previous output intact.
//
// Exit codes: 0 success, 1 configuration or I/O failure, 2 invalid header.
package main

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/JonMunkholm/contacts/internal/config"
	"github.com/JonMunkholm/contacts/internal/core"
	"github.com/JonMunkholm/contacts/internal/logging"
	"github.com/JonMunkholm/contacts/internal/phone"
	"github.com/joho/godotenv"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitInvalid = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Overload(); err == nil {
		slog.Debug("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return exitFailure
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	parser, err := phone.New(cfg.Normalize.Region)
	if err != nil {
		logger.Error("invalid phone region", "region", cfg.Normalize.Region, "error", err)
		return exitFailure
	}

	start := time.Now()
	res, err := normalizeFile(cfg.Normalize, core.NewNormalizer(parser, cfg.Normalize.Region, core.WithLogger(logger)))
	if err != nil {
		var cfgErr *core.ConfigurationError
		if errors.As(err, &cfgErr) {
			logger.Error("invalid input", "path", cfg.Normalize.InputPath, "error", err, "hint", core.FormatUserError(err))
			return exitInvalid
		}
		logger.Error("normalization failed", "error", err)
		return exitFailure
	}

	logger.Info("output written",
		"input", cfg.Normalize.InputPath,
		"output", cfg.Normalize.OutputPath,
		"records", res.Stats.Records,
		"rejected", res.Stats.Rejected,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return exitOK
}
