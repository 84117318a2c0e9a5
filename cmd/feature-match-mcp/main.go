package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ironsheep/feature-match-mcp/internal/logging"
	"github.com/ironsheep/feature-match-mcp/internal/pipeline"
	"github.com/ironsheep/feature-match-mcp/internal/server"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// EnvConfig names a JSON configuration file used when -config is absent.
const EnvConfig = "FEATURE_MCP_CONFIG"

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("feature-match-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage(os.Stdout)
			return
		}
	}

	// Logs go to stderr; stdout carries MCP responses or match output.
	logger := logging.FromEnv(os.Stderr)

	if len(os.Args) > 1 && os.Args[1] == "match" {
		if err := runMatch(os.Args[2:], os.Stdout, logger); err != nil {
			logger.Error().Err(err).Msg("match failed")
			os.Exit(1)
		}
		return
	}

	fs := flag.NewFlagSet("feature-match-mcp", flag.ExitOnError)
	configPath := fs.String("config", os.Getenv(EnvConfig), "JSON pipeline configuration file")
	_ = fs.Parse(os.Args[1:])

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	logger.Debug().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("commit", GitCommit).
		Str("detector", cfg.Detector).
		Str("descriptor", cfg.Descriptor).
		Msg("feature match MCP server starting")

	srv := server.New(server.WithLogger(logger), server.WithConfig(cfg))
	if err := srv.Run(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

// runMatch implements "match [-config file.json] <source> <reference>".
func runMatch(args []string, out io.Writer, logger zerolog.Logger) error {
	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv(EnvConfig), "JSON pipeline configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.Errorf("match needs <source> <reference>, got %d arguments", fs.NArg())
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg, pipeline.WithLogger(logger))
	if err != nil {
		return err
	}
	res, err := p.MatchFiles(fs.Arg(0), fs.Arg(1))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// loadConfig reads path over the defaults when set, then applies the
// environment overrides.
func loadConfig(path string) (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = pipeline.LoadConfig(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "feature-match-mcp - MCP server for keypoint detection and matching")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  feature-match-mcp [-config file.json]")
	fmt.Fprintln(w, "  feature-match-mcp match [-config file.json] <source> <reference>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --version, -v    Print version information")
	fmt.Fprintln(w, "  --help, -h       Print this help message")
	fmt.Fprintln(w, "  -config FILE     Pipeline configuration (JSON)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintln(w, "  FEATURE_MCP_LOG_LEVEL=debug        Log level (default: info)")
	fmt.Fprintln(w, "  FEATURE_MCP_LOG_FORMAT=console     Log format: json or console")
	fmt.Fprintln(w, "  FEATURE_MCP_CONFIG=FILE            Configuration file when -config is absent")
	fmt.Fprintln(w, "  FEATURE_MCP_DETECTOR=HARRIS        Override the detector")
	fmt.Fprintln(w, "  FEATURE_MCP_DESCRIPTOR=BRIEF       Override the descriptor")
	fmt.Fprintln(w, "  FEATURE_MCP_MATCHER=MAT_BF         Override the matcher")
	fmt.Fprintln(w, "  FEATURE_MCP_SELECTOR=SEL_KNN       Override the selector")
	fmt.Fprintln(w, "  FEATURE_MCP_RATIO=0.8              Override the ratio test threshold")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Without a subcommand the server communicates via MCP over stdin/stdout.")
}
