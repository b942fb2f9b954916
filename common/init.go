package common

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Laisky/zap"

	"github.com/slicehub/slicehub/common/config"
	"github.com/slicehub/slicehub/common/logger"
)

// Version is the build-time version string, overridden via -ldflags.
var Version = "dev"

var (
	// Port overrides config.ServerPort when set on the command line.
	Port = flag.Int("port", 0, "the listening port (overrides PORT env var)")

	// PrintVersion toggles a CLI mode that prints the binary version and exits.
	PrintVersion = flag.Bool("version", false, "print version and exit")

	// PrintHelp toggles a CLI mode that prints usage information and exits.
	PrintHelp = flag.Bool("help", false, "print help and exit")

	// LogDir captures the CLI flag that points to the directory storing log files.
	LogDir = flag.String("log-dir", "", "override the log directory (defaults to LOG_DIR env var)")
)

func printHelp() {
	fmt.Println("slicehub " + Version + " - 3D print slicing API")
	fmt.Println("Usage: slicehub [--port <port>] [--log-dir <log directory>] [--version] [--help]")
}

// Init parses CLI flags, validates environment configuration, and prepares
// logging destinations. It exits the process on misconfiguration so the
// HTTP server never starts in an inconsistent state.
func Init() {
	flag.Parse()

	if *PrintVersion {
		fmt.Println(Version)
		os.Exit(0)
	}

	if *PrintHelp {
		printHelp()
		os.Exit(0)
	}

	if err := config.ApplyFileOverlay(); err != nil {
		logger.Logger.Fatal("invalid config file overlay", zap.Error(err))
	}

	if err := config.ValidateAll(); err != nil {
		logger.Logger.Fatal("invalid configuration", zap.Error(err))
	}

	dir := *LogDir
	if dir == "" {
		dir = config.LogDir
	}

	if dir != "" {
		expanded, err := filepath.Abs(dir)
		if err != nil {
			logger.Logger.Fatal("failed to resolve log dir", zap.String("log_dir", dir), zap.Error(err))
		}

		if err := os.MkdirAll(expanded, 0o755); err != nil {
			logger.Logger.Fatal("failed to create log dir", zap.String("log_dir", expanded), zap.Error(err))
		}

		logger.Logger.Info("set log dir", zap.String("log_dir", expanded))
		logger.LogDir = expanded
		*LogDir = expanded
	}

	for _, dir := range []string{config.InputDir, config.OutputDir, config.ConfigsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Logger.Fatal("failed to create required directory", zap.String("dir", dir), zap.Error(err))
		}
	}
}
