package app

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/blackwell-systems/pkgforge/internal/config"
	"github.com/blackwell-systems/pkgforge/internal/store"
)

var (
	flagDB     string
	flagDebug  bool
	flagNoDeps bool
	flagForce  bool

	policy *config.Policy
	logger *zap.SugaredLogger

	// RootCmd is the root command for pkgforge
	RootCmd = &cobra.Command{
		Use:   "pkgforge",
		Short: "Script-built package manager for a directory tree",
		Long: `pkgforge installs, removes and queries file-based packages. A package is
built by a Lua script that writes its payload into a scratch directory and
returns a manifest; pkgforge records ownership, content hashes and
dependencies in a SQLite catalog and materializes the payload into the
current directory.

Examples:
  # Build and install packages from scripts
  pkgforge install tool.lua lib.lua

  # Remove packages (modified files are kept unless --hard)
  pkgforge remove tool

  # Inspect the catalog
  pkgforge query 'lib%' --files

  # Check installed files against their recorded hashes
  pkgforge verify --watch`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "catalog path (default: ~/.pkgforge/pkgforge.db)")
	RootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "verbose error reporting")

	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}

// setup loads the policy (env first, flags override) and builds the process
// logger.
func setup() error {
	// A .env next to the invocation is optional.
	godotenv.Load()

	p, err := config.Load()
	if err != nil {
		return err
	}
	p.Debug = p.Debug || flagDebug
	if flagDB != "" {
		p.DB = flagDB
	}
	if flagNoDeps {
		p.NoDeps = true
	}
	if flagForce {
		p.Force = true
	}
	policy = p

	var zl *zap.Logger
	if p.Debug {
		zl, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.DisableStacktrace = true
		cfg.DisableCaller = true
		cfg.EncoderConfig.TimeKey = ""
		zl, err = cfg.Build()
	}
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	logger = zl.Sugar()
	return nil
}

// openCatalog opens the configured catalog store.
func openCatalog() (*store.Store, error) {
	path := policy.DB
	if path == "" {
		var err error
		path, err = config.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}
	return store.Open(path)
}
