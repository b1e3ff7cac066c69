package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgforge/internal/builder"
	"github.com/blackwell-systems/pkgforge/internal/engine"
)

var installCmd = &cobra.Command{
	Use:   "install <scripts...>",
	Short: "Build package scripts and install their payloads",
	Long: `Build each package script and install the resulting packages as one batch.

Batching matters: a package and its freshly built dependencies can be
installed together, and the dependency check sees the whole batch. The
catalog is updated in a single transaction; payload files are copied into
the current directory only after it commits.

Examples:
  pkgforge install tool.lua
  pkgforge install libfoo.lua tool.lua
  pkgforge install tool.lua --no-deps`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&flagNoDeps, "no-deps", false, "warn instead of failing on unmet dependencies")
	installCmd.Flags().BoolVar(&flagForce, "force", false, "reserved: bypass file conflicts (not implemented)")

	RootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	var batch []*builder.Build
	// Scratch directories of materialized or skipped builds are already
	// gone; RemoveAll on those is a no-op. Every other exit path leaves
	// built scratch trees behind, and they are removed here.
	defer func() {
		for _, b := range batch {
			os.RemoveAll(b.ScratchDir)
		}
	}()
	for _, script := range args {
		b, err := builder.Run(script)
		if err != nil {
			return err
		}
		batch = append(batch, b)
		logger.Infof("built %s %s from %s", b.Manifest.Name, b.Manifest.Version, script)
	}

	st, err := openCatalog()
	if err != nil {
		return err
	}
	defer st.Close()

	eng := engine.New(st, root, policy, logger)
	if err := eng.Install(batch); err != nil {
		return err
	}

	for _, b := range batch {
		fmt.Printf("installed %s %s\n", b.Manifest.Name, b.Manifest.Version)
	}
	return nil
}
