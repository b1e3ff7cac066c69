package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgforge/internal/engine"
)

var flagHard bool

var removeCmd = &cobra.Command{
	Use:   "remove <packages...>",
	Short: "Uninstall packages",
	Long: `Uninstall packages: delete their catalog rows, then remove their files.

A file is only removed when its content still matches the hash recorded at
install time. Modified files are kept in place with a warning; --hard backs
them up to a temp name and removes them. Directories are removed deepest
first and left alone when they still hold untracked content.

Examples:
  pkgforge remove tool
  pkgforge remove tool libfoo --no-deps
  pkgforge remove tool --hard`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVar(&flagNoDeps, "no-deps", false, "warn instead of failing when removal breaks dependencies")
	removeCmd.Flags().BoolVar(&flagHard, "hard", false, "back up and remove files modified since install")

	RootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	if flagHard {
		policy.HardRemove = true
	}

	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	st, err := openCatalog()
	if err != nil {
		return err
	}
	defer st.Close()

	eng := engine.New(st, root, policy, logger)
	if err := eng.Uninstall(args); err != nil {
		return err
	}

	for _, name := range args {
		fmt.Printf("removed %s\n", name)
	}
	return nil
}
