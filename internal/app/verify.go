package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgforge/internal/engine"
	"github.com/blackwell-systems/pkgforge/internal/output"
	"github.com/blackwell-systems/pkgforge/internal/watcher"
)

var verifyFlagWatch bool

var verifyCmd = &cobra.Command{
	Use:   "verify [packages...]",
	Short: "Check installed files against their recorded hashes",
	Long: `Re-hash every file the catalog owns (or only the named packages) and
report drift: files that were modified since install or are missing from
disk. With --watch, keep running and re-check paths as filesystem events
arrive.

Examples:
  pkgforge verify
  pkgforge verify tool
  pkgforge verify --watch`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyFlagWatch, "watch", false, "keep watching the installation root for drift")

	RootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
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
	report, err := eng.Verify(args)
	if err != nil {
		return err
	}

	drifted := 0
	for _, d := range report {
		if d.State != engine.DriftOK {
			drifted++
		}
		fmt.Printf("%-10s %s (%s)\n", output.DriftLabel(string(d.State)), d.Path, d.Owner)
	}
	if len(report) == 0 {
		fmt.Println("Nothing to verify.")
	} else if drifted == 0 {
		fmt.Printf("%d file(s) verified.\n", len(report))
	} else {
		fmt.Printf("%d of %d file(s) drifted.\n", drifted, len(report))
	}

	if !verifyFlagWatch {
		return nil
	}

	w, err := watcher.New(eng, st, root, logger)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	fmt.Println("Watching for drift. Ctrl-C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	return w.Stop()
}
