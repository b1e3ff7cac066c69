package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgforge/internal/output"
	"github.com/blackwell-systems/pkgforge/internal/store"
)

var (
	queryFlagFiles bool
	queryFlagInfo  bool
)

var queryCmd = &cobra.Command{
	Use:   "query [patterns...]",
	Short: "Query the catalog",
	Long: `List catalog packages matching SQL LIKE patterns (all packages when no
pattern is given).

Examples:
  pkgforge query
  pkgforge query 'lib%'
  pkgforge query tool --files
  pkgforge query tool --info`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().BoolVar(&queryFlagFiles, "files", false, "list the files each matched package owns")
	queryCmd.Flags().BoolVar(&queryFlagInfo, "info", false, "show full manifest details")

	RootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	st, err := openCatalog()
	if err != nil {
		return err
	}
	defer st.Close()

	patterns := args
	if len(patterns) == 0 {
		patterns = []string{""}
	}

	seen := make(map[string]bool)
	var matched []*store.Package
	for _, pattern := range patterns {
		pkgs, err := st.ListPackages(pattern)
		if err != nil {
			return err
		}
		for _, pkg := range pkgs {
			if !seen[pkg.Name] {
				seen[pkg.Name] = true
				matched = append(matched, pkg)
			}
		}
	}

	switch {
	case queryFlagInfo:
		for _, pkg := range matched {
			fmt.Printf("Name:       %s\n", pkg.Name)
			fmt.Printf("Version:    %s\n", pkg.Version)
			fmt.Printf("Maintainer: %s\n", pkg.Maintainer)
			deps := pkg.Deps
			if deps == "" {
				deps = "(none)"
			}
			fmt.Printf("Deps:       %s\n\n", deps)
		}
		if len(matched) == 0 {
			fmt.Println("No packages found.")
		}
	case queryFlagFiles:
		for _, pkg := range matched {
			files, err := st.ListPackageFiles(pkg.Name)
			if err != nil {
				return err
			}
			fmt.Printf("%s:\n", pkg.Name)
			fmt.Print(output.RenderFileTable(files))
			fmt.Println()
		}
		if len(matched) == 0 {
			fmt.Println("No packages found.")
		}
	default:
		fmt.Print(output.RenderPackageTable(matched))
	}
	return nil
}
