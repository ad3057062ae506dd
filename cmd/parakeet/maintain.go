package parakeet

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/friendlyparakeet/parakeet-cli/internal/breadcrumbs"
	"github.com/friendlyparakeet/parakeet-cli/internal/gitcmd"
	"github.com/friendlyparakeet/parakeet-cli/internal/hooks"
	"github.com/friendlyparakeet/parakeet-cli/internal/maintenance"
)

func newEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable",
		Short: "Install the post-commit authorship hook in this repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			repoRoot, err := gitcmd.RepoRoot(cmd.Context(), ".")
			if err != nil {
				return fmt.Errorf("not a git repository (run this inside a git repo)")
			}
			if err := hooks.Install(repoRoot); err != nil {
				return fmt.Errorf("installing hook: %w", err)
			}
			fmt.Println("Parakeet post-commit hook installed.")
			return nil
		},
	}
}

func newDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable",
		Short: "Remove the parakeet hook from this repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			repoRoot, err := gitcmd.RepoRoot(cmd.Context(), ".")
			if err != nil {
				return fmt.Errorf("not a git repository")
			}
			if err := hooks.Uninstall(repoRoot); err != nil {
				return fmt.Errorf("removing hook: %w", err)
			}
			fmt.Println("Parakeet hook removed.")
			return nil
		},
	}
}

func newMaintainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maintain",
		Short: "Auto-commit and push uncommitted work across projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, dataDir, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.GitMaintenanceEnabled {
				fmt.Println("Git maintenance is disabled (git_maintenance_enabled: false).")
				return nil
			}

			m := maintenance.NewMaintainer(dataDir, cfg.AutoCommitMaxFiles)
			if err := m.Load(); err != nil {
				return err
			}

			ctx := cmd.Context()
			projects := newScanner(cfg).Scan(ctx)
			for _, p := range projects {
				if p.Git == nil {
					continue
				}
				res := m.Perform(ctx, p.Path)
				for _, action := range res.Actions {
					fmt.Printf("  %-24s %s\n", p.Name, action)
				}
				if !res.Success && res.Error != "" {
					fmt.Printf("  %-24s error: %s\n", p.Name, res.Error)
				}
			}
			return nil
		},
	}
	return cmd
}

func newBreadcrumbCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "breadcrumb [PATH]",
		Short: "Show resumption breadcrumbs for a project or all projects",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, dataDir, err := loadConfig()
			if err != nil {
				return err
			}
			gen := breadcrumbs.NewGenerator(dataDir)
			if err := gen.Load(); err != nil {
				return err
			}

			if len(args) == 1 {
				path, err := filepath.Abs(args[0])
				if err != nil {
					path = args[0]
				}
				crumbs := gen.ForProject(path)
				if len(crumbs) == 0 {
					fmt.Printf("No breadcrumbs found for %s\n", path)
					return nil
				}
				for _, c := range crumbs {
					fmt.Printf("%s  %s (%d days inactive)\n", c.Timestamp, c.Status, c.InactivityDays)
					for i, s := range c.PromptSuggestions {
						fmt.Printf("  %d. %s\n", i+1, s)
					}
					fmt.Println()
				}
				return nil
			}

			all := gen.All()
			if len(all) == 0 {
				fmt.Println("No breadcrumbs found. Run 'parakeet scan' first.")
				return nil
			}
			for path, crumbs := range all {
				fmt.Printf("%-32s %d breadcrumb(s)\n", filepath.Base(path), len(crumbs))
			}
			return nil
		},
	}
}
