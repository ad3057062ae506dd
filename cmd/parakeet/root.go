// Package parakeet implements the parakeet command tree.
package parakeet

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/friendlyparakeet/parakeet-cli/internal/breadcrumbs"
	"github.com/friendlyparakeet/parakeet-cli/internal/config"
	"github.com/friendlyparakeet/parakeet-cli/internal/logutil"
	"github.com/friendlyparakeet/parakeet-cli/internal/scanner"
	"github.com/friendlyparakeet/parakeet-cli/internal/velocity"
)

var (
	configFlag  string
	verboseFlag bool
)

// Execute runs the parakeet root command with all subcommands registered.
func Execute(version string) error {
	rootCmd := &cobra.Command{
		Use:     "parakeet",
		Short:   "Project scanning and commit authorship tracking",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logutil.Setup(verboseFlag)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		newScanCmd(),
		newStatusCmd(),
		newConfigCmd(),
		newAuthorshipCmd(),
		newAuthorshipStatsCmd(),
		newAnalyzeAuthorshipCmd(),
		newTrackCmd(),
		newEnableCmd(),
		newDisableCmd(),
		newMaintainCmd(),
		newBreadcrumbCmd(),
	)

	return rootCmd.Execute()
}

// loadConfig resolves the --config flag and ensures the data directory,
// the only two failure modes that abort a command outright.
func loadConfig() (*config.Config, string, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, "", err
	}
	dataDir, err := cfg.EnsureDataDir()
	if err != nil {
		return nil, "", err
	}
	return cfg, dataDir, nil
}

func newScanner(cfg *config.Config) *scanner.Scanner {
	return &scanner.Scanner{
		WatchPaths:      cfg.ExpandedWatchPaths(),
		ExcludePatterns: cfg.ExcludePatterns,
		Recursive:       cfg.ScanRecursive,
		MaxDepth:        cfg.ScanMaxDepth,
		WithGitSummary:  true,
	}
}

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Scan watch paths for projects and update tracking data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, dataDir, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			history := velocity.NewHistory(dataDir)
			if err := history.Load(); err != nil {
				return err
			}
			crumbs := breadcrumbs.NewGenerator(dataDir)
			if err := crumbs.Load(); err != nil {
				return err
			}

			projects := newScanner(cfg).Scan(ctx)
			for _, p := range projects {
				history.Update(p)
			}
			if err := history.Flush(); err != nil {
				return err
			}

			generated := 0
			for _, p := range projects {
				inactive := history.InactivityDays(p.Path)
				if inactive >= cfg.BreadcrumbThreshold {
					crumbs.Generate(ctx, p, inactive)
					generated++
				}
			}
			if generated > 0 {
				if err := crumbs.Flush(); err != nil {
					return err
				}
			}

			fmt.Printf("Scanned %d project(s)\n", len(projects))
			for _, p := range projects {
				v := history.Velocity(p.Path, cfg.VelocityWindowDays)
				fmt.Printf("  %-24s %-12s %d active days, trend: %s\n",
					p.Name, p.Kind, v.ActiveDays, v.Trend)
			}
			if generated > 0 {
				fmt.Printf("Generated %d breadcrumb(s) for inactive projects\n", generated)
			}
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show tracked projects and their momentum",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, dataDir, err := loadConfig()
			if err != nil {
				return err
			}
			history := velocity.NewHistory(dataDir)
			if err := history.Load(); err != nil {
				return err
			}

			summaries := history.AllProjects(cfg.VelocityWindowDays)
			if len(summaries) == 0 {
				fmt.Println("No tracked projects yet. Run 'parakeet scan' first.")
				return nil
			}
			fmt.Printf("Tracked projects: %d\n\n", len(summaries))
			for _, s := range summaries {
				fmt.Printf("  %-24s inactive %3dd, %d active days, trend: %s\n",
					s.Name, s.InactivityDays, s.Velocity.ActiveDays, s.Velocity.Trend)
			}
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or modify configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load(configFlag)
				if err != nil {
					return err
				}
				data, err := json.MarshalIndent(cfg, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			},
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Set a configuration value",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load(configFlag)
				if err != nil {
					return err
				}
				if err := cfg.Set(args[0], args[1]); err != nil {
					return err
				}
				fmt.Printf("Set %s = %s\n", args[0], args[1])
				return nil
			},
		},
	)
	return cmd
}
