// Command extspictl is diagnostic tooling around an extspi Director:
// it loads a strategy manifest, scans every registered contract, and
// reports registry and activation state. It never imports the bundled
// contracts themselves - extensions self-register from their own
// process's init(), so extspictl is meant to be vendored into that
// process's own main, not run standalone against an empty registry.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/extspi-go/extspi"
	"github.com/extspi-go/extspi/config"
)

var (
	configPath string
	baseDir    string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "extspictl",
		Short: "Inspect an extspi director's registered contracts and extensions",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "strategy manifest (yaml/toml); overrides --base-dir")
	root.PersistentFlags().StringVar(&baseDir, "base-dir", "./config", "base directory for the default three-tier strategies")

	root.AddCommand(newListCmd(), newDescribeCmd(), newActivateCmd(), newStatsCmd())
	return root
}

func buildDirector() (*extspi.Director, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	var strategies []extspi.DiscoveryStrategy
	if configPath != "" {
		strategies, err = config.Load(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		strategies = extspi.DefaultStrategies(baseDir)
	}

	director := extspi.NewFrameworkDirector(
		extspi.WithLogger(logger),
		extspi.WithStrategies(strategies),
	)
	for _, t := range extspi.RegisteredContracts() {
		extspi.ScanContract(director, t)
	}
	return director, nil
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every registered contract and its supported extension names",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := buildDirector(); err != nil {
				return err
			}
			for _, t := range extspi.RegisteredContracts() {
				fmt.Printf("%s\n", t.String())
				for _, n := range extspi.SupportedNamesFor(t) {
					fmt.Printf("  - %s\n", n)
				}
			}
			return nil
		},
	}
	return cmd
}

func newDescribeCmd() *cobra.Command {
	var showTree bool
	cmd := &cobra.Command{
		Use:   "describe [contract]",
		Short: "Describe one contract's registrations, or the director tree with --tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			director, err := buildDirector()
			if err != nil {
				return err
			}
			if showTree {
				out, err := director.DrawTree()
				if err != nil {
					return err
				}
				fmt.Println(out)
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("describe requires a contract name unless --tree is set")
			}
			t, ok := extspi.ContractByName(args[0])
			if !ok {
				return fmt.Errorf("unknown contract: %s", args[0])
			}
			for _, n := range extspi.SupportedNamesFor(t) {
				fmt.Println(n)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showTree, "tree", false, "render the director's scope tree instead")
	return cmd
}

func newActivateCmd() *cobra.Command {
	var group, names string
	cmd := &cobra.Command{
		Use:   "activate [contract]",
		Short: "Report the names GetActivate would resolve for a contract/group/names query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := buildDirector(); err != nil {
				return err
			}
			t, ok := extspi.ContractByName(args[0])
			if !ok {
				return fmt.Errorf("unknown contract: %s", args[0])
			}
			resolved, err := extspi.ActivateNamesFor(t, group, nil, names)
			if err != nil {
				return err
			}
			for _, n := range resolved {
				fmt.Println(n)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "activation group filter")
	cmd.Flags().StringVar(&names, "names", "", "comma-separated explicit/exclusion names query")
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Report the director's scanner line-buffer pool hit/miss counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			director, err := buildDirector()
			if err != nil {
				return err
			}
			m := director.ScannerPoolMetrics()
			fmt.Printf("hits: %d\nmisses: %d\n", m.Hits, m.Misses)
			return nil
		},
	}
}
