package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command for the kubesteward application. Without a
// subcommand it starts the MCP server, equivalent to 'kubesteward serve'.
var rootCmd = &cobra.Command{
	Use:   "kubesteward",
	Short: "MCP server for idempotent Kubernetes and Helm operations",
	Long: `kubesteward is a Model Context Protocol (MCP) server that exposes
idempotent, check-mode-aware tools for Kubernetes clusters: resource
reconciliation, node lifecycle, pod I/O, Helm release management and
kustomize rendering.

When run without subcommands, it starts the MCP server (equivalent to
'kubesteward serve').`,
	SilenceUsage: true,
}

// SetVersion sets the version for the root command. Called from main to
// inject the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the entry point for the CLI. It is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "kubesteward version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
	rootCmd.AddCommand(newServeCmd())
}
