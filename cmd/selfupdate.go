package cmd

import (
	"fmt"
	"os"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// githubRepoSlug identifies the GitHub repository used for self-updates.
const githubRepoSlug = "kubesteward/kubesteward"

// newSelfUpdateCmd creates the Cobra command for updating the binary in
// place from the latest GitHub release.
func newSelfUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "self-update",
		Short: "Update kubesteward to the latest version",
		Long: `Check GitHub for a newer release of kubesteward and replace the
current binary with it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			version := rootCmd.Version
			if version == "" || version == "dev" {
				return fmt.Errorf("cannot self-update a development version, please download a release binary")
			}

			latest, found, err := selfupdate.DetectLatest(cmd.Context(), selfupdate.ParseSlug(githubRepoSlug))
			if err != nil {
				return fmt.Errorf("error occurred while detecting version: %w", err)
			}
			if !found {
				return fmt.Errorf("latest version for %s could not be found from github repository", githubRepoSlug)
			}

			if latest.LessOrEqual(version) {
				fmt.Fprintf(cmd.OutOrStdout(), "Current version (%s) is the latest\n", version)
				return nil
			}

			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("could not locate executable path: %w", err)
			}
			if err := selfupdate.UpdateTo(cmd.Context(), latest.AssetURL, latest.AssetName, exe); err != nil {
				return fmt.Errorf("error occurred while updating binary: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Successfully updated to version %s\n", latest.Version())
			return nil
		},
	}
}
