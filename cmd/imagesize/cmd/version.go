package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/spf13/cobra"

	"github.com/containerci/imagesize/version"
)

func versionCmd() *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the imagesize version",
		Args:  cobra.NoArgs,
		RunE:  versionRunE,
	}

	versionCmd.Flags().Bool("check-latest", false, "Also look up the newest released version on GitHub")

	return versionCmd
}

func versionRunE(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	fmt.Fprintln(cmd.OutOrStdout(), version.Version.String())

	checkLatest, err := cmd.Flags().GetBool("check-latest")
	if err != nil || !checkLatest {
		return nil
	}

	client := github.NewClient(&http.Client{
		// Timeout in 1s in case Github is slow to respond
		Timeout: time.Second * 1,
	})

	latestRelease, err := version.Version.LatestReleasedVersion(cmd.Context(), client.Repositories)
	if err != nil {
		return fmt.Errorf("unable to determine the latest released version: %w", err)
	}
	if latestRelease == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "this is the latest release")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "a newer release is available: %s (%s)\n", *latestRelease.TagName, *latestRelease.HTMLURL)
	return nil
}
