package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/containerci/imagesize/internal/log"
	"github.com/containerci/imagesize/sizecheck"
)

func previousCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "previous <image>",
		Short: "Predict the previous release of an image from its tag",
		Long: "This command derives the predecessor of a <year>.<month>.<build>-<rest> tag by decrementing the\n" +
			"build number. No registry call is made; tags outside that convention are not predictable.",
		Args:    cobra.ExactArgs(1),
		Example: fmt.Sprintf("  %s", "imagesize previous teamcity-agent:2022.04.2-windowsservercore"),
		RunE:    previousRunE,
	}
}

func previousRunE(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	// Capture the prediction diagnostics so a failed prediction can
	// say why.
	diagnostics := bytes.NewBufferString("")
	ctx := logr.NewContext(cmd.Context(), logr.New(log.NewBufferSink(diagnostics)))

	previous := sizecheck.PreviousImage(ctx, args[0])
	if previous == nil {
		return fmt.Errorf("no predecessor is predictable for %q: %s", args[0], strings.TrimSpace(diagnostics.String()))
	}

	fmt.Fprintln(cmd.OutOrStdout(), previous.String())
	return nil
}
