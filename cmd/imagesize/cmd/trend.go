package cmd

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/containerci/imagesize/artifacts"
	"github.com/containerci/imagesize/hub"
	"github.com/containerci/imagesize/internal/runtime"
	"github.com/containerci/imagesize/internal/viper"
	"github.com/containerci/imagesize/sizecheck"
)

func trendCmd() *cobra.Command {
	trendCmd := &cobra.Command{
		Use:   "trend <image>",
		Short: "Print the size trend of an image's repository",
		Long: "This command lists the known tags of the image's repository ordered by push time and prints one\n" +
			"CSV line per tag: repository,tag,pushedAt,sizeBytes.",
		Args:    cobra.ExactArgs(1),
		Example: fmt.Sprintf("  %s", "imagesize trend registry.example.io/teamcity-agent:2022.10-linux"),
		RunE:    trendRunE,
	}

	flags := trendCmd.Flags()
	viper := viper.Instance()

	flags.String("registry", hub.DefaultBaseURL, "Registry API base URI. (env: IMGSIZE_REGISTRY)")
	_ = viper.BindPFlag("registry", flags.Lookup("registry"))

	flags.String("username", "", "Registry username for the session-token exchange. (env: IMGSIZE_USERNAME)")
	_ = viper.BindPFlag("username", flags.Lookup("username"))

	flags.String("password", "", "Registry access secret. Calls stay anonymous when empty. (env: IMGSIZE_PASSWORD)")
	_ = viper.BindPFlag("password", flags.Lookup("password"))

	flags.String("artifacts", "", "Where a copy of the trend CSV will be written. (env: IMGSIZE_ARTIFACTS)")
	_ = viper.BindPFlag("artifacts", flags.Lookup("artifacts"))

	return trendCmd
}

func trendRunE(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger, err := logr.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("invalid logging configuration")
	}

	cfg, err := runtime.NewConfigFrom(*viper.Instance())
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.Image = args[0]

	artifactsWriter, err := artifacts.NewFilesystemWriter(artifacts.WithDirectory(cfg.Artifacts))
	if err != nil {
		return err
	}
	ctx = artifacts.ContextWithWriter(ctx, artifactsWriter)

	logger.Info("printing size trend", "image", cfg.Image)

	cmd.SilenceUsage = true

	return sizecheck.NewSizeCheck(
		cfg.Image,
		sizecheck.WithRegistry(cfg.RegistryURI),
		sizecheck.WithCredentials(cfg.Username, cfg.Password),
		sizecheck.WithOutput(cmd.OutOrStdout()),
	).PrintImageSizeTrend(ctx)
}
