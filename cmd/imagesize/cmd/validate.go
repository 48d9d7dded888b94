package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/go-github/v57/github"
	"github.com/spf13/cobra"

	"github.com/containerci/imagesize/artifacts"
	"github.com/containerci/imagesize/hub"
	"github.com/containerci/imagesize/internal/runtime"
	"github.com/containerci/imagesize/internal/viper"
	"github.com/containerci/imagesize/sizecheck"
	"github.com/containerci/imagesize/version"
)

func validateCmd() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate <image>",
		Short: "Validate the size of a published image against its previous release",
		Long: "This command fetches every OS/architecture variant of the given image, determines the previous release\n" +
			"for each variant from the registry, and fails when any variant grew more than the threshold allows.",
		Args: cobra.ExactArgs(1),
		// this fmt.Sprintf is in place to keep spacing consistent with cobras two spaces that's used in: Usage, Flags, etc
		Example: fmt.Sprintf("  %s", "imagesize validate registry.example.io/teamcity-agent:2022.10-windowsservercore-1809"),
		RunE:    validateRunE,
	}

	flags := validateCmd.Flags()
	viper := viper.Instance()

	flags.String("registry", hub.DefaultBaseURL, "Registry API base URI. (env: IMGSIZE_REGISTRY)")
	_ = viper.BindPFlag("registry", flags.Lookup("registry"))

	flags.Float64P("threshold", "t", sizecheck.DefaultThreshold, "Allowed size growth in percent; a variant fails when its change is strictly greater. (env: IMGSIZE_THRESHOLD)")
	_ = viper.BindPFlag("threshold", flags.Lookup("threshold"))

	flags.String("username", "", "Registry username for the session-token exchange. (env: IMGSIZE_USERNAME)")
	_ = viper.BindPFlag("username", flags.Lookup("username"))

	flags.String("password", "", "Registry access secret. Calls stay anonymous when empty. (env: IMGSIZE_PASSWORD)")
	_ = viper.BindPFlag("password", flags.Lookup("password"))

	flags.String("artifacts", "", "Where copies of the validation report will be written. (env: IMGSIZE_ARTIFACTS)")
	_ = viper.BindPFlag("artifacts", flags.Lookup("artifacts"))

	flags.String("gh-auth-token", "", "A Github auth token can be specified to work around rate limits")
	_ = viper.BindPFlag("gh-auth-token", flags.Lookup("gh-auth-token"))

	return validateCmd
}

// validateRunE executes the size validation using the user args to inform the execution.
func validateRunE(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger, err := logr.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("invalid logging configuration")
	}
	logger.Info("imagesize library version", "version", version.Version.String())

	notifyIfNewerRelease(cmd)

	// Render the Viper configuration as a runtime.Config
	cfg, err := runtime.NewConfigFrom(*viper.Instance())
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.Image = args[0]

	artifactsWriter, err := artifacts.NewFilesystemWriter(artifacts.WithDirectory(cfg.Artifacts))
	if err != nil {
		return err
	}

	// Add the artifact writer to the context so report copies land in
	// the artifacts directory.
	ctx = artifacts.ContextWithWriter(ctx, artifactsWriter)

	cmd.SilenceUsage = true

	failed, err := sizecheck.NewSizeCheck(
		cfg.Image,
		sizecheck.WithRegistry(cfg.RegistryURI),
		sizecheck.WithThreshold(cfg.Threshold),
		sizecheck.WithCredentials(cfg.Username, cfg.Password),
		sizecheck.WithOutput(cmd.OutOrStdout()),
	).ValidateImageSize(ctx)
	if err != nil {
		return err
	}

	if len(failed) > 0 {
		for _, variant := range failed {
			logger.Info("variant grew beyond the threshold", "os", variant.OS, "architecture", variant.Architecture)
		}
		return fmt.Errorf("%d variant(s) of %s grew more than %.2f%%", len(failed), cfg.Image, cfg.Threshold)
	}

	return nil
}

// notifyIfNewerRelease logs when a newer imagesize release exists. A
// failure to reach GitHub never fails the run.
func notifyIfNewerRelease(cmd *cobra.Command) {
	logger := logr.FromContextOrDiscard(cmd.Context())

	// use an authenticated client if a token is provided
	var client *github.Client
	ghToken, err := cmd.Flags().GetString("gh-auth-token")
	if err == nil && len(ghToken) > 0 {
		client = github.NewClient(&http.Client{
			// Timeout in 1s in case Github is slow to respond
			Timeout: time.Second * 1,
		}).WithAuthToken(ghToken)
	} else {
		client = github.NewClient(&http.Client{
			// timeout in 1s in case Github is slow to respond
			Timeout: time.Second * 1,
		})
	}

	latestRelease, err := version.Version.LatestReleasedVersion(cmd.Context(), client.Repositories)
	if err != nil {
		logger.Error(err, "Unable to determine if running the latest release")
	}
	if latestRelease != nil {
		logger.Info("Found newer release", "New version", *latestRelease.TagName, "available at", *latestRelease.HTMLURL)
	}
}
