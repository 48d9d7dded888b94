// Package cmd implements the command-line interface for imagesize.
package cmd

import (
	"context"
	"io"
	"os"

	"github.com/bombsimon/logrusr/v4"
	"github.com/go-logr/logr"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	spfviper "github.com/spf13/viper"

	"github.com/containerci/imagesize/artifacts"
	"github.com/containerci/imagesize/hub"
	"github.com/containerci/imagesize/internal/log"
	"github.com/containerci/imagesize/internal/viper"
	"github.com/containerci/imagesize/sizecheck"
	"github.com/containerci/imagesize/version"
)

var configFileUsed bool

func init() {
	cobra.OnInitialize(func() { initConfig(viper.Instance()) })
}

func rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "imagesize",
		Short: "Published container image size validation.",
		Long: "A utility that compares the size of a container image published to a registry against its previous release\n" +
			"and reports the change to the console and to the build server's statistics channel.",
		Version:          version.Version.String(),
		Args:             cobra.MinimumNArgs(1),
		PersistentPreRun: preRunConfig,
	}

	viper := viper.Instance()
	rootCmd.PersistentFlags().String("logfile", "", "Where the execution logfile will be written. (env: IMGSIZE_LOGFILE)")
	_ = viper.BindPFlag("logfile", rootCmd.PersistentFlags().Lookup("logfile"))

	rootCmd.PersistentFlags().String("loglevel", "", "The verbosity of the imagesize tool itself. Ex. warn, debug, trace, info, error. (env: IMGSIZE_LOGLEVEL)")
	_ = viper.BindPFlag("loglevel", rootCmd.PersistentFlags().Lookup("loglevel"))

	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(trendCmd())
	rootCmd.AddCommand(previousCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func Execute() error {
	return rootCmd().ExecuteContext(context.Background())
}

func initConfig(viper *spfviper.Viper) {
	// set up ENV var support
	viper.SetEnvPrefix("imgsize")
	viper.AutomaticEnv()

	// set up optional config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	configFileUsed = true
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(spfviper.ConfigFileNotFoundError); ok {
			configFileUsed = false
		}
	}

	// Set up logging config defaults
	viper.SetDefault("logfile", DefaultLogFile)
	viper.SetDefault("loglevel", DefaultLogLevel)
	viper.SetDefault("artifacts", artifacts.DefaultArtifactsDir)

	// Set up registry defaults
	viper.SetDefault("registry", hub.DefaultBaseURL)
	viper.SetDefault("threshold", sizecheck.DefaultThreshold)
}

// preRunConfig is used by cobra.PreRun in all non-root commands to load all necessary configurations
func preRunConfig(cmd *cobra.Command, args []string) {
	viper := viper.Instance()
	l := log.L()
	l.SetFormatter(&logrus.TextFormatter{DisableColors: true})

	// set up logging
	logname := viper.GetString("logfile")
	logFile, err := os.OpenFile(logname, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err == nil {
		mw := io.MultiWriter(os.Stderr, logFile)
		l.SetOutput(mw)
	} else {
		l.Infof("Failed to log to file, using default stderr")
	}
	if ll, err := logrus.ParseLevel(viper.GetString("loglevel")); err == nil {
		l.SetLevel(ll)
	}

	if !configFileUsed {
		l.Debug("config file not found, proceeding without it")
	}

	logger := logrusr.New(l)
	ctx := logr.NewContext(cmd.Context(), logger)
	cmd.SetContext(ctx)
}
