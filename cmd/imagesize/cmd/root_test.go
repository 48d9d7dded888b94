package cmd

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/containerci/imagesize/hub"
	"github.com/containerci/imagesize/internal/log"
	"github.com/containerci/imagesize/internal/viper"
	"github.com/containerci/imagesize/sizecheck"
)

// executeCommand is used for cobra command testing. It is effectively what's seen here:
// https://github.com/spf13/cobra/blob/master/command_test.go#L34-L43. It should only
// be used in tests. Typically, you should pass rootCmd as the param for root, and your
// subcommand's invocation within args.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err = root.Execute()

	return buf.String(), err
}

var _ = Describe("cmd package utility functions", func() {
	Describe("Get the root command", func() {
		Context("when calling the root command function", func() {
			It("should return a root command", func() {
				cmd := rootCmd()
				Expect(cmd).ToNot(BeNil())
				Expect(cmd.Commands()).ToNot(BeEmpty())
			})
		})
	})

	Describe("Configure the shared logger", func() {
		BeforeEach(createAndCleanupDirForArtifactsAndLogs)

		Context("when a command has run", func() {
			It("should have configured the package-local logrus instance", func() {
				_, err := executeCommand(rootCmd(), "previous", "teamcity-agent:2022.04.2-windowsservercore")
				Expect(err).ToNot(HaveOccurred())

				formatter, ok := log.L().Formatter.(*logrus.TextFormatter)
				Expect(ok).To(BeTrue())
				Expect(formatter.DisableColors).To(BeTrue())
			})
		})
	})

	Describe("Initialize Viper configuration", func() {
		Context("when initConfig() is called", func() {
			Context("and no envvars are set", func() {
				It("should have defaults set correctly", func() {
					initConfig(viper.Instance())
					Expect(viper.Instance().GetString("registry")).To(Equal(hub.DefaultBaseURL))
					Expect(viper.Instance().GetFloat64("threshold")).To(Equal(sizecheck.DefaultThreshold))
					Expect(viper.Instance().GetString("loglevel")).To(Equal(DefaultLogLevel))
				})
			})
		})
	})
})
