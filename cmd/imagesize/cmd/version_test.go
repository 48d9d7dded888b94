package cmd

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/containerci/imagesize/version"
)

var _ = Describe("version command", func() {
	BeforeEach(createAndCleanupDirForArtifactsAndLogs)

	Context("when running the version command", func() {
		It("should print the version and commit", func() {
			out, err := executeCommand(rootCmd(), "version")
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(ContainSubstring(version.Version.String()))
		})

		It("should reject positional arguments", func() {
			_, err := executeCommand(rootCmd(), "version", "extra")
			Expect(err).To(HaveOccurred())
		})
	})
})
