package cmd

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("previous command", func() {
	BeforeEach(createAndCleanupDirForArtifactsAndLogs)

	Context("when the tag follows the versioning convention", func() {
		It("should print the predicted predecessor", func() {
			out, err := executeCommand(rootCmd(), "previous", "teamcity-agent:2022.04.2-windowsservercore")
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(ContainSubstring("teamcity-agent:2022.04.1-windowsservercore"))
		})
	})

	Context("when the tag cannot be predicted", func() {
		It("should return an error carrying the reason", func() {
			_, err := executeCommand(rootCmd(), "previous", "teamcity-agent:latest")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("no predecessor is predictable"))
			Expect(err.Error()).To(ContainSubstring("versioning convention"))
		})

		It("should explain a non-numeric build segment", func() {
			_, err := executeCommand(rootCmd(), "previous", "teamcity-agent:2022.04.x-linux")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("not numeric"))
		})
	})
})
