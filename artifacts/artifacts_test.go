package artifacts_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/containerci/imagesize/artifacts"
)

var _ = Describe("Artifacts package context management", func() {
	Context("When working with an ArtifactWriter from context", func() {
		It("Should be settable and retrievable using helper functions", func() {
			aw, err := artifacts.NewMapWriter()
			Expect(err).ToNot(HaveOccurred())

			ctx := artifacts.ContextWithWriter(context.Background(), aw)
			awRetrieved := artifacts.WriterFromContext(ctx)
			Expect(awRetrieved).ToNot(BeNil())
			Expect(awRetrieved).To(BeEquivalentTo(aw))
		})
	})

	It("Should return nil when there is no ArtifactWriter found in the context", func() {
		awRetrieved := artifacts.WriterFromContext(context.Background())
		Expect(awRetrieved).To(BeNil())
	})
})

var _ = Describe("MapWriter", func() {
	It("Should refuse to overwrite an existing file", func() {
		aw, err := artifacts.NewMapWriter()
		Expect(err).ToNot(HaveOccurred())

		_, err = aw.WriteFile("report.txt", strings.NewReader("first"))
		Expect(err).ToNot(HaveOccurred())

		_, err = aw.WriteFile("report.txt", strings.NewReader("second"))
		Expect(err).To(MatchError(artifacts.ErrFileAlreadyExists))
	})
})

var _ = Describe("FilesystemWriter", func() {
	It("Should write contents into the configured directory", func() {
		tmpDir, err := os.MkdirTemp("", "artifacts-*")
		Expect(err).ToNot(HaveOccurred())
		DeferCleanup(os.RemoveAll, tmpDir)

		aw, err := artifacts.NewFilesystemWriter(artifacts.WithDirectory(tmpDir))
		Expect(err).ToNot(HaveOccurred())
		Expect(aw.Path()).To(Equal(tmpDir))

		full, err := aw.WriteFile("trend.csv", strings.NewReader("a,b,c\n"))
		Expect(err).ToNot(HaveOccurred())
		Expect(full).To(Equal(filepath.Join(tmpDir, "trend.csv")))

		contents, err := os.ReadFile(full)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(contents)).To(Equal("a,b,c\n"))
	})
})
