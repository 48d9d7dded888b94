package sizecheck

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/containerci/imagesize/artifacts"
	imagesizeerr "github.com/containerci/imagesize/errors"
)

var _ = Describe("SizeCheck", func() {
	ctx := context.Background()

	newCheck := func(threshold float64, out io.Writer) *sizeCheck {
		return NewSizeCheck(
			"jetbrains/teamcity-agent:2022.10.1-linux",
			WithRegistry("https://hub.example.com/v2"),
			WithThreshold(threshold),
			WithOutput(out),
			WithHTTPClient(&http.Client{Transport: localRoundTripper{handler: newAgentMux()}}),
		)
	}

	Context("Validating an image's size", func() {
		It("fails the variant that grew beyond the threshold", func() {
			var out bytes.Buffer
			failed, err := newCheck(5.0, &out).ValidateImageSize(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(failed).To(HaveLen(1))
			Expect(failed[0].OS).To(Equal("linux"))
			Expect(failed[0].Size).To(BeEquivalentTo(1100))

			Expect(out.String()).To(ContainSubstring("##teamcity[buildStatisticValue key='SIZE-teamcity-agent-linux' value='1100']"))
			Expect(out.String()).To(ContainSubstring("##teamcity[buildStatisticValue key='SIZE-teamcity-agent-linux' value='5000']"))
			Expect(out.String()).To(ContainSubstring("change 10.00%: FAILED"))
		})

		It("skips the variant with no determinable predecessor", func() {
			var out bytes.Buffer
			failed, err := newCheck(5.0, &out).ValidateImageSize(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(failed).To(HaveLen(1))
			Expect(out.String()).To(ContainSubstring("unable to determine previous image"))
		})

		It("passes a change exactly at the threshold", func() {
			var out bytes.Buffer
			failed, err := newCheck(10.0, &out).ValidateImageSize(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(failed).To(BeEmpty())
			Expect(out.String()).To(ContainSubstring("change 10.00%: OK"))
		})

		It("writes a report copy through the artifact writer in context", func() {
			aw, err := artifacts.NewMapWriter()
			Expect(err).ToNot(HaveOccurred())
			awCtx := artifacts.ContextWithWriter(ctx, aw)

			var out bytes.Buffer
			_, err = newCheck(5.0, &out).ValidateImageSize(awCtx)
			Expect(err).ToNot(HaveOccurred())
			Expect(aw.Files()).To(HaveKey("size-validation.txt"))
		})

		It("rejects an empty image", func() {
			var out bytes.Buffer
			_, err := NewSizeCheck("", WithOutput(&out)).ValidateImageSize(ctx)
			Expect(errors.Is(err, imagesizeerr.ErrImageEmpty)).To(BeTrue())
		})
	})

	Context("Printing the size trend", func() {
		It("prints one CSV line per tag, oldest first", func() {
			var out bytes.Buffer
			err := newCheck(5.0, &out).PrintImageSizeTrend(ctx)
			Expect(err).ToNot(HaveOccurred())

			expected := "jetbrains/teamcity-agent,2022.04.2-linux,2022-05-01T10:00:00.000000Z,950\n" +
				"jetbrains/teamcity-agent,2022.10-linux,2022-10-01T10:00:00.000000Z,1000\n" +
				"jetbrains/teamcity-agent,2022.10.1-linux,2022-10-20T10:00:00.000000Z,1100\n"
			Expect(out.String()).To(Equal(expected))
		})

		It("writes a CSV copy through the artifact writer in context", func() {
			aw, err := artifacts.NewMapWriter()
			Expect(err).ToNot(HaveOccurred())
			awCtx := artifacts.ContextWithWriter(ctx, aw)

			var out bytes.Buffer
			Expect(newCheck(5.0, &out).PrintImageSizeTrend(awCtx)).To(Succeed())
			Expect(aw.Files()).To(HaveKey("size-trend.csv"))
		})
	})

	Context("Predicting the previous image", func() {
		It("decrements the build number of a minor release tag", func() {
			previous := PreviousImage(ctx, "teamcity-agent:2022.04.2-windowsservercore")
			Expect(previous).ToNot(BeNil())
			Expect(previous.String()).To(Equal("teamcity-agent:2022.04.1-windowsservercore"))
		})

		It("returns nil for tags outside the versioning convention", func() {
			Expect(PreviousImage(ctx, "teamcity-agent:latest")).To(BeNil())
			Expect(PreviousImage(ctx, "teamcity-agent:2022.04-windowsservercore")).To(BeNil())
		})
	})
})
