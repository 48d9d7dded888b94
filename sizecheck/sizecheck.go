// Package sizecheck is the public entry point of the image size
// validation library. It fetches the published metadata of an image,
// compares every variant's size against the previous release, and
// reports the variants that grew beyond the allowed threshold.
package sizecheck

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/go-containerregistry/pkg/name"

	"github.com/containerci/imagesize/artifacts"
	imagesizeerr "github.com/containerci/imagesize/errors"
	"github.com/containerci/imagesize/hub"
	"github.com/containerci/imagesize/image"
	"github.com/containerci/imagesize/internal/predecessor"
	"github.com/containerci/imagesize/internal/report"
)

// DefaultThreshold is the allowed size growth, in percent, when the
// caller does not set one.
const DefaultThreshold = 5.0

// trendPageSize caps how many tags the size trend report covers.
const trendPageSize = 100

type Option = func(*sizeCheck)

type sizeCheck struct {
	image      string
	registry   string
	threshold  float64
	username   string
	password   string
	httpClient hub.HTTPClient
	out        io.Writer
}

// NewSizeCheck prepares a size validation of the given fully-qualified
// image. Unset options fall back to the public Docker Hub endpoint,
// anonymous access, the default threshold, and stdout reporting.
func NewSizeCheck(img string, opts ...Option) *sizeCheck {
	c := &sizeCheck{
		image:     img,
		registry:  hub.DefaultBaseURL,
		threshold: DefaultThreshold,
		out:       os.Stdout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithRegistry sets the registry API base URI, e.g. for a hub mirror.
func WithRegistry(uri string) Option {
	return func(c *sizeCheck) {
		if uri == "" {
			return
		}
		c.registry = uri
	}
}

// WithCredentials supplies a username and access secret for the
// session-token exchange. With an empty secret all calls stay
// anonymous.
func WithCredentials(username string, password string) Option {
	return func(c *sizeCheck) {
		c.username = username
		c.password = password
	}
}

// WithThreshold sets the allowed size growth in percent. A variant
// fails validation only when its change is strictly greater.
func WithThreshold(pct float64) Option {
	return func(c *sizeCheck) {
		c.threshold = pct
	}
}

// WithHTTPClient overrides the underlying HTTP client. Useful for
// tests and for callers with their own transport policy.
func WithHTTPClient(hc hub.HTTPClient) Option {
	return func(c *sizeCheck) {
		c.httpClient = hc
	}
}

// WithOutput redirects the report and statistics lines, which go to
// stdout otherwise.
func WithOutput(w io.Writer) Option {
	return func(c *sizeCheck) {
		c.out = w
	}
}

// ValidateImageSize compares every variant of the image against its
// previous release and returns the variants whose size grew more than
// the threshold allows. Variants whose predecessor cannot be pinned
// down to exactly one build are reported and skipped, not failed.
// Registry errors abort the run.
func (c *sizeCheck) ValidateImageSize(ctx context.Context) ([]hub.ImageVariant, error) {
	current, client, err := c.resolve(ctx)
	if err != nil {
		return nil, err
	}

	out := c.out
	var reportCopy bytes.Buffer
	aw := artifacts.WriterFromContext(ctx)
	if aw != nil {
		out = io.MultiWriter(c.out, &reportCopy)
	}
	reporter := report.New(out)

	currentRef := image.Reference{Repository: current.repository, Tag: current.tag}
	tagInfo, err := client.GetTag(ctx, current.repository, current.tag)
	if err != nil {
		return nil, err
	}

	imageID := report.NormalizeImageID(c.image)

	failed := []hub.ImageVariant{}
	for _, variant := range tagInfo.Images {
		reporter.Variant(imageID, variant)
		reporter.Statistic(imageID, variant.Size)

		previous, err := predecessor.FindByRegistry(ctx, client, currentRef, variant.OS, string(variant.OSVersion))
		if err != nil {
			return nil, err
		}
		if previous == nil || len(previous.Images) != 1 {
			reporter.Skipped(imageID, variant)
			continue
		}

		previousVariant := previous.Images[0]
		change := float64(variant.Size-previousVariant.Size) / float64(previousVariant.Size) * 100
		passed := change <= c.threshold
		reporter.Comparison(imageID, variant.Size, previousVariant.Size, change, passed)

		if !passed {
			failed = append(failed, variant)
		}
	}

	if aw != nil {
		if _, err := aw.WriteFile("size-validation.txt", &reportCopy); err != nil {
			return failed, fmt.Errorf("could not write validation report artifact: %w", err)
		}
	}

	return failed, nil
}

// PrintImageSizeTrend prints one CSV line per known tag of the image's
// repository, ordered by push time ascending: repo,tag,pushedAt,size.
func (c *sizeCheck) PrintImageSizeTrend(ctx context.Context) error {
	current, client, err := c.resolve(ctx)
	if err != nil {
		return err
	}

	out := c.out
	var trendCopy bytes.Buffer
	aw := artifacts.WriterFromContext(ctx)
	if aw != nil {
		out = io.MultiWriter(c.out, &trendCopy)
	}

	tags, err := client.ListTags(ctx, current.repository, "", trendPageSize)
	if err != nil {
		return err
	}

	report.New(out).Trend(current.repository, tags)

	if aw != nil {
		if _, err := aw.WriteFile("size-trend.csv", &trendCopy); err != nil {
			return fmt.Errorf("could not write trend artifact: %w", err)
		}
	}

	return nil
}

// PreviousImage predicts the predecessor of an image reference from
// its tag's versioning convention. It returns nil when the tag does
// not follow the <year>.<month>.<build>-<rest> pattern; the reason is
// logged through the context logger.
func PreviousImage(ctx context.Context, img string) *image.Reference {
	return predecessor.PredictPreviousTag(ctx, image.Parse(img))
}

type resolvedImage struct {
	repository string
	tag        string
}

// resolve parses the image argument and builds the hub client. The
// registry host prefix (if any) is understood the way container
// tooling does, so "registry.example.io/repo:tag" and "org/repo:tag"
// both land on the right hub repository path.
func (c *sizeCheck) resolve(_ context.Context) (resolvedImage, *hub.Client, error) {
	if c.image == "" {
		return resolvedImage{}, nil, imagesizeerr.ErrImageEmpty
	}

	tagRef, err := name.NewTag(c.image, name.WeakValidation)
	if err != nil {
		return resolvedImage{}, nil, fmt.Errorf("could not parse image reference %q: %w", c.image, err)
	}

	// official single-segment images resolve to the implicit
	// "library/" namespace, which is also where the tags API serves
	// them
	repository := tagRef.Context().RepositoryStr()

	httpClient := c.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	return resolvedImage{repository: repository, tag: tagRef.TagStr()},
		hub.NewClient(c.registry, c.username, c.password, httpClient),
		nil
}
