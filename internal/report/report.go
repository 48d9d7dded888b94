// Package report formats the console output of the size validation:
// TeamCity build-statistic service messages, per-variant comparison
// lines, and the CSV size trend of a repository.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/containerci/imagesize/hub"
)

// Reporter writes all human- and CI-facing output lines. Out defaults
// to the caller's choice; the CLI passes os.Stdout.
type Reporter struct {
	Out io.Writer
}

func New(out io.Writer) *Reporter {
	return &Reporter{Out: out}
}

// NormalizeImageID reduces a fully-qualified image id to a stable key
// for the statistics system: the registry host is stripped, and the
// tag's leading version segment is dropped so every release of the
// same logical image maps to the same key, e.g.
// registry.example.io/teamcity-agent:2022.10-windowsservercore-1809
// becomes teamcity-agent-windowsservercore-1809.
func NormalizeImageID(fqdn string) string {
	nameAndTag := fqdn
	if idx := strings.LastIndex(nameAndTag, "/"); idx >= 0 {
		nameAndTag = nameAndTag[idx+1:]
	}

	idx := strings.LastIndex(nameAndTag, ":")
	if idx < 0 {
		return nameAndTag
	}

	name := nameAndTag[:idx]
	tag := nameAndTag[idx+1:]

	parts := strings.SplitN(tag, "-", 2)
	if len(parts) < 2 {
		return name
	}

	return name + "-" + parts[1]
}

// Statistic emits one TeamCity build-statistic service message for an
// image size data point. The marker syntax is consumed verbatim by the
// build server and must not change.
func (r *Reporter) Statistic(imageID string, sizeBytes int64) {
	fmt.Fprintf(r.Out, "##teamcity[buildStatisticValue key='SIZE-%s' value='%d']\n", imageID, sizeBytes)
}

// Variant announces which image variant is being validated.
func (r *Reporter) Variant(imageID string, v hub.ImageVariant) {
	fmt.Fprintf(r.Out, "Validating %s (%s/%s %s)\n", imageID, v.OS, v.Architecture, v.OSVersion)
}

// Comparison reports both sizes and the percentage change, rounded to
// two decimals, regardless of outcome.
func (r *Reporter) Comparison(imageID string, currentBytes int64, previousBytes int64, percentageChange float64, passed bool) {
	verdict := "OK"
	if !passed {
		verdict = "FAILED"
	}
	fmt.Fprintf(r.Out, "%s: current %d bytes, previous %d bytes, change %.2f%%: %s\n",
		imageID, currentBytes, previousBytes, percentageChange, verdict)
}

// Skipped reports a variant left unscored because no single previous
// variant could be determined.
func (r *Reporter) Skipped(imageID string, v hub.ImageVariant) {
	fmt.Fprintf(r.Out, "%s (%s/%s): unable to determine previous image, skipping comparison\n",
		imageID, v.OS, v.Architecture)
}

// Trend prints one CSV-like line per known tag of the repository,
// ordered by push time ascending: repo,tag,pushedAt,sizeBytes.
func (r *Reporter) Trend(repository string, tags []hub.TagInfo) {
	ordered := make([]hub.TagInfo, len(tags))
	copy(ordered, tags)
	// tag_last_pushed is ISO-8601, lexical order is chronological
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].TagLastPushed < ordered[j].TagLastPushed
	})

	for _, tag := range ordered {
		fmt.Fprintf(r.Out, "%s,%s,%s,%d\n", repository, tag.Name, tag.TagLastPushed, tag.FullSize)
	}
}
