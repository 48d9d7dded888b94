// Package predecessor determines the most likely previous release of a
// published image, either by querying the registry or by arithmetic
// prediction from the tag's versioning convention.
package predecessor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-logr/logr"

	"github.com/containerci/imagesize/hub"
	"github.com/containerci/imagesize/image"
	"github.com/containerci/imagesize/internal/log"
)

// listPageSize bounds how far back in the listing the registry lookup
// searches for a predecessor.
const listPageSize = 50

// TagLister is the hub functionality required by the registry lookup.
type TagLister interface {
	ListTags(ctx context.Context, repo string, tag string, pageSize int) ([]hub.TagInfo, error)
}

// FindByRegistry looks the predecessor of current up in the registry:
// among the most recent tags of the repository, it keeps those sharing
// the current tag's suffix after its first dash (same release family,
// different version number), and selects the one pushed last. The
// returned TagInfo is a copy whose variants are filtered to targetOS,
// and to osVersion when one is given. A version mismatch falls back to
// the OS-only filter and is logged, not failed.
//
// A nil, nil return means no predecessor could be determined; hub
// errors are fatal and returned as-is.
func FindByRegistry(ctx context.Context, client TagLister, current image.Reference, targetOS string, osVersion string) (*hub.TagInfo, error) {
	logger := logr.FromContextOrDiscard(ctx)

	if targetOS == "" {
		targetOS = "linux"
	}

	parts := strings.SplitN(current.Tag, "-", 2)
	if len(parts) < 2 {
		logger.Info("tag carries no suffix to match a release family against", "tag", current.Tag)
		return nil, nil
	}
	suffix := parts[1]

	tags, err := client.ListTags(ctx, current.Repository, "", listPageSize)
	if err != nil {
		return nil, err
	}

	var selected *hub.TagInfo
	for i := range tags {
		candidate := &tags[i]
		if candidate.Name == current.Tag {
			continue
		}
		if !strings.Contains(candidate.Name, suffix) {
			logger.V(log.DBG).Info("candidate is not part of the release family", "candidate", candidate.Name, "suffix", suffix)
			continue
		}
		// tag_last_pushed is ISO-8601, so lexical order is
		// chronological order
		if selected == nil || candidate.TagLastPushed > selected.TagLastPushed {
			selected = candidate
		}
	}

	if selected == nil {
		logger.Info("no previous image found in the registry", "repository", current.Repository, "tag", current.Tag)
		return nil, nil
	}

	filtered := filterVariants(selected.Images, targetOS, "")
	if osVersion != "" {
		versioned := filterVariants(filtered, targetOS, osVersion)
		if len(versioned) == 0 {
			logger.Info("previous tag has no variant for the OS version, keeping the OS-only match",
				"tag", selected.Name, "os", targetOS, "osVersion", osVersion)
		} else {
			filtered = versioned
		}
	}

	// the decoded response stays untouched; hand back a filtered copy
	previous := *selected
	previous.Images = filtered

	return &previous, nil
}

// filterVariants returns a new slice holding the variants matching os,
// and osVersion when non-empty.
func filterVariants(variants []hub.ImageVariant, os string, osVersion string) []hub.ImageVariant {
	filtered := make([]hub.ImageVariant, 0, len(variants))
	for _, v := range variants {
		if v.OS != os {
			continue
		}
		if osVersion != "" && string(v.OSVersion) != osVersion {
			continue
		}
		filtered = append(filtered, v)
	}

	return filtered
}

// PredictPreviousTag derives the predecessor of a
// <year>.<month>.<build>-<rest> tag by decrementing the build number,
// e.g. 2022.04.2-windowsservercore predicts 2022.04.1-windowsservercore.
// Tags without a build segment are not predictable and yield nil with
// a logged reason.
//
// The rewrite is a literal first-occurrence substring replacement of
// "<year>.<month>.<build>-", and the decremented number is never
// zero-padded. Downstream tagging relies on these exact semantics.
func PredictPreviousTag(ctx context.Context, current image.Reference) *image.Reference {
	logger := logr.FromContextOrDiscard(ctx)

	segments := strings.Split(current.Tag, ".")
	if len(segments) < 2 {
		logger.Info("tag does not follow the <year>.<month> versioning convention", "tag", current.Tag)
		return nil
	}
	if len(segments) < 3 {
		logger.Info("tag has no build segment, only minor releases are predictable", "tag", current.Tag)
		return nil
	}

	buildText := strings.SplitN(segments[2], "-", 2)[0]
	build, err := strconv.Atoi(buildText)
	if err != nil {
		logger.Info("tag build segment is not numeric", "tag", current.Tag, "segment", segments[2])
		return nil
	}

	previousTag := strings.Replace(
		current.Tag,
		fmt.Sprintf("%s.%s.%s-", segments[0], segments[1], buildText),
		fmt.Sprintf("%s.%s.%d-", segments[0], segments[1], build-1),
		1,
	)

	return &image.Reference{Repository: current.Repository, Tag: previousTag}
}
