// Package image holds the image reference type shared across the
// validation library.
package image

import "strings"

// Reference identifies one image within a registry by repository and
// tag. An empty Tag means "unspecified", in which case lookups target
// all tags of the repository.
type Reference struct {
	Repository string
	Tag        string
}

// Parse splits s on its last colon into repository and tag. A string
// without a colon is a bare repository. No character validation is
// performed here; a bad reference surfaces at lookup time.
func Parse(s string) Reference {
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return Reference{Repository: s}
	}

	return Reference{
		Repository: s[:idx],
		Tag:        s[idx+1:],
	}
}

func (r Reference) String() string {
	if r.Tag == "" {
		return r.Repository
	}

	return r.Repository + ":" + r.Tag
}
