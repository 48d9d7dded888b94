package hub

import "encoding/json"

// TagsPage is one page of a repository's tag listing. The listing is
// not ordered by tag name; callers that care about temporal order must
// sort by TagLastPushed themselves.
type TagsPage struct {
	Count    int       `json:"count"`
	Next     *string   `json:"next"`
	Previous *string   `json:"previous"`
	Results  []TagInfo `json:"results"`
}

// TagInfo is one tag's metadata as returned by the hub.
type TagInfo struct {
	Name                string         `json:"name"`
	TagStatus           string         `json:"tag_status"`
	TagLastPushed       string         `json:"tag_last_pushed"`
	LastUpdaterUsername string         `json:"last_updater_username"`
	FullSize            int64          `json:"full_size"`
	Images              []ImageVariant `json:"images"`
}

// ImageVariant is one OS/architecture build published under a tag.
type ImageVariant struct {
	Architecture string     `json:"architecture"`
	Variant      FlexString `json:"variant"`
	OS           string     `json:"os"`
	OSVersion    FlexString `json:"os_version"`
	Size         int64      `json:"size"`
	Status       string     `json:"status"`
	Digest       string     `json:"digest"`
	LastPushed   string     `json:"last_pushed"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// FlexString decodes a JSON value that the hub serves either as a
// string or as a number, depending on server version. Numbers keep
// their decimal text; null becomes the empty string. A strict string
// here has broken decodes in the past, so keep the coercion.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())

	return nil
}
