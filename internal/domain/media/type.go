package media

import "strings"

// Type is the kind of content a media item carries.
type Type string

const (
	TypeImage Type = "image"
	TypeVideo Type = "video"
	TypeAudio Type = "audio"
)

func (t Type) Valid() bool {
	switch t {
	case TypeImage, TypeVideo, TypeAudio:
		return true
	}
	return false
}

// TypeFromMIME maps a detected content type ("image/png", "video/mp4; ...")
// to a media type. Anything that is not image, video or audio is rejected.
func TypeFromMIME(mime string) (Type, bool) {
	major, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(mime)), "/")
	t := Type(major)
	return t, t.Valid()
}
