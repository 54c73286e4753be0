package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeFromMIME(t *testing.T) {
	cases := []struct {
		mime string
		want Type
		ok   bool
	}{
		{"image/png", TypeImage, true},
		{"video/mp4", TypeVideo, true},
		{"audio/mpeg", TypeAudio, true},
		{"Image/JPEG", TypeImage, true},
		{"application/pdf", "", false},
		{"text/plain; charset=utf-8", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := TypeFromMIME(tc.mime)
		assert.Equal(t, tc.ok, ok, tc.mime)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.mime)
		}
	}
}
