package utils

import (
	"strings"

	"github.com/gosimple/slug"
)

// slugMaxLength matches the room_slug column size
const slugMaxLength = 50

func init() {
	// "&" is dropped rather than spelled out: "Tom & Jerry" is tom-jerry
	slug.CustomSub = map[string]string{"&": ""}
}

// Slugify derives the URL-safe room slug from a room name.
// "Team Alpha" becomes "team-alpha".
func Slugify(name string) string {
	s := slug.Make(name)
	if len(s) > slugMaxLength {
		s = strings.TrimRight(s[:slugMaxLength], "-")
	}
	return s
}
