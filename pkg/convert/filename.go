package convert

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var filenameRegex = regexp.MustCompile(`^(\d+-\d+-\d+)-(.*)$`)

// Filename is what a Jekyll post name such as 2019-01-02-hello.md encodes.
type Filename struct {
	Date time.Time
	Slug string
	URL  string
}

// ParseFilename extracts the publication date and slug from a Jekyll post
// file name. ok is false when the name has no YYYY-MM-DD- prefix; Slug and
// URL are still derived from the bare name in that case.
func ParseFilename(name string) (Filename, bool) {
	slug := strings.TrimSuffix(name, filepath.Ext(name))

	m := filenameRegex.FindStringSubmatch(slug)
	if m == nil {
		return Filename{Slug: slug, URL: "/" + slug}, false
	}

	date, err := time.Parse("2006-1-2", m[1])
	if err != nil {
		return Filename{Slug: slug, URL: "/" + slug}, false
	}

	return Filename{
		Date: date,
		Slug: m[2],
		URL:  "/" + date.Format("2006/01/02") + "/" + m[2] + "/",
	}, true
}
