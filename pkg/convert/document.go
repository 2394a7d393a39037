package convert

import (
	"strings"

	"github.com/jingkaihe/j2hugo/pkg/frontmatter"
)

// Document is a converted post ready to be written.
type Document struct {
	FrontMatter frontmatter.FrontMatter
	Body        string
}

// Render serialises the document. Non-empty front matter is emitted between
// delimiter lines ahead of the body. Line endings are normalised to \n and
// lines are joined without a trailing newline.
func (d Document) Render() (string, error) {
	var lines []string
	if len(d.FrontMatter) > 0 {
		data, err := frontmatter.Marshal(d.FrontMatter)
		if err != nil {
			return "", err
		}
		lines = append(lines, frontmatter.Delimiter)
		lines = append(lines, splitLines(string(data))...)
		lines = append(lines, frontmatter.Delimiter)
	}
	lines = append(lines, splitLines(d.Body)...)
	return strings.Join(lines, "\n"), nil
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
