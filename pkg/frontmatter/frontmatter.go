// Package frontmatter splits Jekyll front matter from post bodies, normalises
// it into the shape Hugo expects and serialises it back to YAML.
package frontmatter

import (
	"bytes"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// Delimiter opens and closes a YAML front-matter block.
	Delimiter = "---"

	KeyDate       = "date"
	KeyTitle      = "title"
	KeyLayout     = "layout"
	KeyTags       = "tags"
	KeyCategories = "categories"
	KeyCategory   = "category"
)

// listKeys are fields Hugo expects as lists of terms.
var listKeys = []string{KeyTags, KeyCategories, KeyCategory}

var yamlFormat = frontmatter.NewFormat(Delimiter, Delimiter, yaml.Unmarshal)

// ParseError reports a front-matter block the YAML decoder rejected.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "malformed front matter: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Split separates a leading front-matter block from the rest of content. The
// block must start on the first line. Content without a block yields empty
// front matter and the whole content as body. A block that is not a valid
// YAML mapping yields a *ParseError.
func Split(content []byte) (FrontMatter, []byte, error) {
	if !bytes.HasPrefix(content, []byte(Delimiter)) {
		return FrontMatter{}, content, nil
	}

	var raw map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(content), &raw, yamlFormat)
	if err != nil {
		return nil, nil, &ParseError{Err: err}
	}
	return FromMap(raw), body, nil
}

// Normalize rewrites fm in place for Hugo and returns it. A nil fm is
// allocated.
//
// date and title are always overwritten, layout is dropped, string values of
// tags, categories and category are split on whitespace, and category
// replaces categories.
func Normalize(fm FrontMatter, date time.Time, title string) FrontMatter {
	if fm == nil {
		fm = FrontMatter{}
	}

	fm[KeyDate] = Time{date}
	fm[KeyTitle] = String(title)
	delete(fm, KeyLayout)

	for _, key := range listKeys {
		if s, ok := fm[key].(String); ok {
			fm[key] = Strings(strings.Fields(string(s))...)
		}
	}

	if v, ok := fm[KeyCategory]; ok {
		fm[KeyCategories] = v
		delete(fm, KeyCategory)
	}

	return fm
}

// Marshal encodes fm as YAML with sorted keys and two-space indentation. The
// output has no delimiters and ends with a newline.
func Marshal(fm FrontMatter) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm.Map()); err != nil {
		return nil, errors.Wrap(err, "failed to encode front matter")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to encode front matter")
	}
	return buf.Bytes(), nil
}
