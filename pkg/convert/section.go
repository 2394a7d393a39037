package convert

import (
	"bytes"
	"text/template"

	"github.com/pkg/errors"
)

const sectionIndexTemplate = `---
title: "{{ .Label }} - {{ .Dir }}"
date: {{ .Date }}
description: {{ .Label }} for {{ .Dir }}
archetype: {{ .Archetype }}
---

{{ .Label }} for {{ .Dir }}
`

var sectionTmpl = template.Must(template.New("section").Parse(sectionIndexTemplate))

// SectionIndex describes the _index.md written for each new output section.
type SectionIndex struct {
	Label     string
	Date      string
	Archetype string
}

// DefaultSectionIndex returns the stock section index settings.
func DefaultSectionIndex() SectionIndex {
	return SectionIndex{
		Label:     "MOBB Docs and Guides",
		Date:      "2022-09-14",
		Archetype: "chapter",
	}
}

// Render returns the index page for the section directory named dir.
func (s SectionIndex) Render(dir string) (string, error) {
	var buf bytes.Buffer
	err := sectionTmpl.Execute(&buf, struct {
		SectionIndex
		Dir string
	}{s, dir})
	if err != nil {
		return "", errors.Wrap(err, "failed to render section index")
	}
	return buf.String(), nil
}
