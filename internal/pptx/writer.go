package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/rotisserie/eris"
)

// Save writes the deck to path, replacing any existing file. The document is written to a
// sibling temporary file first, so a failed save leaves no partial document behind.
func (p *Presentation) Save(path string) error {
	if strings.TrimSpace(path) == "" {
		return eris.New("output path is required")
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pptgen-*.tmp")
	if err != nil {
		return eris.Wrapf(err, "creating temporary file in %s", dir)
	}
	tmpPath := tmp.Name()

	if _, err := p.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return eris.Wrap(err, "writing presentation")
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return eris.Wrap(err, "closing temporary file")
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return eris.Wrapf(err, "moving presentation to %s", path)
	}

	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}

// WriteTo serialises the deck as an Office Open XML package.
func (p *Presentation) WriteTo(w io.Writer) (int64, error) {
	counter := &countingWriter{w: w}
	zw := zip.NewWriter(counter)

	parts, err := p.parts()
	if err != nil {
		return counter.n, err
	}

	for _, part := range parts {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     part.name,
			Method:   zip.Deflate,
			Modified: p.Created,
		})
		if err != nil {
			return counter.n, eris.Wrapf(err, "creating part %s", part.name)
		}
		if _, err := fw.Write(part.data); err != nil {
			return counter.n, eris.Wrapf(err, "writing part %s", part.name)
		}
	}

	if err := zw.Close(); err != nil {
		return counter.n, eris.Wrap(err, "finalising package")
	}

	return counter.n, nil
}

type part struct {
	name string
	data []byte
}

type pictureView struct {
	RelID   string
	Target  string
	Frame   Rect
	ShapeID int
}

type slideView struct {
	Number   int
	Title    *Placeholder
	Body     *Placeholder
	Pictures []pictureView
}

type packageView struct {
	Title      string
	Author     string
	Created    string
	Slides     []slideView
	Extensions []string
}

func (p *Presentation) parts() ([]part, error) {
	view := packageView{
		Title:   p.Title,
		Author:  p.Author,
		Created: p.Created.UTC().Format(time.RFC3339),
	}

	var media []part
	extensions := map[string]bool{}

	for _, slide := range p.slides {
		sv := slideView{Number: slide.number, Title: slide.Title, Body: slide.Body}
		for i, picture := range slide.pictures {
			name := fmt.Sprintf("image%d.%s", len(media)+1, picture.ext)
			media = append(media, part{name: "ppt/media/" + name, data: picture.data})
			extensions[picture.ext] = true

			// Shape ids 2 and 3 belong to the title and body placeholders.
			sv.Pictures = append(sv.Pictures, pictureView{
				RelID:   fmt.Sprintf("rId%d", i+2),
				Target:  "../media/" + name,
				Frame:   picture.Frame,
				ShapeID: 4 + i,
			})
		}
		view.Slides = append(view.Slides, sv)
	}

	for _, ext := range []string{"png", "jpeg", "gif"} {
		if extensions[ext] {
			view.Extensions = append(view.Extensions, ext)
		}
	}

	parts := make([]part, 0, len(staticParts)+6+2*len(view.Slides)+len(media))
	render := func(name string, tmpl *template.Template, data any) error {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return eris.Wrapf(err, "rendering %s", name)
		}
		parts = append(parts, part{name: name, data: buf.Bytes()})
		return nil
	}

	if err := render("[Content_Types].xml", contentTypesTemplate, view); err != nil {
		return nil, err
	}
	parts = append(parts, part{name: "_rels/.rels", data: []byte(packageRels)})

	for _, item := range []struct {
		name string
		tmpl *template.Template
	}{
		{"docProps/core.xml", coreTemplate},
		{"docProps/app.xml", appTemplate},
		{"ppt/presentation.xml", presentationTemplate},
		{"ppt/_rels/presentation.xml.rels", presentationRelsTemplate},
	} {
		if err := render(item.name, item.tmpl, view); err != nil {
			return nil, err
		}
	}

	for _, sp := range staticParts {
		parts = append(parts, part{name: sp.name, data: []byte(sp.content)})
	}

	for _, sv := range view.Slides {
		if err := render(fmt.Sprintf("ppt/slides/slide%d.xml", sv.Number), slideTemplate, sv); err != nil {
			return nil, err
		}
		if err := render(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", sv.Number), slideRelsTemplate, sv); err != nil {
			return nil, err
		}
	}

	return append(parts, media...), nil
}

func escapeXML(value string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(value))
	return buf.String()
}

var templateFuncs = template.FuncMap{
	"esc": escapeXML,
	"add": func(a, b int) int { return a + b },
}

func mustTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(templateFuncs).Parse(text))
}
