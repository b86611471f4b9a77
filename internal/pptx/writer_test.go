package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readPackage(t *testing.T, data []byte) map[string]string {
	t.Helper()

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open package: %v", err)
	}

	files := make(map[string]string, len(reader.File))
	for _, file := range reader.File {
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("open %s: %v", file.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", file.Name, err)
		}
		files[file.Name] = string(content)
	}
	return files
}

func wellFormed(t *testing.T, name, content string) {
	t.Helper()

	decoder := xml.NewDecoder(strings.NewReader(content))
	for {
		_, err := decoder.Token()
		if err == io.EOF {
			return
		}
		if err != nil {
			t.Fatalf("%s is not well-formed XML: %v", name, err)
		}
	}
}

type runText struct {
	Paragraphs []struct {
		Runs []string `xml:"r>t"`
	} `xml:"p"`
}

type shapeProps struct {
	CNvPr struct {
		Name string `xml:"name,attr"`
	} `xml:"cNvPr"`
}

type slideDoc struct {
	Shapes []struct {
		NvSpPr shapeProps `xml:"nvSpPr"`
		Body   runText    `xml:"txBody"`
	} `xml:"cSld>spTree>sp"`
	Pictures []struct {
		BlipFill struct {
			Blip struct {
				Embed string `xml:"embed,attr"`
			} `xml:"blip"`
		} `xml:"blipFill"`
	} `xml:"cSld>spTree>pic"`
}

func TestWriteToProducesCompletePackage(t *testing.T) {
	t.Parallel()

	deck := New()
	deck.Title = "Solar & Wind"

	first := deck.AddSlide()
	first.Title.Text.SetText("Intro <1>")
	first.Body.Text.Clear()
	first.Body.Text.AddParagraph("a", 0)
	first.Body.Text.AddParagraph("b", 0)

	second := deck.AddSlide()
	second.Title.Text.SetText("Pictured")
	if _, err := second.AddPicture(writePNG(t, t.TempDir(), 40, 20), Inches(6), Inches(2), Inches(4)); err != nil {
		t.Fatalf("AddPicture: %v", err)
	}

	var buf bytes.Buffer
	n, err := deck.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo returned error: %v", err)
	}
	if n != int64(buf.Len()) {
		t.Fatalf("expected byte count %d, got %d", buf.Len(), n)
	}

	files := readPackage(t, buf.Bytes())

	required := []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"docProps/core.xml",
		"docProps/app.xml",
		"ppt/presentation.xml",
		"ppt/_rels/presentation.xml.rels",
		"ppt/slideMasters/slideMaster1.xml",
		"ppt/slideLayouts/slideLayout1.xml",
		"ppt/theme/theme1.xml",
		"ppt/slides/slide1.xml",
		"ppt/slides/slide2.xml",
		"ppt/slides/_rels/slide2.xml.rels",
		"ppt/media/image1.png",
	}
	for _, name := range required {
		if _, ok := files[name]; !ok {
			t.Fatalf("package is missing %s", name)
		}
	}

	for name, content := range files {
		if strings.HasSuffix(name, ".xml") || strings.HasSuffix(name, ".rels") {
			wellFormed(t, name, content)
		}
	}

	if !strings.Contains(files["[Content_Types].xml"], `Extension="png"`) {
		t.Fatalf("content types do not declare png media")
	}
	if !strings.Contains(files["docProps/core.xml"], "Solar &amp; Wind") {
		t.Fatalf("core properties missing escaped title")
	}
	if !strings.Contains(files["docProps/app.xml"], "<Slides>2</Slides>") {
		t.Fatalf("app properties have wrong slide count")
	}

	var doc slideDoc
	if err := xml.Unmarshal([]byte(files["ppt/slides/slide1.xml"]), &doc); err != nil {
		t.Fatalf("parse slide1: %v", err)
	}
	if len(doc.Shapes) != 2 {
		t.Fatalf("expected 2 shapes, got %d", len(doc.Shapes))
	}
	if doc.Shapes[0].NvSpPr.CNvPr.Name != "Title 1" || doc.Shapes[1].NvSpPr.CNvPr.Name != "Content Placeholder 2" {
		t.Fatalf("unexpected shape names %q, %q", doc.Shapes[0].NvSpPr.CNvPr.Name, doc.Shapes[1].NvSpPr.CNvPr.Name)
	}
	if got := doc.Shapes[0].Body.Paragraphs[0].Runs[0]; got != "Intro <1>" {
		t.Fatalf("unexpected title text %q", got)
	}
	if got := len(doc.Shapes[1].Body.Paragraphs); got != 2 {
		t.Fatalf("expected 2 body paragraphs, got %d", got)
	}

	var pictured slideDoc
	if err := xml.Unmarshal([]byte(files["ppt/slides/slide2.xml"]), &pictured); err != nil {
		t.Fatalf("parse slide2: %v", err)
	}
	if len(pictured.Pictures) != 1 || pictured.Pictures[0].BlipFill.Blip.Embed != "rId2" {
		t.Fatalf("unexpected pictures %+v", pictured.Pictures)
	}
	if !strings.Contains(files["ppt/slides/_rels/slide2.xml.rels"], `Target="../media/image1.png"`) {
		t.Fatalf("slide2 relationships do not reference the media part")
	}
}

func TestEmptyBodyStillRendersAParagraph(t *testing.T) {
	t.Parallel()

	deck := New()
	deck.AddSlide().Title.Text.SetText("Blank")

	var buf bytes.Buffer
	if _, err := deck.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo returned error: %v", err)
	}

	files := readPackage(t, buf.Bytes())

	var doc slideDoc
	if err := xml.Unmarshal([]byte(files["ppt/slides/slide1.xml"]), &doc); err != nil {
		t.Fatalf("parse slide1: %v", err)
	}
	if got := len(doc.Shapes[1].Body.Paragraphs); got != 1 {
		t.Fatalf("expected one empty paragraph, got %d", got)
	}
}

func TestSaveReplacesFileAtomically(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "deck.pptx")
	if err := os.WriteFile(path, []byte("stale"), 0o600); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	deck := New()
	deck.AddSlide().Title.Text.SetText("Fresh")

	if err := deck.Save(path); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved deck: %v", err)
	}
	files := readPackage(t, data)
	if !strings.Contains(files["ppt/slides/slide1.xml"], "Fresh") {
		t.Fatalf("saved deck does not contain the new slide")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the saved deck, found %d entries", len(entries))
	}
}

func TestSaveFailsForMissingDirectory(t *testing.T) {
	t.Parallel()

	deck := New()
	deck.AddSlide()

	path := filepath.Join(t.TempDir(), "missing", "deck.pptx")
	if err := deck.Save(path); err == nil {
		t.Fatalf("expected error for missing directory")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file at %s", path)
	}
}

func TestSaveRequiresPath(t *testing.T) {
	t.Parallel()

	if err := New().Save("  "); err == nil {
		t.Fatalf("expected error for blank path")
	}
}
