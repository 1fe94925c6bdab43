package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"DocumentTonality/internal/domain"
)

const docxBodyPart = "word/document.xml"

// ResolveFormat returns the declared format of a document. The key's extension
// wins; content sniffing is used only when the key has no extension.
func ResolveFormat(key string, data []byte) domain.Format {
	if format, hasExt := domain.FormatFromKey(key); hasExt {
		return format
	}
	return domain.FormatFromExtension(mimetype.Detect(data).Extension())
}

// Text decodes data as UTF-8 verbatim.
func Text(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("text is not valid utf-8")
	}
	return string(data), nil
}

// DOCX joins the text of every non-empty top-level body paragraph with a single space.
func DOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}

	var part *zip.File
	for _, f := range archive.File {
		if f.Name == docxBodyPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", fmt.Errorf("docx archive has no %s", docxBodyPart)
	}

	rc, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", docxBodyPart, err)
	}
	defer rc.Close()

	paragraphs, err := docxParagraphs(rc)
	if err != nil {
		return "", err
	}
	return strings.Join(paragraphs, " "), nil
}

// docxParagraphs collects text from the runs of top-level body paragraphs.
// Paragraphs nested in a run (text boxes) and mc:Fallback content are skipped.
func docxParagraphs(r io.Reader) ([]string, error) {
	var (
		paragraphs    []string
		current       strings.Builder
		tableDepth    int
		paraDepth     int
		runDepth      int
		fallbackDepth int
		inText        bool
	)

	decoder := xml.NewDecoder(r)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return paragraphs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", docxBodyPart, err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "Fallback" || fallbackDepth > 0 {
				fallbackDepth++
				continue
			}
			inRun := paraDepth == 1 && runDepth > 0
			switch el.Name.Local {
			case "tbl":
				tableDepth++
			case "p":
				paraDepth++
				if paraDepth == 1 {
					current.Reset()
				}
			case "r":
				runDepth++
			case "t":
				inText = inRun
			case "tab":
				if inRun {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if inRun {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if fallbackDepth > 0 {
				fallbackDepth--
				continue
			}
			switch el.Name.Local {
			case "tbl":
				tableDepth--
			case "p":
				if paraDepth == 1 && tableDepth == 0 {
					if text := current.String(); strings.TrimSpace(text) != "" {
						paragraphs = append(paragraphs, text)
					}
				}
				paraDepth--
			case "r":
				runDepth--
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(el)
			}
		}
	}
}

// PDF joins the text of every page, in page order, with a single space.
func PDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, " "), nil
}

// HTML returns the visible body text with whitespace collapsed.
func HTML(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript, template").Remove()

	body := doc.Find("body").First()
	if body.Length() == 0 {
		body = doc.Selection
	}
	return strings.Join(strings.Fields(body.Text()), " "), nil
}
