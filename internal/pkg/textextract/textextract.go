// Package textextract turns stored material files into plain text.
package textextract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const (
	MimePDF    = "application/pdf"
	MimeText   = "text/plain"
	MimeDOCX   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeMSWord = "application/msword"
)

// ErrUnsupported is returned for formats without an extractor (legacy .doc).
var ErrUnsupported = errors.New("text extraction not supported for this format")

// Extract dispatches on the stored MIME type.
func Extract(mimeType string, data []byte) (string, error) {
	switch mimeType {
	case MimePDF:
		return PDF(bytes.NewReader(data))
	case MimeDOCX:
		return DOCX(data)
	case MimeMSWord:
		return "", ErrUnsupported
	default:
		return Plain(data), nil
	}
}

// PDF reads the entire content of r and extracts plain text from the PDF.
// Returns empty string and nil error if the PDF has no extractable text.
func PDF(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", nil
	}
	pdfReader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", err
	}
	plainReader, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(plainReader)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Plain returns data as text, dropping invalid UTF-8 sequences.
func Plain(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "")
}

// DOCX pulls the text runs out of word/document.xml, one line per paragraph.
func DOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return documentText(rc)
	}
	return "", errors.New("word/document.xml not found")
}

func documentText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var sb strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
