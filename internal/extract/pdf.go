package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// ErrUnreadableDocument indicates an upload that is neither a readable PDF nor plain text.
var ErrUnreadableDocument = errors.New("unreadable document")

var pdfMagic = []byte("%PDF-")

// DocumentText returns the text of an uploaded report. PDFs are run through
// the text extractor; anything else must already be UTF-8 text.
func DocumentText(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), pdfMagic) {
		return PDFText(bytes.NewReader(data))
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: not a PDF or UTF-8 text", ErrUnreadableDocument)
	}
	return string(data), nil
}

// PDFText extracts the text of every page, in page order. Pages that fail to
// extract are skipped.
func PDFText(r io.ReadSeeker) (string, error) {
	pdfReader, err := model.NewPdfReader(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	enc, err := pdfReader.IsEncrypted()
	if err != nil {
		return "", fmt.Errorf("check encryption: %w", err)
	}
	if enc {
		ok, err := pdfReader.Decrypt([]byte(""))
		if err != nil {
			return "", fmt.Errorf("decrypt with empty password: %w", err)
		}
		if !ok {
			return "", fmt.Errorf("%w: password protected", ErrUnreadableDocument)
		}
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("page count: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			continue
		}
		ex, err := extractor.New(page)
		if err != nil {
			continue
		}
		text, err := ex.ExtractText()
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
