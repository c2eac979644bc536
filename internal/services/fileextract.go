package services

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"studybuddy-backend/internal/models"
)

// MaxInlineBytes is the largest file sent to Gemini as an inline part.
const MaxInlineBytes = 20 << 20

// FileExtractService turns an uploaded file into generation input: plain text
// for text-like formats, an inline attachment for PDFs that fit the inline limit.
type FileExtractService struct {
	maxInline int
}

func NewFileExtractService() *FileExtractService {
	return &FileExtractService{maxInline: MaxInlineBytes}
}

func (s *FileExtractService) Extract(fileName string, data []byte) (*models.UploadResponse, error) {
	resp := &models.UploadResponse{FileName: filepath.Base(fileName)}
	if len(data) == 0 {
		return nil, fileError("File is empty")
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".txt", ".md":
		text, err := s.extractTXT(data)
		if err != nil {
			return nil, err
		}
		resp.SourceText = text
	case ".docx":
		text, err := s.extractDOCX(data)
		if err != nil {
			return nil, err
		}
		resp.SourceText = text
	case ".pdf":
		if len(data) <= s.maxInline {
			resp.AttachedFile = &models.AttachedFile{
				MIMEType:   "application/pdf",
				Base64Data: base64.StdEncoding.EncodeToString(data),
			}
			return resp, nil
		}
		text, err := s.extractPDF(data)
		if err != nil {
			return nil, err
		}
		resp.SourceText = text
	case ".pptx":
		return nil, fileError("PowerPoint files are not supported here. Send the slide text instead")
	default:
		return nil, fileError(fmt.Sprintf("Unsupported file type: %s", ext))
	}

	return resp, nil
}

func (s *FileExtractService) extractTXT(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fileError("Text file is not valid UTF-8")
	}

	text := normalizeExtractedText(string(data))
	if text == "" {
		return "", fileError("Text file is empty")
	}

	return text, nil
}

func (s *FileExtractService) extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fileError("Could not read PDF file")
	}

	var b strings.Builder
	totalPage := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	text := normalizeExtractedText(b.String())
	if text == "" {
		return "", fileError("No extractable text found in PDF")
	}

	return text, nil
}

func (s *FileExtractService) extractDOCX(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fileError("Could not read Word document")
	}

	var documentXML []byte
	for _, f := range r.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fileError("Could not read Word document")
		}
		documentXML, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fileError("Could not read Word document")
		}
		break
	}

	if len(documentXML) == 0 {
		return "", fileError("Word document has no body")
	}

	text := normalizeExtractedText(stripDOCXML(documentXML))
	if text == "" {
		return "", fileError("No extractable text found in Word document")
	}

	return text, nil
}

func fileError(msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{"file": msg}}
}

var xmlTagPattern = regexp.MustCompile(`<[^>]+>`)

var xmlEntities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
)

func stripDOCXML(src []byte) string {
	s := string(src)

	// Paragraph and line breaks
	s = strings.ReplaceAll(s, "</w:p>", "\n")
	s = strings.ReplaceAll(s, "<w:br/>", "\n")
	s = strings.ReplaceAll(s, "<w:br />", "\n")
	s = strings.ReplaceAll(s, "<w:tab/>", "\t")

	s = xmlTagPattern.ReplaceAllString(s, "")
	return xmlEntities.Replace(s)
}

// normalizeExtractedText trims every line and collapses runs of blank lines to one.
func normalizeExtractedText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var buf strings.Builder
	emptyCount := 0
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			emptyCount++
			if emptyCount > 1 {
				continue
			}
			buf.WriteString("\n")
			continue
		}
		emptyCount = 0
		buf.WriteString(trimmed)
		buf.WriteString("\n")
	}

	return strings.TrimSpace(buf.String())
}
