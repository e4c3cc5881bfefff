package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/akolanti/GoIndex/pkg/logger_i"
)

type DocType string

const (
	PDF  DocType = "pdf"
	DOCX DocType = "docx"
	TEXT DocType = "text"
	ERR  DocType = "unsupported"
)

type rawPage struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

var logger = logger_i.NewLogger("Document Extraction")

func getDocType(docPath string) DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return PDF
	case ".docx", ".odt", ".rtf":
		return DOCX
	case ".txt", ".md", "":
		return TEXT
	default:
		return ERR
	}
}

// ExtractFile returns the plain text of the file at path. Pages are joined by a blank line.
func ExtractFile(path string) (string, error) {
	docType := getDocType(path)
	logger.Debug("extracting document", "path", path, "type", docType)

	var pages []rawPage
	var err error
	switch docType {
	case PDF:
		pages, err = extractPDFPages(path)
	case DOCX, TEXT:
		pages, err = extractOfficeOrText(path)
	default:
		return "", fmt.Errorf("unsupported content type for %s", filepath.Base(path))
	}
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(pages))
	for _, page := range pages {
		if strings.TrimSpace(page.Content) != "" {
			parts = append(parts, page.Content)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}
