package services

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path"
	"strings"

	"github.com/joho/godotenv"
	officelicense "github.com/unidoc/unioffice/common/license"
	"github.com/unidoc/unioffice/document"
	pdflicense "github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

func init() {

	// Load .env file from the current directory
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}
	key := os.Getenv("UNIDOC_LICENSE_KEY")
	if err := pdflicense.SetMeteredKey(key); err != nil {
		fmt.Printf("ERROR: Failed to set Unidoc PDF license key: %v. PDF extraction will yield empty text.\n", err)
	}
	if err := officelicense.SetMeteredKey(key); err != nil {
		fmt.Printf("ERROR: Failed to set Unidoc Office license key: %v. DOCX extraction will yield empty text.\n", err)
	}
}

// ExtractText derives plain text from raw object bytes based on the
// key's extension. Extraction failures are soft: any unreadable file
// yields "" and is simply left out of the context bundle.
func ExtractText(key string, raw []byte) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".pdf":
		return extractTextFromPDF(raw)
	case ".docx", ".doc":
		return extractTextFromDOCX(raw)
	default:
		return decodePlainText(raw)
	}
}

// extractTextFromPDF uses UniPDF to get all text, page by page.
func extractTextFromPDF(raw []byte) string {
	pdfReader, err := model.NewPdfReader(bytes.NewReader(raw))
	if err != nil {
		return ""
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return ""
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return ""
		}

		ex, err := extractor.New(page)
		if err != nil {
			return ""
		}

		text, err := ex.ExtractText()
		if err != nil {
			return ""
		}
		sb.WriteString(text)
		sb.WriteString("\n\n") // Add space between pages
	}

	return sb.String()
}

// extractTextFromDOCX reads the document paragraph by paragraph.
func extractTextFromDOCX(raw []byte) string {
	doc, err := document.Read(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return ""
	}

	lines := make([]string, 0, len(doc.Paragraphs()))
	for _, paragraph := range doc.Paragraphs() {
		var sb strings.Builder
		for _, run := range paragraph.Runs() {
			sb.WriteString(run.Text())
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}

// decodePlainText tolerates invalid UTF-8 rather than failing.
func decodePlainText(raw []byte) string {
	return strings.ToValidUTF8(string(raw), "")
}
