package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const sectionsSuffix = ".sections.json"

// Section is one titled block of the medical record.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// SectionTitle is the heading used for a record extracted at t.
func SectionTitle(t time.Time) string {
	return fmt.Sprintf("Extracted Medical Record (%s)", t.Format("2006-01-02 15:04:05"))
}

// AppendRecordSection adds a section to the PDF at pdfPath. The sections are
// kept in a JSON sidecar next to the PDF and the whole document is re-rendered,
// so earlier sections survive every append. A PDF without a sidecar has its
// text imported as the first section.
func AppendRecordSection(pdfPath string, section Section) error {
	sections, err := loadSections(pdfPath)
	if err != nil {
		return err
	}
	sections = append(sections, section)

	if err := renderRecord(pdfPath, sections); err != nil {
		return err
	}

	data, err := json.MarshalIndent(sections, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record sections: %w", err)
	}
	return writeFileAtomic(pdfPath+sectionsSuffix, data)
}

func loadSections(pdfPath string) ([]Section, error) {
	data, err := os.ReadFile(pdfPath + sectionsSuffix)
	if err == nil {
		var sections []Section
		if err := json.Unmarshal(data, &sections); err != nil {
			return nil, fmt.Errorf("decode record sections: %w", err)
		}
		return sections, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read record sections: %w", err)
	}

	legacy, err := ExtractText(pdfPath)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(legacy) == "" {
		return []Section{}, nil
	}
	return []Section{{Title: "Imported Medical Record", Content: legacy}}, nil
}

func renderRecord(pdfPath string, sections []Section) error {
	doc := fpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetMargins(15, 15, 15)
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()

	for _, s := range sections {
		doc.SetFont("Arial", "B", 14)
		doc.CellFormat(0, 10, tr(s.Title), "", 1, "L", false, 0, "")
		doc.Ln(4)
		doc.SetFont("Arial", "", 12)
		doc.MultiCell(0, 7, tr(s.Content), "", "L", false)
		doc.Ln(5)
	}

	dir := filepath.Dir(pdfPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create record dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".record-*.pdf")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	tmpName := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpName)

	if err := doc.OutputFileAndClose(tmpName); err != nil {
		return fmt.Errorf("render record pdf: %w", err)
	}
	return os.Rename(tmpName, pdfPath)
}
