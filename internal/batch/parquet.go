package batch

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/ocrflow/ocrflow/internal/models"
)

// documentRow is the flattened per-document record for the parquet export.
// The raw OCR payload stays in the JSON report only.
type documentRow struct {
	DocumentName    string `parquet:"document_name"`
	MarkdownContent string `parquet:"markdown_content"`
	PageCount       int32  `parquet:"page_count"`
}

func toRows(documents []models.DocumentRecord) []documentRow {
	rows := make([]documentRow, 0, len(documents))
	for _, doc := range documents {
		rows = append(rows, documentRow{
			DocumentName:    doc.DocumentName,
			MarkdownContent: doc.MarkdownContent,
			PageCount:       int32(doc.RawOCRData.PageCount()),
		})
	}
	return rows
}

func writeParquet(path string, documents []models.DocumentRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}

	writer := parquet.NewGenericWriter[documentRow](file)
	if _, err := writer.Write(toRows(documents)); err != nil {
		writer.Close()
		file.Close()
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		file.Close()
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}
