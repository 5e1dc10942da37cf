package models

// OCRPage is one page of extracted content. The gateway occasionally omits
// the page index; a nil Index renders as "unknown" rather than failing.
type OCRPage struct {
	Index    *int   `json:"index,omitempty"`
	Markdown string `json:"markdown"`
}

// DocumentInfo carries metadata for a combined multi-capture document.
type DocumentInfo struct {
	TotalPages  int    `json:"total_pages"`
	ProcessedAt string `json:"processed_at"`
	Source      string `json:"source"`
}

// OCRResult is the normalized output of one pipeline invocation. An empty
// page list is a valid result (zero pages found), not an error.
type OCRResult struct {
	Pages        []OCRPage     `json:"pages"`
	Model        string        `json:"model,omitempty"`
	DocumentInfo *DocumentInfo `json:"document_info,omitempty"`
}

func (r *OCRResult) PageCount() int {
	if r == nil {
		return 0
	}
	return len(r.Pages)
}

// ProcessingSummary summarizes one batch run.
type ProcessingSummary struct {
	TotalDocuments int    `json:"total_documents"`
	Successful     int    `json:"successful"`
	Failed         int    `json:"failed"`
	ProcessedAt    string `json:"processed_at"`
	InputFolder    string `json:"input_folder"`
	OutputFolder   string `json:"output_folder"`
}

// DocumentRecord is one successfully processed document in a batch report.
type DocumentRecord struct {
	DocumentName    string     `json:"document_name"`
	MarkdownContent string     `json:"markdown_content"`
	RawOCRData      *OCRResult `json:"raw_ocr_data"`
}

// BatchReport is the consolidated outcome of one batch run.
type BatchReport struct {
	ProcessingSummary ProcessingSummary `json:"processing_summary"`
	Documents         []DocumentRecord  `json:"documents"`

	// ReportPath is set only when a report file was written, i.e. at
	// least one document succeeded.
	ReportPath string `json:"-"`
}
