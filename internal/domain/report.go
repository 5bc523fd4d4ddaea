package domain

// ReportFormat is a downloadable report encoding
type ReportFormat string

const (
	ReportCSV  ReportFormat = "csv"
	ReportPDF  ReportFormat = "pdf"
	ReportXLSX ReportFormat = "xlsx"
)

// ReportSchedule is a recurring report delivery
type ReportSchedule struct {
	ID         string   `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	Frequency  string   `json:"frequency" yaml:"frequency"`
	Format     string   `json:"format" yaml:"format"`
	Recipients []string `json:"recipients" yaml:"recipients"`
	NextRun    string   `json:"nextRun" yaml:"nextRun"`
}

// ReportFile is a downloaded report blob
type ReportFile struct {
	Name        string
	ContentType string
	Data        []byte
}
