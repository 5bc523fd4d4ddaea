package mockapi

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/aryan0dhankhar/reviewdesk/internal/domain"
)

// ContentType returns the media type of a report format
func ContentType(format domain.ReportFormat) string {
	switch format {
	case domain.ReportCSV:
		return "text/csv"
	case domain.ReportPDF:
		return "application/pdf"
	case domain.ReportXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// ReportFileName is the attachment name used for a report download
func ReportFileName(format domain.ReportFormat) string {
	return "feedback-report." + string(format)
}

var reviewColumns = []string{"ID", "Date", "Source", "Store", "Rating", "Sentiment", "Status", "Text"}

func reviewRow(rv domain.Review) []string {
	return []string{
		rv.ID,
		rv.Date,
		string(rv.Source),
		rv.StoreName,
		strconv.Itoa(rv.Rating),
		string(rv.Sentiment),
		string(rv.Status),
		rv.Text,
	}
}

func renderCSV(reviews []domain.Review) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(reviewColumns); err != nil {
		return nil, err
	}
	for _, rv := range reviews {
		if err := w.Write(reviewRow(rv)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderXLSX(f *Fixtures) ([]byte, error) {
	book := excelize.NewFile()
	defer book.Close()

	const reviewsSheet = "Reviews"
	if err := book.SetSheetName("Sheet1", reviewsSheet); err != nil {
		return nil, err
	}
	if err := writeSheetRows(book, reviewsSheet, reviewColumns, len(f.Reviews), func(i int) []any {
		row := reviewRow(f.Reviews[i])
		out := make([]any, len(row))
		for j, v := range row {
			out[j] = v
		}
		out[4] = f.Reviews[i].Rating
		return out
	}); err != nil {
		return nil, err
	}

	const storesSheet = "Stores"
	if _, err := book.NewSheet(storesSheet); err != nil {
		return nil, err
	}
	storeColumns := []string{"ID", "Name", "City", "Rating", "Reviews", "NSS", "Response Rate"}
	if err := writeSheetRows(book, storesSheet, storeColumns, len(f.Stores), func(i int) []any {
		s := f.Stores[i]
		return []any{s.ID, s.Name, s.City, s.Rating, s.ReviewCount, s.NSS, s.ResponseRate}
	}); err != nil {
		return nil, err
	}

	buf, err := book.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheetRows(book *excelize.File, sheet string, header []string, n int, row func(int) []any) error {
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := book.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row(i)
		if err := book.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

// renderPDF writes a single-page summary document
func renderPDF(f *Fixtures) []byte {
	lines := []string{
		"ReviewDesk Feedback Report",
		fmt.Sprintf("NSS %.1f  SLA %.1f%%  Rating %.1f", f.Dashboard.KPIs.NSS, f.Dashboard.KPIs.SLA, f.Dashboard.KPIs.Rating),
		fmt.Sprintf("Pending %d  Volume %d", f.Dashboard.KPIs.Pending, f.Dashboard.KPIs.Volume),
	}
	for _, s := range f.Dashboard.Charts.TopStores {
		lines = append(lines, fmt.Sprintf("%s: %.1f", s.Name, s.Score))
	}

	var content strings.Builder
	content.WriteString("BT /F1 12 Tf 72 760 Td 16 TL\n")
	for _, l := range lines {
		fmt.Fprintf(&content, "(%s) Tj T*\n", pdfEscape(l))
	}
	content.WriteString("ET")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func pdfEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)
	return r.Replace(s)
}
