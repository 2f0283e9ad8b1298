package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/smartapp-edu/records-service/internal/auth"
	"github.com/smartapp-edu/records-service/internal/models"
	"github.com/smartapp-edu/records-service/internal/persistence"
	"github.com/smartapp-edu/records-service/internal/store"
)

// Column order of the tabular formats. The xlsx template mirrors the CSV
// header exactly.
var exportHeader = []string{"studentUsername", "course", "score", "maxScore"}

type importExportService struct {
	store   *store.Store
	flusher persistence.FlushTrigger
	logger  *slog.Logger
}

func NewImportExportService(st *store.Store, flusher persistence.FlushTrigger, logger *slog.Logger) ImportExportService {
	return &importExportService{
		store:   st,
		flusher: flusher,
		logger:  logger,
	}
}

func (s *importExportService) scopedMarks(scope auth.Scope) []models.Mark {
	if scope.TeacherScoped() {
		return s.store.ListMarks(func(m models.Mark) bool { return m.CreatedBy == scope.Teacher })
	}
	return s.store.ListMarks(nil)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func exportMaxScore(m models.Mark) float64 {
	if m.MaxScore == 0 {
		return models.DefaultMaxScore
	}
	return m.MaxScore
}

// ===== CSV =====

func (s *importExportService) ExportCSV(ctx context.Context, scope auth.Scope) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("write CSV header: %w", err)
	}
	for _, m := range s.scopedMarks(scope) {
		row := []string{m.StudentUsername, m.Course, formatScore(m.Score), formatScore(exportMaxScore(m))}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ImportCSV inserts one mark per usable data row and reports how many were
// inserted. Rows missing studentUsername, course or a parseable score are
// silently skipped. No (student, course) duplicate check is performed —
// duplicate rows, and rows colliding with existing marks, are all inserted.
// Every inserted row is tagged with the scope's teacher identity, empty for
// admin scope.
func (s *importExportService) ImportCSV(ctx context.Context, text string, scope auth.Scope) (int, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return 0, ErrCsvInvalid
	}
	if len(records) == 0 {
		return 0, ErrCsvEmpty
	}

	cols, err := headerIndices(records[0], ErrCsvMissingColumns)
	if err != nil {
		return 0, err
	}
	imported := s.insertRows(records[1:], cols, scope)
	if imported > 0 {
		s.flusher.Trigger(s.store.Snapshot())
	}
	s.logger.Info("CSV import finished", "imported", imported, "teacher", scope.Teacher)
	return imported, nil
}

// ===== XLSX =====

func (s *importExportService) ExportXLSX(ctx context.Context, scope auth.Scope) ([]byte, error) {
	marks := s.scopedMarks(scope)
	rows := make([][]interface{}, 0, len(marks))
	for _, m := range marks {
		rows = append(rows, []interface{}{m.StudentUsername, m.Course, m.Score, exportMaxScore(m)})
	}
	return buildWorkbook("Marks", rows)
}

func (s *importExportService) TemplateXLSX(ctx context.Context) ([]byte, error) {
	return buildWorkbook("Template", [][]interface{}{
		{"john", "Math", 95, 100},
	})
}

func (s *importExportService) ImportXLSX(ctx context.Context, data []byte, scope auth.Scope) (int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return 0, ErrSheetInvalid
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, ErrSheetEmpty
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return 0, ErrSheetInvalid
	}
	if len(rows) == 0 {
		return 0, ErrSheetEmpty
	}

	cols, err := headerIndices(rows[0], ErrSheetMissingCols)
	if err != nil {
		return 0, err
	}
	imported := s.insertRows(rows[1:], cols, scope)
	if imported > 0 {
		s.flusher.Trigger(s.store.Snapshot())
	}
	s.logger.Info("spreadsheet import finished", "imported", imported, "teacher", scope.Teacher)
	return imported, nil
}

// ===== SHARED HELPERS =====

type columnIndices struct {
	user, course, score, max int
}

// headerIndices locates the required columns in a header row, returning
// missingErr when any of the first three is absent. maxScore is optional.
func headerIndices(header []string, missingErr error) (columnIndices, error) {
	idx := columnIndices{user: -1, course: -1, score: -1, max: -1}
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case "studentUsername":
			idx.user = i
		case "course":
			idx.course = i
		case "score":
			idx.score = i
		case "maxScore":
			idx.max = i
		}
	}
	if idx.user == -1 || idx.course == -1 || idx.score == -1 {
		return idx, missingErr
	}
	return idx, nil
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (s *importExportService) insertRows(rows [][]string, cols columnIndices, scope auth.Scope) int {
	imported := 0
	for _, row := range rows {
		studentUsername := cellAt(row, cols.user)
		course := cellAt(row, cols.course)
		scoreText := cellAt(row, cols.score)
		if studentUsername == "" || course == "" || scoreText == "" {
			continue
		}
		score, err := strconv.ParseFloat(scoreText, 64)
		if err != nil {
			continue
		}
		maxScore := models.DefaultMaxScore
		if maxText := cellAt(row, cols.max); maxText != "" {
			if v, err := strconv.ParseFloat(maxText, 64); err == nil {
				maxScore = v
			}
		}
		s.store.InsertMark(models.Mark{
			StudentUsername: studentUsername,
			Course:          course,
			Score:           score,
			MaxScore:        maxScore,
			CreatedBy:       scope.Teacher,
		})
		imported++
	}
	return imported
}

func buildWorkbook(sheet string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header row: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
