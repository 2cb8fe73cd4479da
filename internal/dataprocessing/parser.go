package dataprocessing

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode"

	apperrors "rostercli/internal/errors"
	"rostercli/pkg/contracts/domain"
)

// Column names of the delimited sources.
const (
	ColStudentID = "StudentID"
	ColName      = "Name"
	ColClass     = "Class"
	ColSubject   = "Subject"
	ColWeight    = "Weight"
)

// DefaultDelimiter separates fields. It is not a comma because marks fields
// are themselves comma-joined lists.
const DefaultDelimiter = ';'

// markSeparator joins the marks inside one field.
const markSeparator = ","

// Row is one raw source row. Line is 1-based.
type Row struct {
	Line   int
	Fields []string
}

// IdentityRecord is one parsed row of the identity source.
type IdentityRecord struct {
	ID    string
	Name  string
	Class string
	Line  int
}

// MarksRecord is one parsed row of the marks source. Subjects follow the
// configured subject order.
type MarksRecord struct {
	ID       string
	Subjects []domain.Subject
	Line     int
}

// ParserConfig configures a Parser.
type ParserConfig struct {
	Delimiter rune
	Subjects  []string
}

// Parser turns delimited or workbook sources into validated records.
type Parser struct {
	delimiter rune
	subjects  []string
	logger    *slog.Logger
}

// NewParser creates a parser. Zero config values fall back to ';' and the
// canonical subject set.
func NewParser(cfg ParserConfig, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Delimiter == 0 {
		cfg.Delimiter = DefaultDelimiter
	}
	if len(cfg.Subjects) == 0 {
		cfg.Subjects = domain.DefaultSubjects
	}
	return &Parser{
		delimiter: cfg.Delimiter,
		subjects:  append([]string(nil), cfg.Subjects...),
		logger:    logger.With(slog.String("component", "parser")),
	}
}

// Subjects returns the subject columns the parser expects in marks sources.
func (p *Parser) Subjects() []string {
	return append([]string(nil), p.subjects...)
}

// ParseIdentity reads (StudentID, Name, Class) rows.
func (p *Parser) ParseIdentity(r io.Reader, source string) ([]IdentityRecord, error) {
	rows, err := p.ReadDelimited(r, source)
	if err != nil {
		return nil, err
	}
	return p.identityFromRows(source, rows)
}

// ParseMarks reads (StudentID, subject...) rows where every subject field is
// a comma-joined list of non-negative integers.
func (p *Parser) ParseMarks(r io.Reader, source string) ([]MarksRecord, error) {
	rows, err := p.ReadDelimited(r, source)
	if err != nil {
		return nil, err
	}
	return p.marksFromRows(source, rows)
}

// ParseWeights reads (Subject, Weight) rows. Rows whose weight is not a
// positive number are logged and skipped so the subject keeps the default.
func (p *Parser) ParseWeights(ctx context.Context, r io.Reader, source string) (domain.WeightTable, error) {
	rows, err := p.ReadDelimited(r, source)
	if err != nil {
		return nil, err
	}
	return p.weightsFromRows(ctx, source, rows)
}

// ReadDelimited splits r into rows using the configured delimiter. Blank
// lines are dropped by the reader.
func (p *Parser) ReadDelimited(r io.Reader, source string) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.delimiter
	reader.FieldsPerRecord = -1
	// Leading-space trimming would swallow empty fields of a whitespace delimiter.
	reader.TrimLeadingSpace = !unicode.IsSpace(p.delimiter)

	var rows []Row
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewStorageError(fmt.Sprintf("read %s", source), err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, Row{Line: line, Fields: fields})
	}
	return rows, nil
}

func (p *Parser) identityFromRows(source string, rows []Row) ([]IdentityRecord, error) {
	t, err := newTable(source, rows, []string{ColStudentID, ColName, ColClass})
	if err != nil {
		return nil, err
	}

	records := make([]IdentityRecord, 0, len(t.rows))
	for _, row := range t.rows {
		id := t.get(row, ColStudentID)
		if id == "" {
			return nil, apperrors.NewValidationError(fmt.Sprintf("%s:%d: empty %s", source, row.Line, ColStudentID), nil).
				WithContext("source", source)
		}
		records = append(records, IdentityRecord{
			ID:    id,
			Name:  t.get(row, ColName),
			Class: t.get(row, ColClass),
			Line:  row.Line,
		})
	}

	p.logger.Debug("identity source parsed",
		slog.String("source", source),
		slog.Int("records", len(records)))
	return records, nil
}

func (p *Parser) marksFromRows(source string, rows []Row) ([]MarksRecord, error) {
	required := append([]string{ColStudentID}, p.subjects...)
	t, err := newTable(source, rows, required)
	if err != nil {
		return nil, err
	}

	records := make([]MarksRecord, 0, len(t.rows))
	for _, row := range t.rows {
		id := t.get(row, ColStudentID)
		if id == "" {
			return nil, apperrors.NewValidationError(fmt.Sprintf("%s:%d: empty %s", source, row.Line, ColStudentID), nil).
				WithContext("source", source)
		}

		rec := MarksRecord{ID: id, Line: row.Line, Subjects: make([]domain.Subject, 0, len(p.subjects))}
		for _, subject := range p.subjects {
			raw := t.get(row, subject)
			marks, ok := ParseMarkList(raw)
			if !ok {
				return nil, &apperrors.MarkFormatError{
					StudentID: id,
					Field:     subject,
					Raw:       raw,
					Source:    source,
					Line:      row.Line,
				}
			}
			rec.Subjects = append(rec.Subjects, domain.Subject{Name: subject, Marks: marks})
		}
		records = append(records, rec)
	}

	p.logger.Debug("marks source parsed",
		slog.String("source", source),
		slog.Int("records", len(records)))
	return records, nil
}

func (p *Parser) weightsFromRows(ctx context.Context, source string, rows []Row) (domain.WeightTable, error) {
	t, err := newTable(source, rows, []string{ColSubject, ColWeight})
	if err != nil {
		return nil, err
	}

	weights := make(domain.WeightTable, len(t.rows))
	for _, row := range t.rows {
		subject := t.get(row, ColSubject)
		raw := t.get(row, ColWeight)
		w, err := strconv.ParseFloat(raw, 64)
		if subject == "" || err != nil || w <= 0 || math.IsInf(w, 0) || math.IsNaN(w) {
			p.logger.WarnContext(ctx, "ignoring weight row",
				slog.String("source", source),
				slog.Int("line", row.Line),
				slog.String("subject", subject),
				slog.String("weight", raw))
			continue
		}
		weights[subject] = w
	}
	return weights, nil
}

// ParseMarkList parses a comma-joined list of non-negative integers such as
// "70,85,90". It fails on an empty list, an empty token or a negative value.
func ParseMarkList(raw string) ([]int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}

	tokens := strings.Split(raw, markSeparator)
	marks := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil || n < 0 {
			return nil, false
		}
		marks = append(marks, n)
	}
	return marks, true
}

// FormatMarkList joins marks with commas, the inverse of ParseMarkList.
func FormatMarkList(marks []int) string {
	parts := make([]string, len(marks))
	for i, m := range marks {
		parts[i] = strconv.Itoa(m)
	}
	return strings.Join(parts, markSeparator)
}

// table is a header-validated view over source rows.
type table struct {
	source string
	index  map[string]int
	rows   []Row
}

// newTable validates that every required column is present in the first
// row before any data row is looked at. Header names match case-insensitively.
func newTable(source string, rows []Row, required []string) (*table, error) {
	if len(rows) == 0 {
		return nil, apperrors.NewSchemaError(required[0], source, nil)
	}

	header := make([]string, len(rows[0].Fields))
	index := make(map[string]int, len(header))
	for i, h := range rows[0].Fields {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		header[i] = h
		if _, dup := index[strings.ToLower(h)]; !dup {
			index[strings.ToLower(h)] = i
		}
	}

	for _, col := range required {
		if _, ok := index[strings.ToLower(col)]; !ok {
			return nil, apperrors.NewSchemaError(col, source, header)
		}
	}

	data := make([]Row, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		data = append(data, row)
	}

	return &table{source: source, index: index, rows: data}, nil
}

// get returns the trimmed field for col, or "" when the row is short.
func (t *table) get(row Row, col string) string {
	i := t.index[strings.ToLower(col)]
	if i >= len(row.Fields) {
		return ""
	}
	return strings.TrimSpace(row.Fields[i])
}

func blankRow(row Row) bool {
	for _, f := range row.Fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
