package dataprocessing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "rostercli/internal/errors"
	"rostercli/pkg/contracts/domain"
)

// IsWorkbook reports whether path names an Excel workbook.
func IsWorkbook(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

// ReadWorkbookRows reads the first sheet of an .xlsx workbook. The first
// row is the header, exactly as in delimited sources.
func ReadWorkbookRows(path string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("open workbook %s", path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewStorageError(fmt.Sprintf("workbook %s has no sheets", path), nil)
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("read sheet %q of %s", sheets[0], path), err)
	}

	rows := make([]Row, 0, len(cells))
	for i, fields := range cells {
		rows = append(rows, Row{Line: i + 1, Fields: fields})
	}
	return rows, nil
}

// readSource opens path, reads all rows and closes it again. Workbooks are
// detected by extension; anything else is delimited text.
func (p *Parser) readSource(path string) ([]Row, error) {
	if IsWorkbook(path) {
		return ReadWorkbookRows(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("open %s", path), err)
	}
	defer f.Close()

	return p.ReadDelimited(f, path)
}

// ParseIdentityFile parses the identity source at path.
func (p *Parser) ParseIdentityFile(path string) ([]IdentityRecord, error) {
	rows, err := p.readSource(path)
	if err != nil {
		return nil, err
	}
	return p.identityFromRows(path, rows)
}

// ParseMarksFile parses the marks source at path.
func (p *Parser) ParseMarksFile(path string) ([]MarksRecord, error) {
	rows, err := p.readSource(path)
	if err != nil {
		return nil, err
	}
	return p.marksFromRows(path, rows)
}

// ParseWeightsFile parses the weights source at path.
func (p *Parser) ParseWeightsFile(ctx context.Context, path string) (domain.WeightTable, error) {
	rows, err := p.readSource(path)
	if err != nil {
		return nil, err
	}
	return p.weightsFromRows(ctx, path, rows)
}
