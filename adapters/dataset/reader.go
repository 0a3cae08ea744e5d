package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"adsight/internal"
)

// Table holds raw tabular data read from a dataset file
type Table struct {
	Headers []string
	Rows    [][]string
}

// DataReader reads ad-performance data from CSV or Excel files
type DataReader struct {
	filePath string
	fileType string
	sheet    string
	logger   *internal.Logger
}

// NewDataReader creates a reader, inferring the file type from the extension
func NewDataReader(filePath string) *DataReader {
	fileType := strings.TrimPrefix(strings.ToLower(filepath.Ext(filePath)), ".")
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		sheet:    "Sheet1",
		logger:   internal.NewComponentLogger("DataReader"),
	}
}

// WithSheet overrides the Excel sheet name
func (r *DataReader) WithSheet(sheet string) *DataReader {
	if sheet != "" {
		r.sheet = sheet
	}
	return r
}

// ReadData reads the file based on its type
func (r *DataReader) ReadData() (*Table, error) {
	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

func (r *DataReader) readCSVData() (*Table, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	r.logger.Debug("CSV file read (%d rows)", len(rows))

	return r.processRows(rows)
}

func (r *DataReader) readExcelData() (*Table, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", r.sheet, err)
	}
	r.logger.Debug("sheet %s read (%d rows)", r.sheet, len(rows))

	return r.processRows(rows)
}

func (r *DataReader) processRows(rows [][]string) (*Table, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("dataset must have at least a header row and one data row")
	}

	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.ToLower(strings.TrimSpace(header))
	}

	return &Table{Headers: headers, Rows: rows[1:]}, nil
}

// dateFormats accepted in the date column, tried in order
var dateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	time.RFC3339,
}

func parseDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	for _, format := range dateFormats {
		if ts, err := time.Parse(format, trimmed); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date value %q", raw)
}
