// Package loader reads uploaded files into datasets. The format is chosen by
// file extension; CSV, JSON, and XML are supported.
package loader

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dataprobe/dataprobe/pkg/errors"
	"github.com/dataprobe/dataprobe/pkg/models"
)

// Loader parses tabular files into datasets.
type Loader struct {
	logger *logrus.Logger
}

// NewLoader creates a loader.
func NewLoader(logger *logrus.Logger) *Loader {
	if logger == nil {
		logger = logrus.New()
	}
	return &Loader{logger: logger}
}

// Load parses the reader's contents using the format implied by filename.
func (l *Loader) Load(r io.Reader, filename string) (*models.Dataset, error) {
	var (
		ds  *models.Dataset
		err error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		ds, err = l.loadCSV(r)
	case ".json":
		ds, err = l.loadJSON(r)
	case ".xml":
		ds, err = l.loadXML(r)
	default:
		return nil, errors.WrapError(errors.ErrUnsupportedFormat, errors.ErrorTypeLoader,
			"UNSUPPORTED_FORMAT", fmt.Sprintf("Cannot load '%s': supported formats are csv, json, xml", filename))
	}
	if err != nil {
		return nil, err
	}

	if ds.Rows() == 0 {
		return nil, errors.WrapError(errors.ErrEmptyDataset, errors.ErrorTypeLoader,
			"EMPTY_DATASET", fmt.Sprintf("File '%s' contains no data rows", filename))
	}

	l.logger.WithFields(logrus.Fields{
		"filename": filename,
		"rows":     ds.Rows(),
		"columns":  ds.ColumnCount(),
	}).Info("Dataset loaded")

	return ds, nil
}

// LoadFile opens and parses the named file.
func (l *Loader) LoadFile(path string) (*models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeLoader, "OPEN_FAILED",
			fmt.Sprintf("Failed to open '%s'", path))
	}
	defer f.Close()

	return l.Load(f, filepath.Base(path))
}

func (l *Loader) loadCSV(r io.Reader) (*models.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeLoader, "PARSE_FAILED", "Failed to parse CSV")
	}
	if len(records) == 0 {
		return models.NewDataset(nil, nil), nil
	}

	header := records[0]
	data := make(map[string][]any, len(header))
	for _, col := range header {
		data[col] = make([]any, 0, len(records)-1)
	}

	for _, record := range records[1:] {
		for i, col := range header {
			var cell any
			if i < len(record) {
				cell = coerceScalar(record[i])
			}
			data[col] = append(data[col], cell)
		}
	}

	return models.NewDataset(header, data), nil
}

// coerceScalar types a raw text cell: empty becomes null, then integer,
// float, and boolean parses are attempted in that order.
func coerceScalar(s string) any {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	switch trimmed {
	case "true", "True", "TRUE":
		return true
	case "false", "False", "FALSE":
		return false
	}
	return s
}

func (l *Loader) loadJSON(r io.Reader) (*models.Dataset, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var records []map[string]any
	if err := decoder.Decode(&records); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeLoader, "PARSE_FAILED",
			"Failed to parse JSON: expected an array of objects")
	}

	// Column order: sorted union of keys, for stable output across runs.
	seen := make(map[string]bool)
	var columns []string
	for _, record := range records {
		for key := range record {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}
	sort.Strings(columns)

	data := make(map[string][]any, len(columns))
	for _, col := range columns {
		values := make([]any, len(records))
		for i, record := range records {
			values[i] = coerceJSONValue(record[col])
		}
		data[col] = values
	}

	return models.NewDataset(columns, data), nil
}

func coerceJSONValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case bool, string:
		return x
	default:
		// Nested structures flatten to their JSON text.
		raw, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprintf("%v", x)
		}
		return string(raw)
	}
}

// loadXML reads documents shaped as a root element containing repeated row
// elements whose children are the columns:
//
//	<records><record><id>1</id><name>a</name></record>...</records>
func (l *Loader) loadXML(r io.Reader) (*models.Dataset, error) {
	decoder := xml.NewDecoder(r)

	var columns []string
	seen := make(map[string]bool)
	var rows []map[string]any

	depth := 0
	var current map[string]any
	var field string
	var text strings.Builder

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrorTypeLoader, "PARSE_FAILED", "Failed to parse XML")
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch depth {
			case 2:
				current = make(map[string]any)
			case 3:
				field = t.Name.Local
				text.Reset()
				if !seen[field] {
					seen[field] = true
					columns = append(columns, field)
				}
			}
		case xml.CharData:
			if depth == 3 {
				text.Write(t)
			}
		case xml.EndElement:
			switch depth {
			case 3:
				current[field] = coerceScalar(text.String())
			case 2:
				if current != nil {
					rows = append(rows, current)
					current = nil
				}
			}
			depth--
		}
	}

	data := make(map[string][]any, len(columns))
	for _, col := range columns {
		values := make([]any, len(rows))
		for i, row := range rows {
			values[i] = row[col]
		}
		data[col] = values
	}

	return models.NewDataset(columns, data), nil
}
