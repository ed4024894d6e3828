package samples

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/RMahshie/vibrascope/pkg/models"
)

// Columns is the fixed record layout after the header
var Columns = [4]string{"time", "axisX", "axisY", "axisZ"}

// Load reads a recording from path.
// If the file cannot be opened it returns an empty sequence and a
// KindResourceUnavailable error.
func Load(path string) ([]models.Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return []models.Sample{}, models.NewPipelineError(models.KindResourceUnavailable, err, "unable to open resource %q", path)
	}
	defer file.Close()

	return Read(file)
}

// Read parses a comma-separated recording. The first line is a header
// and is skipped without being parsed, so it may hold any text. Every
// following record must hold exactly time, axisX, axisY and axisZ. A
// single bad record fails the whole read.
func Read(r io.Reader) ([]models.Sample, error) {
	data := []models.Sample{}

	br := bufio.NewReader(r)
	if _, err := br.ReadString('\n'); err != nil {
		if errors.Is(err, io.EOF) {
			return data, nil
		}
		return nil, models.NewPipelineError(models.KindResourceUnavailable, err, "header")
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1 // field count is checked per record for a better error
	reader.ReuseRecord = true

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, models.NewPipelineError(models.KindMalformedRecord, err, "record %d", len(data)+1)
		}
		line, _ := reader.FieldPos(0)
		line++ // header

		sample, err := parseRecord(record)
		if err != nil {
			return nil, models.NewPipelineError(models.KindMalformedRecord, err, "line %d", line)
		}
		data = append(data, sample)
	}

	return data, nil
}

func parseRecord(record []string) (models.Sample, error) {
	var s models.Sample

	if len(record) != len(Columns) {
		return s, &FieldCountError{Got: len(record)}
	}

	values := [4]float64{}
	for i, field := range record {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return s, &FieldError{Field: Columns[i], Value: field, Err: err}
		}
		values[i] = v
	}

	s.Time = values[0]
	s.Axes = [3]float64{values[1], values[2], values[3]}
	return s, nil
}

// FieldError reports a field that is not a valid float64
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return "field " + e.Field + ": cannot parse " + strconv.Quote(e.Value)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// FieldCountError reports a record without exactly four fields
type FieldCountError struct {
	Got int
}

func (e *FieldCountError) Error() string {
	return "expected " + strconv.Itoa(len(Columns)) + " fields, got " + strconv.Itoa(e.Got)
}
