package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/kapitza/internal/analysis"
)

var csvHeader = []string{"t", "phi", "omega", "epot", "x", "y"}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes one row per sample: t, phi, omega, epot, x, y.
func WriteCSV(w io.Writer, s *analysis.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	row := make([]string, len(csvHeader))
	for i := range s.Times {
		row[0] = formatFloat(s.Times[i])
		row[1] = formatFloat(s.Phi[i])
		row[2] = formatFloat(s.Omega[i])
		row[3] = formatFloat(s.Potential[i])
		row[4] = formatFloat(s.BobX[i])
		row[5] = formatFloat(s.BobY[i])
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func ReadCSV(r io.Reader) (*analysis.Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("storage: missing csv header")
	}
	for i, name := range csvHeader {
		if records[0][i] != name {
			return nil, fmt.Errorf("storage: unexpected column %q, want %q", records[0][i], name)
		}
	}

	s := &analysis.Series{}
	columns := []*[]float64{&s.Times, &s.Phi, &s.Omega, &s.Potential, &s.BobX, &s.BobY}
	for line, record := range records[1:] {
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: line %d: %w", line+2, err)
			}
			*columns[j] = append(*columns[j], v)
		}
	}
	return s, nil
}

type ExportData struct {
	Run       RunMetadata `json:"run"`
	Times     []float64   `json:"times"`
	Phi       []float64   `json:"phi"`
	Omega     []float64   `json:"omega"`
	Potential []float64   `json:"epot"`
	BobX      []float64   `json:"x"`
	BobY      []float64   `json:"y"`
}

// ExportJSON writes the run metadata and its series as one indented JSON
// document.
func ExportJSON(w io.Writer, meta *RunMetadata, s *analysis.Series) error {
	data := ExportData{
		Run:       *meta,
		Times:     s.Times,
		Phi:       s.Phi,
		Omega:     s.Omega,
		Potential: s.Potential,
		BobX:      s.BobX,
		BobY:      s.BobY,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
