package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Run     RunMetadata          `json:"run"`
	Steps   int                  `json:"samples"`
	Times   []float64            `json:"times"`
	Series  map[string][]float64 `json:"series"`
	Columns []string             `json:"columns"`
}

// ExportJSON writes a run's metadata and every column of its states.
func ExportJSON(w io.Writer, meta *RunMetadata, t *Table) error {
	data := ExportData{
		Run:     *meta,
		Steps:   len(t.Times),
		Times:   t.Times,
		Series:  make(map[string][]float64, len(t.Columns)),
		Columns: t.Columns,
	}
	for _, name := range t.Columns {
		data.Series[name], _ = t.Column(name)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
