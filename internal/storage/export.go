package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/buoy/internal/flight"
	"github.com/san-kum/buoy/internal/metrics"
)

type ExportData struct {
	RunInfo
	Steps     int                `json:"steps"`
	Times     []float64          `json:"times"`
	Metrics   map[string]float64 `json:"metrics"`
	Summaries []metrics.Summary  `json:"summaries"`
	Faults    []string           `json:"faults,omitempty"`
}

// ExportJSON writes a run's headline figures as indented JSON.
func ExportJSON(w io.Writer, info RunInfo, result *flight.Result) error {
	data := ExportData{
		RunInfo:   info,
		Steps:     result.StepsTaken,
		Times:     result.Times,
		Metrics:   finite(result.Metrics),
		Summaries: metrics.SummarizeAll(result),
	}
	for _, f := range result.Faults {
		data.Faults = append(data.Faults, f.Error())
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
