package cmd

import (
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion is the shell completion tree of pe.
// It is used by the main package when COMP_LINE is set.
func Completion() *complete.Command {
	logs := predict.Files("*")
	inputs := predict.Set{formatCSV, formatJSONL}
	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"log-level": predict.Set{"debug", "info", "warn", "error"},
			"raw":       nil,
		},
		Sub: map[string]*complete.Command{
			"process": {
				Flags: map[string]complete.Predictor{
					"f":        inputs,
					"o":        predict.Set{outputCSV, outputJSON, outputMarkdown},
					"strict":   nil,
					"currency": predict.Something,
				},
				Args: logs,
			},
			"check": {
				Flags: map[string]complete.Predictor{"f": inputs},
				Args:  logs,
			},
			"fmt": {
				Flags: map[string]complete.Predictor{"f": inputs, "to": inputs},
				Args:  logs,
			},
			"query": {
				Flags: map[string]complete.Predictor{"f": inputs},
				Args:  logs,
			},
			"help":     {Args: predict.Set{"process", "check", "fmt", "query"}},
			"flags":    {},
			"commands": {},
		},
	}
}
