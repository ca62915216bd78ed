package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/TFMV/kolgraph/models"
)

// CSVProcessor handles flat CSV exports. Each row is either a node
// (kind=node) or an edge (kind=edge); rows without a kind column are edges.
//
//	kind,id,name,category,influence_score,kol,source,target,strength,type
//	node,1,Dr. Sarah Chen,Oncology,95,true,,,,
//	edge,,,,,,1,2,0.8,research
//
// Endpoints that never appear as node rows become nodes named after their id.
type CSVProcessor struct{}

// NewCSVProcessor creates a new CSV processor
func NewCSVProcessor() *CSVProcessor {
	return &CSVProcessor{}
}

// GetName returns the name of the processor
func (p *CSVProcessor) GetName() string {
	return "CSV Processor"
}

// ProcessData processes CSV data
func (p *CSVProcessor) ProcessData(data []byte) (*models.Network, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, col := range header {
		switch name := strings.ToLower(strings.TrimSpace(col)); name {
		case "from", "src":
			cols["source"] = i
		case "to", "dst":
			cols["target"] = i
		case "weight", "value":
			cols["strength"] = i
		case "label", "title":
			cols["name"] = i
		case "score":
			cols["influence_score"] = i
		default:
			cols[name] = i
		}
	}

	_, hasSource := cols["source"]
	_, hasTarget := cols["target"]
	_, hasID := cols["id"]
	if !hasID && (!hasSource || !hasTarget) {
		return nil, fmt.Errorf("CSV must contain an id column or source and target columns")
	}

	network := models.NewNetwork("")
	known := make(map[string]bool)
	var implied []string

	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV row: %w", err)
		}
		line++

		get := func(key string) string {
			i, ok := cols[key]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		kind := strings.ToLower(get("kind"))
		if kind == "" {
			kind = "edge"
			if !hasSource && hasID {
				kind = "node"
			}
		}

		switch kind {
		case "node":
			score, err := parseFloat(get("influence_score"), 0)
			if err != nil {
				return nil, fmt.Errorf("line %d: influence_score: %w", line, err)
			}
			kol, err := parseBool(get("kol"))
			if err != nil {
				return nil, fmt.Errorf("line %d: kol: %w", line, err)
			}
			id := get("id")
			if err := network.AddNode(models.NewNode(id, get("name"), get("category"), score, kol)); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			known[id] = true

		case "edge":
			strength, err := parseFloat(get("strength"), 1)
			if err != nil {
				return nil, fmt.Errorf("line %d: strength: %w", line, err)
			}
			source, target := get("source"), get("target")
			network.AddEdge(models.NewEdge(source, target, strength, get("type")))
			implied = append(implied, source, target)

		default:
			return nil, fmt.Errorf("line %d: unknown row kind %q", line, kind)
		}
	}

	for _, id := range implied {
		if id == "" || known[id] {
			continue
		}
		known[id] = true
		network.Nodes = append(network.Nodes, *models.NewNode(id, id, "", 0, false))
	}

	return finish(network, "CSV Import")
}

func parseFloat(s string, fallback float64) (float64, error) {
	if s == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}
