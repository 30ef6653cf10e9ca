package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Row is one CSV line converted to an admin rule payload.
type Row struct {
	Line    int
	Payload map[string]any
}

type cellKind int

const (
	kindString cellKind = iota
	kindInt
	kindFloat
	kindBool
)

// ruleColumns lists the accepted CSV headers, which match the admin rule JSON fields.
var ruleColumns = map[string]cellKind{
	"id":                     kindString,
	"airlineCode":            kindString,
	"routeType":              kindString,
	"cabinClass":             kindString,
	"passengerType":          kindString,
	"cabinBaggageCount":      kindInt,
	"cabinBaggageWeight":     kindFloat,
	"cabinBaggageDimensions": kindString,
	"checkedBaggageCount":    kindInt,
	"checkedBaggageWeight":   kindFloat,
	"checkedBaggageSize":     kindString,
	"excessFeePerKg":         kindFloat,
	"excessFeeFlat":          kindFloat,
	"currency":               kindString,
	"effectiveFrom":          kindString,
	"effectiveTo":            kindString,
	"isActive":               kindBool,
	"notes":                  kindString,
	"policyUrl":              kindString,
}

// ReadRows parses a rule CSV. Empty cells are left out of the payload so the
// server applies its defaults.
func ReadRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make([]string, len(header))
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		if _, ok := ruleColumns[col]; !ok {
			return nil, fmt.Errorf("unknown column %q", col)
		}
		columns[i] = col
	}

	var rows []Row
	var errs []error
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}

		payload, err := convertRecord(columns, record)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		rows = append(rows, Row{Line: line, Payload: payload})
	}

	return rows, errors.Join(errs...)
}

func convertRecord(columns, record []string) (map[string]any, error) {
	payload := make(map[string]any, len(columns))
	for i, col := range columns {
		if i >= len(record) {
			break
		}
		cell := strings.TrimSpace(record[i])
		if cell == "" {
			continue
		}

		switch ruleColumns[col] {
		case kindInt:
			v, err := strconv.Atoi(cell)
			if err != nil {
				return nil, fmt.Errorf("%s: %q is not an integer", col, cell)
			}
			payload[col] = v
		case kindFloat:
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %q is not a number", col, cell)
			}
			payload[col] = v
		case kindBool:
			v, err := strconv.ParseBool(cell)
			if err != nil {
				return nil, fmt.Errorf("%s: %q is not a boolean", col, cell)
			}
			payload[col] = v
		default:
			payload[col] = cell
		}
	}
	return payload, nil
}
