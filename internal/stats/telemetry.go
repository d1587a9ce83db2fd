package stats

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/verte-zerg/runlog/internal/model"
	"github.com/verte-zerg/runlog/internal/telemetry"
)

const telemetryFields = 10

// ReadTelemetry parses a playthrough CSV written by telemetry.Writer.
func ReadTelemetry(path string) ([]model.TelemetryRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only telemetry file.
			_ = cerr
		}
	}()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("telemetry file is empty")
	}
	if scanner.Text() != telemetry.Header {
		return nil, fmt.Errorf("unexpected telemetry header: %q", scanner.Text())
	}

	var rows []model.TelemetryRow
	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		row, err := parseRow(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func parseRow(line string) (model.TelemetryRow, error) {
	fields := strings.Split(line, ",")
	if len(fields) != telemetryFields {
		return model.TelemetryRow{}, fmt.Errorf("expected %d fields, got %d", telemetryFields, len(fields))
	}
	nums := make([]float64, telemetryFields-1)
	for i, f := range fields[1:] {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return model.TelemetryRow{}, fmt.Errorf("field %d: %w", i+2, err)
		}
		nums[i] = v
	}
	return model.TelemetryRow{
		Level:            fields[0],
		CompletionTime:   nums[0],
		TotalEnemies:     nums[1],
		EnemiesRemaining: nums[2],
		BottlesUsed:      nums[3],
		GunsUsed:         nums[4],
		ShieldsUsed:      nums[5],
		Completions: model.Counts{
			ReachExit: int(nums[6]),
			KillAll:   int(nums[7]),
			Heist:     int(nums[8]),
		},
	}, nil
}
