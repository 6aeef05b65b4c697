package db

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/habitat.report/internal/occupancy"
	"github.com/banshee-data/habitat.report/internal/units"
)

// Accepted header names per column, lower-cased. The second names match the
// recorder's own export.
var importColumns = map[string][]string{
	"entity": {"entity", "tag", "animal"},
	"start":  {"start", "absstarttimecode", "start_time"},
	"end":    {"end", "absendtimecode", "end_time"},
	"zone":   {"zone", "address", "room"},
}

// ImportOptions controls how a raw interval file is read.
type ImportOptions struct {
	Delimiter rune
	Location  *time.Location
	Source    string
}

// ImportStats reports what an import stored.
type ImportStats struct {
	Rows     int
	Entities int
}

// ParseIntervalsCSV reads a delimited raw interval file with a header row and
// groups the intervals by entity. Timecodes may be epoch seconds or the
// recorder layout.
func ParseIntervalsCSV(r io.Reader, opts ImportOptions) (map[occupancy.EntityID][]occupancy.RawInterval, error) {
	cr := csv.NewReader(r)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.TrimLeadingSpace = true
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty interval file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	out := make(map[occupancy.EntityID][]occupancy.RawInterval)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read intervals: %w", err)
		}
		line, _ := cr.FieldPos(0)

		entity := strings.TrimSpace(rec[idx["entity"]])
		if entity == "" {
			return nil, fmt.Errorf("line %d: empty entity", line)
		}
		start, err := units.ParseTimecode(rec[idx["start"]], loc)
		if err != nil {
			return nil, fmt.Errorf("line %d: start: %w", line, err)
		}
		end, err := units.ParseTimecode(rec[idx["end"]], loc)
		if err != nil {
			return nil, fmt.Errorf("line %d: end: %w", line, err)
		}
		zone, err := strconv.Atoi(strings.TrimSpace(rec[idx["zone"]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: zone: %w", line, err)
		}
		if occupancy.Zone(zone) == occupancy.Unassigned {
			return nil, fmt.Errorf("line %d: zone %d is reserved", line, zone)
		}

		id := occupancy.EntityID(entity)
		out[id] = append(out[id], occupancy.RawInterval{Start: start, End: end, Zone: occupancy.Zone(zone)})
	}
	return out, nil
}

func resolveColumns(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(importColumns))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for col, names := range importColumns {
			if _, ok := idx[col]; !ok && slices.Contains(names, h) {
				idx[col] = i
			}
		}
	}
	for _, col := range []string{"entity", "start", "end", "zone"} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing %s column (one of %s)", col, strings.Join(importColumns[col], ", "))
		}
	}
	return idx, nil
}

// ImportCSV parses a raw interval file and stores it.
func (db *DB) ImportCSV(ctx context.Context, r io.Reader, opts ImportOptions) (ImportStats, error) {
	byEntity, err := ParseIntervalsCSV(r, opts)
	if err != nil {
		return ImportStats{}, err
	}

	var stats ImportStats
	for _, entity := range slices.Sorted(maps.Keys(byEntity)) {
		n, err := db.InsertVisits(ctx, entity, opts.Source, byEntity[entity])
		if err != nil {
			return stats, err
		}
		stats.Rows += n
		stats.Entities++
	}
	log.Printf("[db] imported %d intervals for %d entities from %s", stats.Rows, stats.Entities, opts.Source)
	return stats, nil
}
