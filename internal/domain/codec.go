// internal/domain/codec.go
package domain

import (
	"encoding/json"
	"fmt"
)

// weekdayOffsets maps lowercase day names to Monday-based offsets, matching
// the serialized "day" field.
var weekdayOffsets = map[string]int{
	"monday":    0,
	"tuesday":   1,
	"wednesday": 2,
	"thursday":  3,
	"friday":    4,
	"saturday":  5,
	"sunday":    6,
}

// EncodePlanDocument serializes a plan as the storage/sync JSON document,
// stamping the current schema version.
func EncodePlanDocument(p *MesocyclePlan) ([]byte, error) {
	out := p.Clone()
	out.SchemaVersion = SchemaVersion
	return json.Marshal(out)
}

// DecodePlanDocument parses a serialized plan document, migrating older
// schema versions before returning. Documents newer than this build
// understands are rejected rather than guessed at.
func DecodePlanDocument(data []byte) (*MesocyclePlan, error) {
	var probe struct {
		SchemaVersion int `json:"_schemaVersion"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("plan document: %w", err)
	}
	switch {
	case probe.SchemaVersion == SchemaVersion:
		var plan MesocyclePlan
		if err := json.Unmarshal(data, &plan); err != nil {
			return nil, fmt.Errorf("plan document: %w", err)
		}
		return &plan, nil
	case probe.SchemaVersion <= 1:
		// Version 1 documents predate the _schemaVersion stamp: sessions are
		// keyed by day name only and carry no dates.
		return migratePlanV1(data)
	default:
		return nil, fmt.Errorf("plan document: unsupported schema version %d", probe.SchemaVersion)
	}
}

// migratePlanV1 derives the dates a v1 document is missing: the plan is
// anchored to the Monday of its creation week, and each session's date comes
// from its week index plus its day-name offset.
func migratePlanV1(data []byte) (*MesocyclePlan, error) {
	var plan MesocyclePlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("legacy plan document: %w", err)
	}
	if plan.CreatedAt.IsZero() {
		return nil, fmt.Errorf("legacy plan document: missing createdAt anchor")
	}
	plan.StartDate = WeekStart(plan.CreatedAt)
	for wi := range plan.Weeks {
		week := &plan.Weeks[wi]
		for si := range week.Sessions {
			session := &week.Sessions[si]
			offset, ok := weekdayOffsets[session.Day]
			if !ok {
				return nil, fmt.Errorf("legacy plan document: week %d has unknown day %q", week.Index, session.Day)
			}
			session.Date = plan.StartDate.AddDate(0, 0, week.Index*7+offset)
		}
	}
	plan.Generation = 0
	plan.SchemaVersion = SchemaVersion
	return &plan, nil
}
