package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/fincontrol/internal/core/domain"
)

const dayLayout = "2006-01-02"

// eventLess orders audit events by (Timestamp, ID).
func eventLess(a, b domain.AuditEvent) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.ID < b.ID
}

// AggregateByDay groups events by calendar day in loc. Groups are ascending by day and events
// ascending by (Timestamp, ID) within a group. Every input event appears in exactly one group.
// The input slice is not modified.
func AggregateByDay(events []domain.AuditEvent, loc *time.Location) []domain.AuditDayGroup {
	if loc == nil {
		loc = time.UTC
	}
	sorted := make([]domain.AuditEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return eventLess(sorted[i], sorted[j]) })

	var groups []domain.AuditDayGroup
	index := make(map[string]int)
	for _, ev := range sorted {
		day := ev.Timestamp.In(loc).Format(dayLayout)
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, domain.AuditDayGroup{Day: day, StatusCount: make(map[domain.DisplayStatus]int)})
		}
		view := BuildEventView(ev)
		groups[i].Events = append(groups[i].Events, view)
		groups[i].StatusCount[view.DisplayStatus]++
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Day < groups[j].Day })
	return groups
}

// BuildEventView derives the display facts of one event.
func BuildEventView(ev domain.AuditEvent) domain.AuditEventView {
	return domain.AuditEventView{
		AuditEvent:    ev,
		DisplayStatus: domain.DisplayStatusFor(ev.ProcessingResult),
		ChangeCount:   len(ev.Detail.Changes),
		FieldChanges:  FlattenChanges(ev.Detail.Changes),
		Verified:      ev.Verify(),
	}
}

// FlattenChanges turns a change map into "field -> value" pairs sorted by field. Nested maps
// use dotted keys and lists use indexed keys. Dots, brackets and backslashes inside a key are
// escaped with a backslash, so {"a":{"b":1}} and {"a.b":1} yield different fields.
func FlattenChanges(changes map[string]any) []domain.FieldChange {
	out := make([]domain.FieldChange, 0, len(changes))
	var walk func(prefix string, v any)
	walk = func(prefix string, v any) {
		switch val := v.(type) {
		case map[string]any:
			if len(val) == 0 {
				out = append(out, domain.FieldChange{Field: prefix, Value: "{}"})
				return
			}
			for k, nested := range val {
				walk(prefix+"."+escapeFieldKey(k), nested)
			}
		case []any:
			if len(val) == 0 {
				out = append(out, domain.FieldChange{Field: prefix, Value: "[]"})
				return
			}
			for i, nested := range val {
				walk(fmt.Sprintf("%s[%d]", prefix, i), nested)
			}
		default:
			out = append(out, domain.FieldChange{Field: prefix, Value: formatChangeValue(val)})
		}
	}
	for k, v := range changes {
		walk(escapeFieldKey(k), v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

var fieldKeyEscaper = strings.NewReplacer(`\`, `\\`, `.`, `\.`, `[`, `\[`)

func escapeFieldKey(k string) string {
	return fieldKeyEscaper.Replace(k)
}

func formatChangeValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprint(val)
	}
}
