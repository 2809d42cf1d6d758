package domain

import (
	"testing"
	"time"
)

func dinnerEvent(start, end time.Time, intervalHours float64) *Event {
	return &Event{
		ID:                         "event-001",
		DinnerEnabled:              true,
		DinnerStartTime:            &start,
		DinnerEndTime:              &end,
		DinnerSeatingIntervalHours: intervalHours,
	}
}

func TestDinnerSlots(t *testing.T) {
	start := time.Date(2026, 6, 20, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		event *Event
		want  []time.Time
	}{
		{
			name:  "end on a step is included",
			event: dinnerEvent(start, start.Add(4*time.Hour), 2),
			want: []time.Time{
				start,
				start.Add(2 * time.Hour),
				start.Add(4 * time.Hour),
			},
		},
		{
			name:  "end between steps is excluded",
			event: dinnerEvent(start, start.Add(3*time.Hour), 2),
			want: []time.Time{
				start,
				start.Add(2 * time.Hour),
			},
		},
		{
			name:  "fractional interval",
			event: dinnerEvent(start, start.Add(90*time.Minute), 1.5),
			want: []time.Time{
				start,
				start.Add(90 * time.Minute),
			},
		},
		{
			name:  "start equals end yields one slot",
			event: dinnerEvent(start, start, 2),
			want:  []time.Time{start},
		},
		{
			name: "dinner disabled",
			event: func() *Event {
				e := dinnerEvent(start, start.Add(4*time.Hour), 2)
				e.DinnerEnabled = false
				return e
			}(),
			want: nil,
		},
		{
			name: "missing end time",
			event: func() *Event {
				e := dinnerEvent(start, start, 2)
				e.DinnerEndTime = nil
				return e
			}(),
			want: nil,
		},
		{
			name:  "non-positive interval",
			event: dinnerEvent(start, start.Add(4*time.Hour), 0),
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.event.DinnerSlots()
			if len(got) != len(tt.want) {
				t.Fatalf("got %d slots, want %d: %v", len(got), len(tt.want), got)
			}
			for i := range got {
				if !got[i].Equal(tt.want[i]) {
					t.Errorf("slot %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDinnerSlotsDeterministic(t *testing.T) {
	start := time.Date(2026, 6, 20, 18, 0, 0, 0, time.UTC)
	event := dinnerEvent(start, start.Add(6*time.Hour), 1.5)

	first := event.DinnerSlots()
	for i := 0; i < 10; i++ {
		again := event.DinnerSlots()
		if len(again) != len(first) {
			t.Fatalf("regeneration %d produced %d slots, want %d", i, len(again), len(first))
		}
		for j := range again {
			if !again[j].Equal(first[j]) {
				t.Fatalf("regeneration %d slot %d = %v, want %v", i, j, again[j], first[j])
			}
		}
	}
}

func TestDinnerSlotsZoneNormalized(t *testing.T) {
	zone := time.FixedZone("UTC+7", 7*3600)
	start := time.Date(2026, 6, 21, 1, 0, 0, 0, zone)
	event := dinnerEvent(start, start.Add(2*time.Hour), 2)

	slots := event.DinnerSlots()
	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(slots))
	}
	for _, s := range slots {
		if s.Location() != time.UTC {
			t.Errorf("slot %v not UTC normalized", s)
		}
	}
}

func TestMatchSlot(t *testing.T) {
	start := time.Date(2026, 6, 20, 18, 0, 0, 0, time.UTC)
	event := dinnerEvent(start, start.Add(4*time.Hour), 2)
	slots := event.DinnerSlots()

	// Same instant in a different zone must match.
	zone := time.FixedZone("UTC-5", -5*3600)
	matched, ok := MatchSlot(slots, start.Add(2*time.Hour).In(zone))
	if !ok {
		t.Fatal("expected slot to match across zones")
	}
	if !matched.Equal(start.Add(2 * time.Hour)) {
		t.Errorf("matched %v, want %v", matched, start.Add(2*time.Hour))
	}

	if _, ok := MatchSlot(slots, start.Add(time.Hour)); ok {
		t.Error("off-step time must not match")
	}
	if _, ok := MatchSlot(nil, start); ok {
		t.Error("empty slot set must not match")
	}
}
