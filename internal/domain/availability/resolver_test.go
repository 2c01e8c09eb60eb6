package availability

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-07-14 é uma segunda-feira
var monday = time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)

func TestResolve_CustomOverridesWeekday(t *testing.T) {
	cfg := &Config{
		Weekdays: map[Weekday]DayHours{
			Monday: {Available: true, StartTime: "09:00", EndTime: "18:00"},
		},
		CustomTimeSlots: map[string][]string{
			"2025-07-14": {"14:00", "09:00", "09:30", "09:00"},
		},
	}

	res := Resolve(cfg, monday)

	assert.Equal(t, SourceCustom, res.Source)
	assert.Equal(t, []string{"09:00", "09:00", "09:30", "14:00"}, res.Slots)
	// a lista original não é reordenada
	assert.Equal(t, "14:00", cfg.CustomTimeSlots["2025-07-14"][0])
}

func TestResolve_EmptyCustomFallsThrough(t *testing.T) {
	cfg := &Config{
		Weekdays: map[Weekday]DayHours{
			Monday: {Available: true, StartTime: "09:00", EndTime: "10:00"},
		},
		CustomTimeSlots: map[string][]string{"2025-07-14": {}},
	}

	res := Resolve(cfg, monday)

	assert.Equal(t, SourceWeekly, res.Source)
	assert.Equal(t, []string{"09:00", "09:30"}, res.Slots)
}

func TestResolve_UnavailableWeekday(t *testing.T) {
	cfg := &Config{
		Weekdays: map[Weekday]DayHours{
			Monday: {Available: false, StartTime: "09:00", EndTime: "18:00"},
		},
	}

	res := Resolve(cfg, monday)

	assert.Equal(t, SourceClosed, res.Source)
	assert.Empty(t, res.Slots)
	assert.True(t, res.Configured())
}

func TestResolve_EndBoundaryExcluded(t *testing.T) {
	cfg := &Config{
		Weekdays: map[Weekday]DayHours{
			Monday: {Available: true, StartTime: "09:00", EndTime: "11:00"},
		},
	}

	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30"}, Resolve(cfg, monday).Slots)
}

func TestResolve_MissingConfiguration(t *testing.T) {
	for _, cfg := range []*Config{nil, {}} {
		res := Resolve(cfg, monday)

		assert.Equal(t, SourceUnconfigured, res.Source)
		assert.False(t, res.Configured())
		assert.NotNil(t, res.Slots)
		assert.Empty(t, res.Slots)
	}
}

func TestWeeklySlots(t *testing.T) {
	tests := []struct {
		name  string
		hours DayHours
		want  []string
	}{
		{"half hour end truncates to hour", DayHours{true, "09:00", "10:30"}, []string{"09:00", "09:30"}},
		{"unaligned start rounds up", DayHours{true, "09:15", "11:00"}, []string{"09:30", "10:00", "10:30"}},
		{"half hour start", DayHours{true, "13:30", "15:00"}, []string{"13:30", "14:00", "14:30"}},
		{"end before start", DayHours{true, "18:00", "09:00"}, []string{}},
		{"malformed", DayHours{true, "nove", "18:00"}, []string{}},
		{"closed", DayHours{false, "09:00", "18:00"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeeklySlots(tt.hours))
		})
	}
}

func TestConfig_JSONShape(t *testing.T) {
	doc := `{
		"segunda": {"available": true, "startTime": "09:00", "endTime": "12:00"},
		"terça": {"available": false, "startTime": "", "endTime": ""},
		"friday": {"available": true, "startTime": "14:00", "endTime": "16:00"},
		"customTimeSlots": {"2025-07-14": ["09:00","09:30","14:00"]},
		"observacao": "ignorado"
	}`

	var cfg Config
	require.NoError(t, json.Unmarshal([]byte(doc), &cfg))

	assert.True(t, cfg.Weekdays[Monday].Available)
	assert.False(t, cfg.Weekdays[Tuesday].Available)
	assert.Equal(t, "14:00", cfg.Weekdays[Friday].StartTime)
	assert.Len(t, cfg.CustomTimeSlots["2025-07-14"], 3)

	out, err := json.Marshal(cfg)
	require.NoError(t, err)

	var flat map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &flat))
	assert.Contains(t, flat, "monday")
	assert.Contains(t, flat, "customTimeSlots")
	assert.NotContains(t, flat, "segunda")
}

func TestConfig_Validate(t *testing.T) {
	ok := &Config{
		Weekdays:        map[Weekday]DayHours{Monday: {true, "09:00", "18:00"}},
		CustomTimeSlots: map[string][]string{"2025-07-14": {"09:00"}},
	}
	assert.NoError(t, ok.Validate())

	badRange := &Config{Weekdays: map[Weekday]DayHours{Monday: {true, "18:00", "09:00"}}}
	assert.ErrorIs(t, badRange.Validate(), ErrInvalidRange)

	badDate := &Config{CustomTimeSlots: map[string][]string{"14/07/2025": {"09:00"}}}
	assert.ErrorIs(t, badDate.Validate(), ErrInvalidDate)

	badClock := &Config{CustomTimeSlots: map[string][]string{"2025-07-14": {"9h"}}}
	assert.ErrorIs(t, badClock.Validate(), ErrInvalidClock)

	// "9:00" ordenaria depois de "14:00" e nunca casaria com "09:00"
	singleDigit := &Config{CustomTimeSlots: map[string][]string{"2025-07-15": {"9:00", "14:00"}}}
	assert.ErrorIs(t, singleDigit.Validate(), ErrInvalidClock)

	singleDigitWeekday := &Config{Weekdays: map[Weekday]DayHours{Monday: {true, "9:00", "18:00"}}}
	assert.ErrorIs(t, singleDigitWeekday.Validate(), ErrInvalidClock)

	padded := &Config{CustomTimeSlots: map[string][]string{"2025-07-15": {" 09:00"}}}
	assert.ErrorIs(t, padded.Validate(), ErrInvalidClock)
}
