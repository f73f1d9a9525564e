package recipe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderDuration(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  string
	}{
		{"minutes only", "PT30M", "30 m"},
		{"hours only", "PT1H", "1 h"},
		{"hours and minutes", "PT1H30M", "1 h 30 m"},
		{"zero minutes falls back", "PT0M", "PT0M"},
		{"seconds dropped", "PT1H30M45S", "1 h 30 m"},
		{"minutes before hours", "PT30M1H", "1 h 30 m"},
		{"nil", nil, ""},
		{"free text passthrough", "30 minutes", "30 minutes"},
		{"bare marker", "PT", "PT"},
		{"unrecognized units", "PTXYZ", "PTXYZ"},
		{"trailing fragment without unit", "PT1H30", "1 h"},
		{"seconds only falls back", "PT45S", "PT45S"},
		{"empty string", "", ""},
		{"false", false, ""},
		{"true", true, "true"},
		{"zero number", 0.0, ""},
		{"number", 15.0, "15"},
		{"error value", errors.New("PT2H"), "2 h"},
		{"unsupported type", []string{"PT1H"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderDuration(tt.input))
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"hours and minutes text", "1 hour 30 minutes", "PT1H30M"},
		{"plural hours", "2 Hours", "PT2H"},
		{"minutes text", "45 minutes", "PT45M"},
		{"abbreviated", "1 hr 15 mins", "PT1H15M"},
		{"no numbers", "overnight", "PT0M"},
		{"text starting with P", "Prep 20 minutes", "PT20M"},
		{"canonical iso", "PT1H30M", "PT1H30M"},
		{"lowercase iso", "pt20m", "PT20M"},
		{"iso with days and zero hours", "P0DT0H20M", "PT20M"},
		{"iso month is not minutes", "P1M", "PT0M"},
		{"iso seconds ignored", "PT10M30S", "PT10M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDuration(tt.input))
		})
	}
}

func TestDurationRoundTrip(t *testing.T) {
	for input, want := range map[string]string{
		"1 hour 30 minutes": "1 h 30 m",
		"PT1H30M":           "1 h 30 m",
		"20 minutes":        "20 m",
		"3 hours":           "3 h",
	} {
		assert.Equal(t, want, RenderDuration(ParseDuration(input)), input)
	}
}

func TestParseDurationIdempotent(t *testing.T) {
	for _, input := range []string{"1 hour 5 minutes", "PT45M", "10 hours", "nothing"} {
		once := ParseDuration(input)
		assert.Equal(t, once, ParseDuration(once), input)
	}
}
