package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUUID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "valid lowercase", input: "550e8400-e29b-41d4-a716-446655440000", expected: "550e8400-e29b-41d4-a716-446655440000"},
		{name: "valid uppercase", input: "550E8400-E29B-41D4-A716-446655440000", expected: "550E8400-E29B-41D4-A716-446655440000"},
		{name: "trims whitespace", input: " 550e8400-e29b-41d4-a716-446655440000 ", expected: "550e8400-e29b-41d4-a716-446655440000"},
		{name: "empty", input: "", expected: ""},
		{name: "malformed", input: "not-a-uuid", expected: ""},
		{name: "too short", input: "550e8400-e29b-41d4-a716", expected: ""},
		{name: "sql injection attempt", input: "1; DROP TABLE billboards", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseUUID(tt.input))
		})
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "missing falls back to default", input: "", expected: 50},
		{name: "valid", input: "100", expected: 100},
		{name: "zero falls back to default", input: "0", expected: 50},
		{name: "negative falls back to default", input: "-5", expected: 50},
		{name: "junk falls back to default", input: "abc", expected: 50},
		{name: "capped at ceiling", input: "999999", expected: 2500},
		{name: "at ceiling", input: "2500", expected: 2500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLimit(tt.input))
		})
	}
}

func TestParseZipcodes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{name: "single", input: "77002", expected: []string{"77002"}},
		{name: "multiple with spaces", input: "77002, 77005 ,77030", expected: []string{"77002", "77005", "77030"}},
		{name: "dedups", input: "77002,77002,77002", expected: []string{"77002"}},
		{name: "drops invalid", input: "77002,7700,770022,abcde,", expected: []string{"77002"}},
		{name: "all invalid", input: "x,y,z", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseZipcodes(tt.input))
		})
	}
}

func TestSortZipcodes(t *testing.T) {
	zipcodes := []string{"77030", "00500", "2", "77002"}
	sortZipcodes(zipcodes)
	assert.Equal(t, []string{"2", "00500", "77002", "77030"}, zipcodes)
}
