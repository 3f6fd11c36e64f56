package model_test

import (
	"testing"

	"github.com/teamtodo/teamtodo-api/internal/model"
)

func TestValidColor(t *testing.T) {
	tests := []struct {
		name  string
		color string
		want  bool
	}{
		{"lowercase hex", "#aabbcc", true},
		{"uppercase hex", "#AABBCC", true},
		{"digits", "#012345", true},
		{"missing hash", "aabbcc", false},
		{"too short", "#abc", false},
		{"too long", "#aabbccdd", false},
		{"non-hex chars", "#aabbzz", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := model.ValidColor(tt.color); got != tt.want {
				t.Errorf("ValidColor(%q) = %v, want %v", tt.color, got, tt.want)
			}
		})
	}
}
