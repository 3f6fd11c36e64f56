package model_test

import (
	"testing"

	"github.com/teamtodo/teamtodo-api/internal/model"
)

func TestAgentTypeIsValid(t *testing.T) {
	tests := []struct {
		name      string
		agentType model.AgentType
		want      bool
	}{
		{"user", model.AgentTypeUser, true},
		{"team", model.AgentTypeTeam, true},
		{"empty", model.AgentType(""), false},
		{"unknown", model.AgentType("group"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.agentType.IsValid(); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.agentType, got, tt.want)
			}
		})
	}
}

func TestAgentConstructors(t *testing.T) {
	u := model.UserAgent("user-1")
	if u.Type != model.AgentTypeUser || u.ID != "user-1" {
		t.Errorf("unexpected user agent: %+v", u)
	}

	tm := model.TeamAgent("team-1")
	if tm.Type != model.AgentTypeTeam || tm.ID != "team-1" {
		t.Errorf("unexpected team agent: %+v", tm)
	}

	// Agents are comparable values; equality means same variant and id.
	if u == tm || u != model.UserAgent("user-1") {
		t.Error("agent comparison broken")
	}
}
