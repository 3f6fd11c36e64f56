package model

type AgentType string

const (
	AgentTypeUser AgentType = "user"
	AgentTypeTeam AgentType = "team"
)

func (t AgentType) IsValid() bool {
	return t == AgentTypeUser || t == AgentTypeTeam
}

// Agent is the acting identity that owns resources: an individual user or a
// team. Exactly one variant exists per agent; both fields are always set.
type Agent struct {
	Type AgentType `json:"type"`
	ID   string    `json:"id"`
}

func UserAgent(id string) Agent {
	return Agent{Type: AgentTypeUser, ID: id}
}

func TeamAgent(id string) Agent {
	return Agent{Type: AgentTypeTeam, ID: id}
}
