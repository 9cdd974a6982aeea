package domain

import "time"

type Team struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name"`
	Description            string    `json:"description,omitempty"`
	IncludeLeaderInMetrics bool      `json:"include_leader_in_metrics"`
	LeaderID               string    `json:"leader_id"`
	InviteCode             string    `json:"invite_code,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
}

// TeamMember asocia un usuario a un equipo. Una fila por (team, user).
type TeamMember struct {
	ID                     string    `json:"id"`
	TeamID                 string    `json:"team_id"`
	UserID                 string    `json:"user_id"`
	ShareResultsWithLeader bool      `json:"share_results_with_leader"`
	JoinedAt               time.Time `json:"joined_at"`
}
