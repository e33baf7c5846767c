package sport_radar_client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/purplehaze/glorynews/go/clients"
)

// SportRadar API response structures
type SRCompetitor struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

type SRStanding struct {
	Rank           int          `json:"rank"`
	Competitor     SRCompetitor `json:"competitor"`
	Played         *int         `json:"played"`
	Win            *int         `json:"win"`
	Draw           *int         `json:"draw"`
	Loss           *int         `json:"loss"`
	GoalsFor       *int         `json:"goals_for"`
	GoalsAgainst   *int         `json:"goals_against"`
	GoalDiff       *int         `json:"goals_diff"`
	Points         *int         `json:"points"`
	CurrentOutcome string       `json:"current_outcome"`
}

type SRGroup struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Standings []SRStanding `json:"standings"`
}

type SRStandingsBlock struct {
	Type   string    `json:"type"`
	Groups []SRGroup `json:"groups"`
}

type SRStandingsResponse struct {
	GeneratedAt string             `json:"generated_at"`
	Standings   []SRStandingsBlock `json:"standings"`
}

// GetSeasonStandings retrieves the total standings table for a season
func (c *SportRadarClient) GetSeasonStandings(ctx context.Context, seasonID string) ([]SRStanding, error) {
	endpoint := fmt.Sprintf(seasonStandingsPath, languageCodeEnglish, url.PathEscape(seasonID))

	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get season standings: %w", err)
	}

	var response SRStandingsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, clients.ParseError.New("failed to unmarshal response: %v, raw response: %.200s", err, string(body))
	}

	for _, block := range response.Standings {
		if block.Type != "total" {
			continue
		}
		for _, group := range block.Groups {
			if len(group.Standings) > 0 {
				return group.Standings, nil
			}
		}
	}

	return nil, clients.ParseError.New("no total standings in season %s", seasonID)
}
