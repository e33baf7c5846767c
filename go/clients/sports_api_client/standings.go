package sports_api_client

import (
	"context"
	"fmt"

	"github.com/purplehaze/glorynews/go/clients"
)

type TeamRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

type Goals struct {
	For     *int `json:"for"`
	Against *int `json:"against"`
}

type Record struct {
	Played *int  `json:"played"`
	Win    *int  `json:"win"`
	Draw   *int  `json:"draw"`
	Lose   *int  `json:"lose"`
	Goals  Goals `json:"goals"`
}

type Standing struct {
	Rank        int     `json:"rank"`
	Team        TeamRef `json:"team"`
	Points      *int    `json:"points"`
	GoalsDiff   *int    `json:"goalsDiff"`
	Group       string  `json:"group"`
	Form        string  `json:"form"`
	Status      string  `json:"status"`
	Description string  `json:"description"`
	All         Record  `json:"all"`
	Update      string  `json:"update"`
}

type League struct {
	ID        int          `json:"id"`
	Name      string       `json:"name"`
	Country   string       `json:"country"`
	Logo      string       `json:"logo"`
	Season    int          `json:"season"`
	Standings [][]Standing `json:"standings"`
}

type StandingsResponse struct {
	Get        string                 `json:"get"`
	Parameters map[string]interface{} `json:"parameters"`
	Errors     interface{}            `json:"errors"`
	Results    int                    `json:"results"`
	Response   []struct {
		League League `json:"league"`
	} `json:"response"`
}

// GetStandings returns the regular-season table for a league and season start year
func (c *SportsApiClient) GetStandings(ctx context.Context, leagueID string, season int) (*League, error) {
	endpoint := fmt.Sprintf("%s?league=%s&season=%d", StandingsEndpoint, leagueID, season)

	var response StandingsResponse
	if err := c.GetJSON(ctx, endpoint, &response); err != nil {
		return nil, fmt.Errorf("failed to get standings: %w", err)
	}

	if response.Errors != nil {
		if errMap, ok := response.Errors.(map[string]interface{}); ok && len(errMap) > 0 {
			return nil, clients.NetworkError.New("API returned errors: %v", response.Errors)
		}
		if errList, ok := response.Errors.([]interface{}); ok && len(errList) > 0 {
			return nil, clients.NetworkError.New("API returned errors: %v", response.Errors)
		}
	}

	if len(response.Response) == 0 {
		return nil, clients.ParseError.New("no standings for league %s season %d", leagueID, season)
	}

	return &response.Response[0].League, nil
}

// GetALeagueStandings is GetStandings for the A-League Men
func (c *SportsApiClient) GetALeagueStandings(ctx context.Context, season int) (*League, error) {
	return c.GetStandings(ctx, ALeagueMenLeagueID, season)
}
