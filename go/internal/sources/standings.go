package sources

import (
	"context"
	"time"

	"github.com/purplehaze/glorynews/go/clients"
	"github.com/purplehaze/glorynews/go/clients/aleague_client"
	"github.com/purplehaze/glorynews/go/clients/espn_client"
	"github.com/purplehaze/glorynews/go/clients/reddit_client"
	"github.com/purplehaze/glorynews/go/clients/sport_radar_client"
	"github.com/purplehaze/glorynews/go/clients/sports_api_client"
	"github.com/purplehaze/glorynews/go/clients/ultimate_aleague_client"
	"github.com/purplehaze/glorynews/go/internal/models"
)

// rowScraper is satisfied by the HTML ladder clients
type rowScraper func(ctx context.Context) ([]clients.TableRow, error)

// TableSource adapts an HTML ladder page
type TableSource struct {
	info   Info
	scrape rowScraper
	norm   *Normalizer
}

func (s *TableSource) Info() Info { return s.info }

func (s *TableSource) Fetch(ctx context.Context) []models.StandingsEntry {
	rows, err := s.scrape(ctx)
	if err != nil {
		logFailure(s.info, err)
		return nil
	}
	return s.norm.FromRows(rows)
}

// NewALeagueSource reads the official league ladder page
func NewALeagueSource(client *aleague_client.ALeagueClient, cfg clients.ExternalSourceConfig, norm *Normalizer) *TableSource {
	return &TableSource{info: InfoFromConfig(cfg), scrape: client.GetLadder, norm: norm}
}

// NewESPNSource reads the ESPN standings page
func NewESPNSource(client *espn_client.ESPNClient, cfg clients.ExternalSourceConfig, norm *Normalizer) *TableSource {
	return &TableSource{info: InfoFromConfig(cfg), scrape: client.GetStandings, norm: norm}
}

// NewUltimateALeagueSource reads the fan-run statistics site
func NewUltimateALeagueSource(client *ultimate_aleague_client.UltimateALeagueClient, cfg clients.ExternalSourceConfig, norm *Normalizer) *TableSource {
	return &TableSource{info: InfoFromConfig(cfg), scrape: client.GetLadder, norm: norm}
}

// RedditLadderSource pulls a pasted ladder out of community posts
type RedditLadderSource struct {
	info   Info
	client *reddit_client.RedditClient
	norm   *Normalizer
}

func NewRedditLadderSource(client *reddit_client.RedditClient, cfg clients.ExternalSourceConfig, norm *Normalizer) *RedditLadderSource {
	return &RedditLadderSource{info: InfoFromConfig(cfg), client: client, norm: norm}
}

func (s *RedditLadderSource) Info() Info { return s.info }

func (s *RedditLadderSource) Fetch(ctx context.Context) []models.StandingsEntry {
	posts, err := s.client.SearchLadderPosts(ctx)
	if err != nil {
		logFailure(s.info, err)
		return nil
	}
	for _, p := range posts {
		if entries := s.norm.ParsePipeTable(p.SelfText); len(entries) > 0 {
			return entries
		}
	}
	return nil
}

// APISportsSource reads the API-Football standings endpoint
type APISportsSource struct {
	info   Info
	client *sports_api_client.SportsApiClient
	norm   *Normalizer
}

func NewAPISportsSource(client *sports_api_client.SportsApiClient, cfg clients.ExternalSourceConfig, norm *Normalizer) *APISportsSource {
	return &APISportsSource{info: InfoFromConfig(cfg), client: client, norm: norm}
}

func (s *APISportsSource) Info() Info { return s.info }

func (s *APISportsSource) Fetch(ctx context.Context) []models.StandingsEntry {
	league, err := s.client.GetALeagueStandings(ctx, SeasonStartYear(s.norm.now()))
	if err != nil {
		logFailure(s.info, err)
		return nil
	}
	if len(league.Standings) == 0 {
		return nil
	}

	group := league.Standings[0]
	entries := make([]models.StandingsEntry, 0, len(group))
	for _, st := range group {
		if st.Team.Name == "" {
			continue
		}
		gf, ga := deref(st.All.Goals.For), deref(st.All.Goals.Against)
		gd := goalDifference(gf, ga, st.GoalsDiff)
		entries = append(entries, models.StandingsEntry{
			ID:             Slugify(st.Team.Name),
			Name:           st.Team.Name,
			Position:       st.Rank,
			Played:         deref(st.All.Played),
			Won:            deref(st.All.Win),
			Drawn:          deref(st.All.Draw),
			Lost:           deref(st.All.Lose),
			GoalsFor:       gf,
			GoalsAgainst:   ga,
			GoalDifference: gd,
			Points:         deref(st.Points),
			Form:           s.norm.Form.Normalize(ParseFormString(st.Form)),
			Logo:           st.Team.Logo,
			IsFollowedTeam: s.norm.Team.Matches(st.Team.Name),
		})
	}
	return entries
}

// SportRadarSource reads the Sportradar season standings
type SportRadarSource struct {
	info     Info
	client   *sport_radar_client.SportRadarClient
	seasonID string
	norm     *Normalizer
}

func NewSportRadarSource(client *sport_radar_client.SportRadarClient, seasonID string, cfg clients.ExternalSourceConfig, norm *Normalizer) *SportRadarSource {
	return &SportRadarSource{info: InfoFromConfig(cfg), client: client, seasonID: seasonID, norm: norm}
}

func (s *SportRadarSource) Info() Info { return s.info }

func (s *SportRadarSource) Fetch(ctx context.Context) []models.StandingsEntry {
	if s.seasonID == "" {
		return nil
	}
	standings, err := s.client.GetSeasonStandings(ctx, s.seasonID)
	if err != nil {
		logFailure(s.info, err)
		return nil
	}

	entries := make([]models.StandingsEntry, 0, len(standings))
	for _, st := range standings {
		name := st.Competitor.Name
		if name == "" {
			continue
		}
		gf, ga := deref(st.GoalsFor), deref(st.GoalsAgainst)
		gd := goalDifference(gf, ga, st.GoalDiff)
		entries = append(entries, models.StandingsEntry{
			ID:             Slugify(name),
			Name:           name,
			Position:       st.Rank,
			Played:         deref(st.Played),
			Won:            deref(st.Win),
			Drawn:          deref(st.Draw),
			Lost:           deref(st.Loss),
			GoalsFor:       gf,
			GoalsAgainst:   ga,
			GoalDifference: gd,
			Points:         deref(st.Points),
			Form:           s.norm.Form.Normalize(nil),
			IsFollowedTeam: s.norm.Team.Matches(name),
		})
	}
	return entries
}

// SeasonStartYear is the calendar year a season kicked off in. Seasons run from
// October to May, so anything before October belongs to the previous year's season.
func SeasonStartYear(now time.Time) int {
	if now.Month() >= time.October {
		return now.Year()
	}
	return now.Year() - 1
}

// goalDifference trusts the provider's figure only when no goal tallies came with it
func goalDifference(gf, ga int, provided *int) int {
	if gf == 0 && ga == 0 && provided != nil {
		return *provided
	}
	return gf - ga
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
