package clients

import "sort"

// ExternalSource represents different external data providers
type ExternalSource string

const (
	// ExternalSourceALeagues is the official league site ladder
	ExternalSourceALeagues ExternalSource = "aleagues"

	// ExternalSourceESPN is the partner site standings page
	ExternalSourceESPN ExternalSource = "espn"

	// ExternalSourceUltimateALeague is the community stats site
	ExternalSourceUltimateALeague ExternalSource = "ultimatealeague"

	// ExternalSourceReddit is the r/Aleague community
	ExternalSourceReddit ExternalSource = "reddit"

	// ExternalSourceSportsAPI is the API-Football JSON API
	ExternalSourceSportsAPI ExternalSource = "apisports"

	// ExternalSourceSportRadar is the Sportradar soccer JSON API
	ExternalSourceSportRadar ExternalSource = "sportradar"

	// ExternalSourceClubFeed is the club's official news RSS feed
	ExternalSourceClubFeed ExternalSource = "perthglory"

	// ExternalSourceALeaguesNews is the league site's news listing
	ExternalSourceALeaguesNews ExternalSource = "aleagues-news"

	// ExternalSourceRedditNews is the community hot posts listing
	ExternalSourceRedditNews ExternalSource = "reddit-news"
)

// SourceKind separates ladder providers from news providers
type SourceKind string

const (
	KindStandings SourceKind = "standings"
	KindNews      SourceKind = "news"
)

// ExternalSourceConfig holds configuration for external sources
type ExternalSourceConfig struct {
	Source      ExternalSource `json:"source" yaml:"source"`
	Kind        SourceKind     `json:"kind" yaml:"kind"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	URL         string         `json:"url" yaml:"url"`
	Author      string         `json:"author" yaml:"author"`
	Priority    int            `json:"priority" yaml:"priority"` // Higher priority sources are tried first
	Active      bool           `json:"active" yaml:"active"`
}

// GetExternalSources returns all configured external sources
func GetExternalSources() map[ExternalSource]ExternalSourceConfig {
	return map[ExternalSource]ExternalSourceConfig{
		ExternalSourceALeagues: {
			Source:      ExternalSourceALeagues,
			Kind:        KindStandings,
			Name:        "A-Leagues",
			Description: "Official league ladder page",
			URL:         "https://www.aleagues.com.au/ladders",
			Author:      "Australian Professional Leagues",
			Priority:    100,
			Active:      true,
		},
		ExternalSourceESPN: {
			Source:      ExternalSourceESPN,
			Kind:        KindStandings,
			Name:        "ESPN",
			Description: "ESPN A-League Men standings table",
			URL:         "https://www.espn.com.au/football/standings/_/league/aus.1",
			Author:      "ESPN",
			Priority:    90,
			Active:      true,
		},
		ExternalSourceUltimateALeague: {
			Source:      ExternalSourceUltimateALeague,
			Kind:        KindStandings,
			Name:        "Ultimate A-League",
			Description: "Community-run statistics archive",
			URL:         "https://www.ultimatealeague.com/ladder",
			Author:      "Ultimate A-League",
			Priority:    80,
			Active:      true,
		},
		ExternalSourceReddit: {
			Source:      ExternalSourceReddit,
			Kind:        KindStandings,
			Name:        "r/Aleague",
			Description: "Ladder tables posted in community threads",
			URL:         "https://www.reddit.com/r/Aleague",
			Author:      "r/Aleague community",
			Priority:    70,
			Active:      true,
		},
		ExternalSourceSportsAPI: {
			Source:      ExternalSourceSportsAPI,
			Kind:        KindStandings,
			Name:        "API-Football",
			Description: "API-Sports football standings",
			URL:         "https://v3.football.api-sports.io/standings",
			Author:      "API-Sports",
			Priority:    60,
			Active:      true,
		},
		ExternalSourceSportRadar: {
			Source:      ExternalSourceSportRadar,
			Kind:        KindStandings,
			Name:        "Sportradar",
			Description: "Sportradar soccer season standings",
			URL:         "https://api.sportradar.com/soccer/trial/v4",
			Author:      "Sportradar",
			Priority:    50,
			Active:      false,
		},
		ExternalSourceClubFeed: {
			Source:      ExternalSourceClubFeed,
			Kind:        KindNews,
			Name:        "Perth Glory",
			Description: "Official club news feed",
			URL:         "https://www.perthglory.com.au/news/rss",
			Author:      "Perth Glory FC",
			Priority:    100,
			Active:      true,
		},
		ExternalSourceALeaguesNews: {
			Source:      ExternalSourceALeaguesNews,
			Kind:        KindNews,
			Name:        "A-Leagues News",
			Description: "League news listing",
			URL:         "https://www.aleagues.com.au/news",
			Author:      "Australian Professional Leagues",
			Priority:    80,
			Active:      true,
		},
		ExternalSourceRedditNews: {
			Source:      ExternalSourceRedditNews,
			Kind:        KindNews,
			Name:        "r/Aleague",
			Description: "Community discussion threads",
			URL:         "https://www.reddit.com/r/Aleague",
			Author:      "r/Aleague community",
			Priority:    60,
			Active:      true,
		},
	}
}

// ValidateExternalSource checks if the source is valid
func ValidateExternalSource(source ExternalSource) bool {
	sources := GetExternalSources()
	_, exists := sources[source]
	return exists
}

// OrderByPriority filters sources by kind and sorts them highest priority first.
// Ties are broken by source key so the order is stable.
func OrderByPriority(sources map[ExternalSource]ExternalSourceConfig, kind SourceKind) []ExternalSourceConfig {
	var out []ExternalSourceConfig
	for _, config := range sources {
		if config.Kind == kind && config.Active {
			out = append(out, config)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Source < out[j].Source
	})
	return out
}
