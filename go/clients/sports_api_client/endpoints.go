package sports_api_client

const (
	// Base URL
	BaseURL = "https://v3.football.api-sports.io"

	// API Endpoints
	StandingsEndpoint = "/standings"

	// League IDs
	ALeagueMenLeagueID = "188"

	// Headers
	RapidAPIKeyHeader  = "X-RapidAPI-Key"
	RapidAPIHostHeader = "X-RapidAPI-Host"
	RapidAPIHost       = "v3.football.api-sports.io"
)
