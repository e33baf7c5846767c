package sport_radar_client

const (
	// Base URL - SportRadar uses trial access level by default
	BaseURL = "https://api.sportradar.com/soccer/trial/v4/"

	// Paths, formatted with language code and season ID
	languageCodeEnglish = "en"
	seasonStandingsPath = "%s/seasons/%s/standings.json"

	// Headers - SportRadar uses api_key query parameter, not header
	APIKeyParam     = "api_key"
	JsonHeader      = "accept"
	JsonContentType = "application/json"
)
