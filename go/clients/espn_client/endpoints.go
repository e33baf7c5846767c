package espn_client

const (
	// Base URL
	BaseURL = "https://www.espn.com.au"

	// Paths
	StandingsEndpoint = "/football/standings/_/league/aus.1"

	// ESPN renders team names and stats as two side-by-side tables
	teamTableSelector  = ".Table--fixed-left tbody tr"
	statsTableSelector = ".Table__Scroller table"
)

// ESPN labels points "P" next to "GP" for games played
var headerAliases = map[string]string{
	"p": "pts",
}
