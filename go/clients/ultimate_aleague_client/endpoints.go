package ultimate_aleague_client

const (
	// Base URL
	BaseURL = "https://www.ultimatealeague.com"

	// Paths
	LadderEndpoint = "/ladder"

	ladderSelector = "table#ladder, table.ladder, table.standings"
)
