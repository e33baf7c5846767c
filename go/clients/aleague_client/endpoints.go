package aleague_client

const (
	// Base URL
	BaseURL = "https://www.aleagues.com.au"

	// Paths
	LadderEndpoint = "/ladders/a-league-men"
	NewsEndpoint   = "/news"

	// Selectors, most specific first
	ladderTableSelector = "table.ladder-table, table[data-component='ladder'], .ladder table"
	newsCardSelector    = "article.article-card, .news-list article, li.news-item"
)
