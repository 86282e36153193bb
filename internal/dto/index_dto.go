package dto

type IndexStatsResponse struct {
	Backend   string `json:"backend"`
	Entries   int    `json:"entries"`
	Dimension int    `json:"dimension"`
	Location  string `json:"location"`
}

type RebuildResponse struct {
	Indexed int    `json:"indexed"`
	Detail  string `json:"detail"`
}

type RebuildJobMessage struct {
	RequestedBy string `json:"requested_by"`
}

type SearchHit struct {
	Text     string            `json:"text"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata"`
}
