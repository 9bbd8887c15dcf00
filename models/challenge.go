package models

type Challenge struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// ChallengeCatalog is the static set of savings challenges a user may join.
var ChallengeCatalog = []Challenge{
	{ID: 1, Title: "Save $50 in a week"},
	{ID: 2, Title: "No coffee shop spending for 3 days"},
	{ID: 3, Title: "Save $100 in a month"},
	{ID: 4, Title: "Track all spending for 7 days"},
	{ID: 5, Title: "No take out for 5 days"},
}

type UpdateChallengesRequest struct {
	IDs []int `json:"ids"`
}
