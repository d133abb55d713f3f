package dto

type HistoryFilter struct {
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
}

type PlayedDate struct {
	Date string `json:"date"`
}
