package packets

// query for GET /api/athan/today
type TodayRequest struct {
	City      string  `form:"city" binding:"required"`
	Country   string  `form:"country" binding:"required"`
	Admin     string  `form:"admin"`
	Latitude  float64 `form:"lat"`
	Longitude float64 `form:"lon"`
}

// query for GET /api/athan/evaluation; At is RFC3339, empty means now
type EvaluationRequest struct {
	At string `form:"at"`
}
