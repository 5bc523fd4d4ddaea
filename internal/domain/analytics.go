package domain

// KPIs are the headline numbers on the dashboard
type KPIs struct {
	NSS     float64 `json:"nss" yaml:"nss"`
	SLA     float64 `json:"sla" yaml:"sla"`
	Rating  float64 `json:"rating" yaml:"rating"`
	Pending int     `json:"pending" yaml:"pending"`
	Volume  int     `json:"volume" yaml:"volume"`
}

// TrendPoint is one sample of the NSS trend line
type TrendPoint struct {
	Label string  `json:"label" yaml:"label"`
	Value float64 `json:"value" yaml:"value"`
}

// StoreScore is a ranked store on the dashboard
type StoreScore struct {
	Name  string  `json:"name" yaml:"name"`
	Score float64 `json:"score" yaml:"score"`
}

// Charts groups the dashboard chart series
type Charts struct {
	NSSTrend     []TrendPoint       `json:"nssTrend" yaml:"nssTrend"`
	ChannelShare map[string]float64 `json:"channelShare" yaml:"channelShare"`
	TopStores    []StoreScore       `json:"topStores" yaml:"topStores"`
}

// DashboardStats is the body of GET /api/dashboard/stats
type DashboardStats struct {
	KPIs   KPIs   `json:"kpis" yaml:"kpis"`
	Charts Charts `json:"charts" yaml:"charts"`
}

// ChannelPerf is response speed and sentiment per channel
type ChannelPerf struct {
	Channel   string  `json:"channel" yaml:"channel"`
	Speed     float64 `json:"speed" yaml:"speed"`
	Sentiment float64 `json:"sentiment" yaml:"sentiment"`
}

// StoreRecord is a row of the store league table
type StoreRecord struct {
	ID           string  `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	City         string  `json:"city" yaml:"city"`
	Rating       float64 `json:"rating" yaml:"rating"`
	ReviewCount  int     `json:"reviewCount" yaml:"reviewCount"`
	NSS          float64 `json:"nss" yaml:"nss"`
	ResponseRate float64 `json:"responseRate" yaml:"responseRate"`
}

// HeatmapCell is the sentiment value for a day and time slot
type HeatmapCell struct {
	Day      string  `json:"day" yaml:"day"`
	TimeSlot string  `json:"timeSlot" yaml:"timeSlot"`
	Value    float64 `json:"value" yaml:"value"`
}

// Heatmap is the body of GET /api/analytics/heatmap
type Heatmap struct {
	Data      []HeatmapCell `json:"data" yaml:"data"`
	Days      []string      `json:"days" yaml:"days"`
	TimeSlots []string      `json:"timeSlots" yaml:"timeSlots"`
}
