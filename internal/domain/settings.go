package domain

// AutoReplyRule sends a canned message to reviews matching a sentiment
type AutoReplyRule struct {
	ID      string    `json:"id" yaml:"id"`
	Trigger Sentiment `json:"trigger" yaml:"trigger"`
	Message string    `json:"message" yaml:"message"`
}

// AppSettings is loaded and saved wholesale
type AppSettings struct {
	SentimentAnalysisEnabled bool            `json:"sentimentAnalysisEnabled" yaml:"sentimentAnalysisEnabled"`
	DarkModeEnabled          bool            `json:"darkModeEnabled" yaml:"darkModeEnabled"`
	AutoReplyRules           []AutoReplyRule `json:"autoReplyRules" yaml:"autoReplyRules"`
}

// Clone returns a deep copy so edits never alias loaded state
func (s AppSettings) Clone() AppSettings {
	out := s
	out.AutoReplyRules = append([]AutoReplyRule(nil), s.AutoReplyRules...)
	return out
}

// SaveSettingsResult is the body returned by PUT /api/settings
type SaveSettingsResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    AppSettings `json:"data"`
}
