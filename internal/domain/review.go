package domain

import (
	"fmt"
	"strings"
)

// ReviewSource is the channel a review arrived through
type ReviewSource string

const (
	SourceGoogle   ReviewSource = "google"
	SourceFacebook ReviewSource = "facebook"
	SourceInPerson ReviewSource = "in-person"
)

// Sentiment classifies the tone of a review or the trigger of an auto-reply rule
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// ParseSentiment maps case-insensitive text to a Sentiment
func ParseSentiment(s string) (Sentiment, error) {
	switch v := Sentiment(strings.ToLower(strings.TrimSpace(s))); v {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return v, nil
	default:
		return "", fmt.Errorf("unknown sentiment %q", s)
	}
}

// ReviewStatus tracks the response workflow of a review
type ReviewStatus string

const (
	StatusPending  ReviewStatus = "pending"
	StatusReplied  ReviewStatus = "replied"
	StatusResolved ReviewStatus = "resolved"
)

// Review is a single piece of customer feedback
type Review struct {
	ID        string       `json:"id" yaml:"id"`
	Date      string       `json:"date" yaml:"date"`
	Source    ReviewSource `json:"source" yaml:"source"`
	StoreName string       `json:"storeName" yaml:"storeName"`
	Rating    int          `json:"rating" yaml:"rating"`
	Text      string       `json:"text" yaml:"text"`
	Sentiment Sentiment    `json:"sentiment" yaml:"sentiment"`
	Status    ReviewStatus `json:"status" yaml:"status"`
	Reply     string       `json:"reply,omitempty" yaml:"reply,omitempty"`
}

// ReplyRequest is the body of POST /api/reviews/reply
type ReplyRequest struct {
	ReviewID  string `json:"reviewId"`
	ReplyText string `json:"replyText"`
}

// ActionResult is the generic {success, message} acknowledgement
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
