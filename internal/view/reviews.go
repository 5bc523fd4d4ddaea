package view

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aryan0dhankhar/reviewdesk/internal/domain"
)

// ReviewsAPI is the backend calls used by the reviews view
type ReviewsAPI interface {
	Reviews(ctx context.Context) ([]domain.Review, error)
	Reply(ctx context.Context, reviewID, text string) (*domain.ActionResult, error)
}

// Filter narrows the review list. Empty selections do not filter.
type Filter struct {
	Search   string
	Statuses []domain.ReviewStatus
	Sources  []domain.ReviewSource
}

// FilterReviews returns the reviews matching f, in input order. Search is a
// case-insensitive substring match over the review text and store name.
func FilterReviews(reviews []domain.Review, f Filter) []domain.Review {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]domain.Review, 0, len(reviews))
	for _, rv := range reviews {
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, rv.Status) {
			continue
		}
		if len(f.Sources) > 0 && !slices.Contains(f.Sources, rv.Source) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(rv.Text), search) &&
			!strings.Contains(strings.ToLower(rv.StoreName), search) {
			continue
		}
		out = append(out, rv)
	}
	return out
}

// Reviews is the review inbox with inline replies
type Reviews struct {
	api           ReviewsAPI
	notifier      *Notifier
	collapseDelay time.Duration
	logger        *slog.Logger

	mu         sync.Mutex
	gen        generation
	loading    bool
	reviews    []domain.Review
	filter     Filter
	expanded   string
	submitting string
	collapse   *time.Timer
	err        error
}

func NewReviews(api ReviewsAPI, notifier *Notifier, collapseDelay time.Duration, logger *slog.Logger) *Reviews {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = NewNotifier(0)
	}
	if collapseDelay <= 0 {
		collapseDelay = 2 * time.Second
	}
	return &Reviews{api: api, notifier: notifier, collapseDelay: collapseDelay, logger: logger}
}

// Load fetches every review
func (v *Reviews) Load(ctx context.Context) (err error) {
	defer func() {
		observeFetch("reviews", err)
		reportFetchError(v.logger, v.notifier, "reviews", "reviews", err)
	}()

	v.mu.Lock()
	id := v.gen.next()
	v.loading = true
	v.mu.Unlock()

	reviews, err := v.api.Reviews(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.gen.current(id) {
		return ErrSuperseded
	}
	v.loading = false
	v.err = err
	if err != nil {
		return err
	}
	v.reviews = reviews
	return nil
}

func (v *Reviews) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// All returns every loaded review
func (v *Reviews) All() []domain.Review {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.reviews)
}

func (v *Reviews) SetFilter(f Filter) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = f
}

// Visible returns the loaded reviews passing the current filter
func (v *Reviews) Visible() []domain.Review {
	v.mu.Lock()
	defer v.mu.Unlock()
	return FilterReviews(v.reviews, v.filter)
}

// Expand opens the reply panel of a review, closing any other
func (v *Reviews) Expand(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stopCollapseLocked()
	v.expanded = id
}

func (v *Reviews) Collapse() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stopCollapseLocked()
	v.expanded = ""
}

// Expanded is the ID of the open review, if any
func (v *Reviews) Expanded() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.expanded
}

// Submitting is the ID of the review whose reply is in flight
func (v *Reviews) Submitting() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.submitting
}

// SubmitReply sends a reply. On success only that review becomes replied,
// a toast is shown and the open panel collapses after the collapse delay.
func (v *Reviews) SubmitReply(ctx context.Context, reviewID, text string) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Field: "replyText", Message: "reply cannot be empty"}
	}

	v.mu.Lock()
	if v.submitting != "" {
		v.mu.Unlock()
		return &ValidationError{Field: "reviewId", Message: "another reply is being sent"}
	}
	v.submitting = reviewID
	v.mu.Unlock()

	ack, err := v.api.Reply(ctx, reviewID, text)
	if err == nil && !ack.Success {
		err = errors.New(ack.Message)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.submitting = ""
	if err != nil {
		v.notifier.Show(ToastError, "Failed to send reply: "+err.Error())
		return err
	}

	for i := range v.reviews {
		if v.reviews[i].ID == reviewID {
			v.reviews[i].Status = domain.StatusReplied
			v.reviews[i].Reply = text
			break
		}
	}
	v.notifier.Show(ToastSuccess, "Reply sent successfully")

	if v.expanded == reviewID {
		v.stopCollapseLocked()
		v.collapse = time.AfterFunc(v.collapseDelay, func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			if v.expanded == reviewID {
				v.expanded = ""
			}
		})
	}
	return nil
}

func (v *Reviews) stopCollapseLocked() {
	if v.collapse != nil {
		v.collapse.Stop()
		v.collapse = nil
	}
}

// PendingCount counts reviews awaiting a reply
func PendingCount(reviews []domain.Review) int {
	n := 0
	for _, rv := range reviews {
		if rv.Status == domain.StatusPending {
			n++
		}
	}
	return n
}
