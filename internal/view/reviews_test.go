package view

import (
	"context"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryan0dhankhar/reviewdesk/internal/domain"
	"github.com/aryan0dhankhar/reviewdesk/internal/mockapi"
)

func fixtureReviews(t *testing.T) []domain.Review {
	t.Helper()
	f, err := mockapi.LoadFixtures()
	require.NoError(t, err)
	return f.Reviews
}

func TestFilterPendingIsExactSubset(t *testing.T) {
	reviews := fixtureReviews(t)
	require.Len(t, reviews, 20)

	got := FilterReviews(reviews, Filter{Statuses: []domain.ReviewStatus{domain.StatusPending}})

	var want []domain.Review
	for _, rv := range reviews {
		if rv.Status == domain.StatusPending {
			want = append(want, rv)
		}
	}
	assert.Equal(t, want, got)
	assert.Equal(t, PendingCount(reviews), len(got))
}

func TestFilterSearchAndSource(t *testing.T) {
	reviews := fixtureReviews(t)

	got := FilterReviews(reviews, Filter{Search: "  RIVERSIDE ", Sources: []domain.ReviewSource{domain.SourceGoogle}})
	require.NotEmpty(t, got)
	for _, rv := range got {
		assert.Equal(t, "Riverside Mall", rv.StoreName)
		assert.Equal(t, domain.SourceGoogle, rv.Source)
	}

	assert.Equal(t, reviews, FilterReviews(reviews, Filter{}))
}

var (
	allStatuses = []domain.ReviewStatus{domain.StatusPending, domain.StatusReplied, domain.StatusResolved}
	allSources  = []domain.ReviewSource{domain.SourceGoogle, domain.SourceFacebook, domain.SourceInPerson}
)

func pickStatuses(idx []int) []domain.ReviewStatus {
	out := make([]domain.ReviewStatus, 0, len(idx))
	for _, i := range idx {
		out = append(out, allStatuses[i])
	}
	return out
}

func pickSources(idx []int) []domain.ReviewSource {
	out := make([]domain.ReviewSource, 0, len(idx))
	for _, i := range idx {
		out = append(out, allSources[i])
	}
	return out
}

func TestFilterIsMonotone(t *testing.T) {
	reviews := fixtureReviews(t)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	search := gen.OneConstOf("", "a", "e", "store", "staff", "mall", "wait", "x")
	indexes := gen.SliceOf(gen.IntRange(0, 2))

	properties.Property("narrowing a filter never adds reviews", prop.ForAll(
		func(s1, s2 string, st1, st2, so1, so2 []int) bool {
			wide := Filter{Search: s1, Statuses: pickStatuses(st1), Sources: pickSources(so1)}
			first := FilterReviews(reviews, wide)
			if len(first) > len(reviews) {
				return false
			}

			narrow := Filter{Search: s2, Statuses: pickStatuses(st2), Sources: pickSources(so2)}
			second := FilterReviews(first, narrow)
			if len(second) > len(first) {
				return false
			}
			for _, rv := range second {
				if !slices.Contains(first, rv) {
					return false
				}
			}

			longer := FilterReviews(reviews, Filter{Search: s1 + s2, Statuses: wide.Statuses, Sources: wide.Sources})
			return len(longer) <= len(first)
		},
		search, search, indexes, indexes, indexes, indexes,
	))

	properties.TestingRun(t)
}

func TestSubmitReplyUpdatesOnlyThatReview(t *testing.T) {
	n := NewNotifier(time.Minute)
	v := NewReviews(newMockAPI(t), n, 30*time.Millisecond, nil)
	ctx := context.Background()
	require.NoError(t, v.Load(ctx))
	before := v.All()

	v.Expand("rev-001")
	require.NoError(t, v.SubmitReply(ctx, "rev-001", "We are sorry, a manager will reach out."))

	after := v.All()
	require.Len(t, after, len(before))
	for i := range after {
		if after[i].ID == "rev-001" {
			assert.Equal(t, domain.StatusReplied, after[i].Status)
			assert.Equal(t, "We are sorry, a manager will reach out.", after[i].Reply)
			continue
		}
		assert.Equal(t, before[i], after[i])
	}

	toast, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, ToastSuccess, toast.Kind)

	assert.Equal(t, "rev-001", v.Expanded())
	assert.Eventually(t, func() bool { return v.Expanded() == "" }, time.Second, 5*time.Millisecond)
}

type countingReviewsAPI struct {
	replies atomic.Int32
	ok      bool
}

func (c *countingReviewsAPI) Reviews(context.Context) ([]domain.Review, error) {
	return []domain.Review{{ID: "rev-001", Status: domain.StatusPending}}, nil
}

func (c *countingReviewsAPI) Reply(context.Context, string, string) (*domain.ActionResult, error) {
	c.replies.Add(1)
	if !c.ok {
		return &domain.ActionResult{Success: false, Message: "rejected"}, nil
	}
	return &domain.ActionResult{Success: true}, nil
}

func TestSubmitReplyRejectsBlankText(t *testing.T) {
	api := &countingReviewsAPI{ok: true}
	v := NewReviews(api, nil, 0, nil)

	err := v.SubmitReply(context.Background(), "rev-001", " \n\t")
	assert.True(t, IsValidation(err))
	assert.Zero(t, api.replies.Load())
}

func TestSubmitReplyFailureKeepsStatus(t *testing.T) {
	api := &countingReviewsAPI{}
	n := NewNotifier(time.Minute)
	v := NewReviews(api, n, 0, nil)
	require.NoError(t, v.Load(context.Background()))
	v.Expand("rev-001")

	err := v.SubmitReply(context.Background(), "rev-001", "hello")
	require.Error(t, err)
	assert.Equal(t, domain.StatusPending, v.All()[0].Status)
	assert.Equal(t, "rev-001", v.Expanded())
	assert.Empty(t, v.Submitting())

	toast, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, ToastError, toast.Kind)
	assert.True(t, strings.Contains(toast.Message, "rejected"))
}

func TestVisibleUsesCurrentFilter(t *testing.T) {
	v := NewReviews(newMockAPI(t), nil, 0, nil)
	require.NoError(t, v.Load(context.Background()))

	v.SetFilter(Filter{Statuses: []domain.ReviewStatus{domain.StatusResolved}})
	for _, rv := range v.Visible() {
		assert.Equal(t, domain.StatusResolved, rv.Status)
	}
	assert.Len(t, v.Visible(), 5)
}
