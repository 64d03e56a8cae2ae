package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentiq/contentiq/internal/adapters/store"
	"github.com/contentiq/contentiq/internal/domain/entities"
	"github.com/contentiq/contentiq/internal/domain/providers"
	apperrors "github.com/contentiq/contentiq/pkg/errors"
)

func newTestService() (*AnalyticsService, *time.Time) {
	current := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	svc := NewAnalyticsService(store.NewMemoryStore())
	svc.now = func() time.Time { return current }
	return svc, &current
}

func TestTrackQuery_RejectsEmptyQuery(t *testing.T) {
	svc, _ := newTestService()

	err := svc.TrackQuery(context.Background(), "s1", "   ", 100, true)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
}

func TestTrackQuery_IncrementsDailyCounter(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.TrackQuery(ctx, "s1", "hotels in lagos", 120, true))
	require.NoError(t, svc.TrackQuery(ctx, "s2", "tours in accra", 80, true))

	trends := svc.GetTrends(ctx, 1)
	require.Len(t, trends, 1)
	assert.Equal(t, "2026-08-26", trends[0].Date)
	assert.Equal(t, int64(2), trends[0].Queries)
}

func TestTrackQuery_GeneratesSessionIDWhenMissing(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.TrackQuery(ctx, "", "hotels in lagos", 120, true))

	top := svc.GetTopQueries(ctx, 10)
	require.Len(t, top, 1)
	assert.Equal(t, "hotels in lagos", top[0].Query)
}

func TestGetSummary_EndToEnd(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.TrackQuery(ctx, "s1", "hotels in lagos", 120.5, true))

	summary := svc.GetSummary(ctx)
	assert.Equal(t, int64(1), summary.TotalQueries)
	assert.Equal(t, 120.5, summary.AverageResponseTimeMs)
	assert.Equal(t, 100.0, summary.SuccessRate)
	assert.Equal(t, 0, summary.ContentGapsCount)
	assert.Equal(t, "2026-08-26", summary.LastUpdated.Format("2006-01-02"))
}

func TestGetSummary_RoundsToOneDecimal(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.TrackQuery(ctx, "s1", "hotels", 100, true))
	require.NoError(t, svc.TrackQuery(ctx, "s1", "hotels", 101, true))
	require.NoError(t, svc.TrackQuery(ctx, "s1", "hotels", 101, false))

	summary := svc.GetSummary(ctx)
	assert.Equal(t, 100.7, summary.AverageResponseTimeMs)
	assert.Equal(t, 66.7, summary.SuccessRate)
}

func TestGetSummary_RollingSamplesCapAtMostRecentThousand(t *testing.T) {
	svc, current := newTestService()
	ctx := context.Background()

	// A slow failed query first, then a thousand fast successes. The
	// rolling lists hold 1000 samples, so the outlier falls off the end
	// while the daily counter keeps the full tally.
	require.NoError(t, svc.TrackQuery(ctx, "s1", "hotels", 99999, false))
	for i := 0; i < 1000; i++ {
		*current = current.Add(time.Millisecond)
		require.NoError(t, svc.TrackQuery(ctx, "s1", "hotels", 100, true))
	}

	summary := svc.GetSummary(ctx)
	assert.Equal(t, int64(1001), summary.TotalQueries)
	assert.Equal(t, 100.0, summary.AverageResponseTimeMs)
	assert.Equal(t, 100.0, summary.SuccessRate)
}

func TestGetSummary_SumsTrailingSevenDays(t *testing.T) {
	svc, current := newTestService()
	ctx := context.Background()

	// One query eight days ago must fall outside the summary window.
	*current = time.Date(2026, 8, 18, 10, 0, 0, 0, time.UTC)
	require.NoError(t, svc.TrackQuery(ctx, "s1", "old query", 100, true))

	*current = time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	require.NoError(t, svc.TrackQuery(ctx, "s1", "yesterday query", 100, true))

	*current = time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	require.NoError(t, svc.TrackQuery(ctx, "s1", "today query", 100, true))

	summary := svc.GetSummary(ctx)
	assert.Equal(t, int64(2), summary.TotalQueries)
}

func TestGetTrends_ShapeAndOrder(t *testing.T) {
	svc, current := newTestService()
	ctx := context.Background()

	*current = time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	require.NoError(t, svc.TrackQuery(ctx, "s1", "q", 100, true))

	*current = time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	require.NoError(t, svc.TrackQuery(ctx, "s1", "q", 100, true))
	require.NoError(t, svc.TrackQuery(ctx, "s1", "q", 100, true))

	trends := svc.GetTrends(ctx, 7)
	require.Len(t, trends, 7)

	// Oldest to newest, one entry per calendar day, zeros where no data.
	assert.Equal(t, "2026-08-20", trends[0].Date)
	assert.Equal(t, "2026-08-26", trends[6].Date)
	assert.Equal(t, int64(0), trends[0].Queries)
	assert.Equal(t, int64(1), trends[4].Queries)
	assert.Equal(t, int64(2), trends[6].Queries)
}

func TestGetTrends_DefaultsToSevenDays(t *testing.T) {
	svc, _ := newTestService()

	assert.Len(t, svc.GetTrends(context.Background(), 0), 7)
	assert.Len(t, svc.GetTrends(context.Background(), -3), 7)
	assert.Len(t, svc.GetTrends(context.Background(), 30), 30)
}

func TestGetTopQueries_OrderAndLimit(t *testing.T) {
	svc, current := newTestService()
	ctx := context.Background()

	// Advance the clock between events so each gets a distinct key.
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.TrackQuery(ctx, "s1", "hotels in lagos", 100, true))
		*current = current.Add(time.Second)
	}
	for i := 0; i < 2; i++ {
		require.NoError(t, svc.TrackQuery(ctx, "s2", "tours in accra", 100, true))
		*current = current.Add(time.Second)
	}
	require.NoError(t, svc.TrackQuery(ctx, "s3", "best restaurants", 100, true))

	top := svc.GetTopQueries(ctx, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "hotels in lagos", top[0].Query)
	assert.Equal(t, 3, top[0].Count)
	assert.Equal(t, "Hotels", top[0].Category)
	assert.Equal(t, "tours in accra", top[1].Query)
	assert.Equal(t, 2, top[1].Count)
}

func TestGetTopQueries_TiesBreakByQueryText(t *testing.T) {
	svc, current := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.TrackQuery(ctx, "s1", "zebra safari", 100, true))
	*current = current.Add(time.Second)
	require.NoError(t, svc.TrackQuery(ctx, "s1", "alpaca farm", 100, true))

	top := svc.GetTopQueries(ctx, 10)
	require.Len(t, top, 2)
	assert.Equal(t, "alpaca farm", top[0].Query)
	assert.Equal(t, "zebra safari", top[1].Query)
}

func TestCategorizeQuery(t *testing.T) {
	cases := []struct {
		query    string
		category string
	}{
		{"Need a hotel tonight", "Hotels"},
		{"cheap accommodation nearby", "Hotels"},
		{"best budget trip", "Tours"}, // "trip" matches before "budget"
		{"tour of the old town", "Tours"},
		{"romantic restaurant", "Dining"},
		{"how much does it cost", "Pricing"},
		{"visa requirements", "General"},
		{"", "General"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.category, CategorizeQuery(tc.query), "query: %q", tc.query)
	}
}

func TestTrackContentGap_FrequencyAndTimestamps(t *testing.T) {
	svc, current := newTestService()
	ctx := context.Background()

	gap := entities.GapData{
		Priority:             entities.GapPriorityHigh,
		SuggestedContentType: "article",
		SuggestedTitle:       "Guide to visas",
		Reason:               "no visa content",
	}

	firstSeen := *current
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.TrackContentGap(ctx, "visa requirements for ghana", gap))
		*current = current.Add(time.Hour)
	}

	gaps := svc.GetContentGaps(ctx)
	require.Len(t, gaps, 1)
	assert.Equal(t, int64(3), gaps[0].Frequency)
	assert.Equal(t, "visa requirements for ghana", gaps[0].Query)
	assert.True(t, gaps[0].FirstSeen.Equal(firstSeen))
	assert.True(t, gaps[0].LastSeen.After(gaps[0].FirstSeen))
}

func TestTrackContentGap_RepeatKeepsFirstAnalysis(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first := entities.GapData{Priority: entities.GapPriorityHigh, Reason: "original"}
	second := entities.GapData{Priority: entities.GapPriorityLow, Reason: "revised"}

	require.NoError(t, svc.TrackContentGap(ctx, "surf spots", first))
	require.NoError(t, svc.TrackContentGap(ctx, "surf spots", second))

	gaps := svc.GetContentGaps(ctx)
	require.Len(t, gaps, 1)
	assert.Equal(t, entities.GapPriorityHigh, gaps[0].GapData.Priority)
	assert.Equal(t, "original", gaps[0].GapData.Reason)
}

func TestTrackContentGap_NormalizedQueriesShareRecord(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	gap := entities.GapData{Priority: entities.GapPriorityMedium}
	require.NoError(t, svc.TrackContentGap(ctx, "Surf  Spots", gap))
	require.NoError(t, svc.TrackContentGap(ctx, "surf spots", gap))

	gaps := svc.GetContentGaps(ctx)
	require.Len(t, gaps, 1)
	assert.Equal(t, int64(2), gaps[0].Frequency)
}

func TestGetContentGaps_PriorityBeatsFrequency(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	low := entities.GapData{Priority: entities.GapPriorityLow}
	high := entities.GapData{Priority: entities.GapPriorityHigh}

	for i := 0; i < 100; i++ {
		require.NoError(t, svc.TrackContentGap(ctx, "frequent low priority", low))
	}
	require.NoError(t, svc.TrackContentGap(ctx, "rare high priority", high))
	require.NoError(t, svc.TrackContentGap(ctx, "rare high priority", high))

	gaps := svc.GetContentGaps(ctx)
	require.Len(t, gaps, 2)
	assert.Equal(t, "rare high priority", gaps[0].Query)
	assert.Equal(t, int64(2), gaps[0].Frequency)
	assert.Equal(t, "frequent low priority", gaps[1].Query)
	assert.Equal(t, int64(100), gaps[1].Frequency)
}

// failingStore returns an error from every operation.
type failingStore struct{}

var errBackendDown = errors.New("backend down")

func (f *failingStore) Get(context.Context, string) ([]byte, error) { return nil, errBackendDown }
func (f *failingStore) SetWithExpiry(context.Context, string, []byte, time.Duration) error {
	return errBackendDown
}
func (f *failingStore) Increment(context.Context, string) (int64, error) { return 0, errBackendDown }
func (f *failingStore) SetExpiry(context.Context, string, time.Duration) error {
	return errBackendDown
}
func (f *failingStore) ListPushFront(context.Context, string, string) error { return errBackendDown }
func (f *failingStore) ListTrim(context.Context, string, int64, int64) error {
	return errBackendDown
}
func (f *failingStore) ListRange(context.Context, string, int64, int64) ([]string, error) {
	return nil, errBackendDown
}
func (f *failingStore) KeysByPrefix(context.Context, string) ([]string, error) {
	return nil, errBackendDown
}

var _ providers.AnalyticsStore = (*failingStore)(nil)

func TestBackendFailuresDegradeGracefully(t *testing.T) {
	svc := NewAnalyticsService(&failingStore{})
	ctx := context.Background()

	// Writes swallow backend failures.
	assert.NoError(t, svc.TrackQuery(ctx, "s1", "hotels", 100, true))
	assert.NoError(t, svc.TrackContentGap(ctx, "hotels", entities.GapData{Priority: entities.GapPriorityLow}))

	// Reads return zeroed defaults, never errors.
	summary := svc.GetSummary(ctx)
	assert.Equal(t, int64(0), summary.TotalQueries)
	assert.Equal(t, 0.0, summary.AverageResponseTimeMs)
	assert.Equal(t, 0.0, summary.SuccessRate)
	assert.False(t, summary.LastUpdated.IsZero())

	trends := svc.GetTrends(ctx, 3)
	require.Len(t, trends, 3)
	for _, point := range trends {
		assert.Equal(t, int64(0), point.Queries)
	}

	assert.Empty(t, svc.GetTopQueries(ctx, 10))
	assert.Empty(t, svc.GetContentGaps(ctx))
}
