package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/contentiq/contentiq/internal/domain/entities"
	"github.com/contentiq/contentiq/internal/domain/providers"
	"github.com/contentiq/contentiq/internal/infrastructure/observability"
	apperrors "github.com/contentiq/contentiq/pkg/errors"
)

// Key-space layout. Every persisted key carries an expiry.
const (
	queryKeyPrefix        = "query:"
	dailyKeyPrefix        = "daily_queries:"
	responseTimeKeyPrefix = "response_times:"
	successRateKeyPrefix  = "success_rate:"
	gapKeyPrefix          = "content_gap:"
	gapFreqKeySuffix      = ":freq"
)

const (
	queryEventTTL   = 24 * time.Hour
	dailyCounterTTL = 30 * 24 * time.Hour
	rollingListTTL  = 24 * time.Hour
	gapRecordTTL    = 7 * 24 * time.Hour

	rollingSampleCap = 1000
	dateLayout       = "2006-01-02"
)

// categoryRules is the ordered keyword table for query categorization.
// First match wins; matching is a case-insensitive substring test.
var categoryRules = []struct {
	category string
	keywords []string
}{
	{"Hotels", []string{"hotel", "accommodation", "stay"}},
	{"Tours", []string{"tour", "trip", "travel"}},
	{"Dining", []string{"restaurant", "food", "dining"}},
	{"Pricing", []string{"price", "cost", "budget"}},
}

// AnalyticsService maintains time-windowed query and content-gap aggregates
// on top of an injected keyed expiring store. Reads degrade to zeroed
// defaults on backend failure; writes are logged and swallowed, so callers
// always see success. Aggregates are advisory metrics, not authoritative
// records.
type AnalyticsService struct {
	store providers.AnalyticsStore
	now   func() time.Time
}

// NewAnalyticsService creates a new analytics service on the given store.
func NewAnalyticsService(store providers.AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{
		store: store,
		now:   time.Now,
	}
}

// TrackQuery records a user query event and updates the day's windowed
// counters. The raw-event write and the counter update are not
// transactional: an interruption between them under-counts the day, which
// is tolerable for advisory metrics.
func (s *AnalyticsService) TrackQuery(ctx context.Context, sessionID, query string, responseTimeMs float64, success bool) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return apperrors.NewValidationError("query must not be empty")
	}
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	now := s.now()
	event := entities.QueryEvent{
		SessionID:      sessionID,
		Query:          query,
		ResponseTimeMs: responseTimeMs,
		Success:        success,
		Timestamp:      now,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return apperrors.NewInternalError("failed to encode query event", err)
	}

	key := fmt.Sprintf("%s%s:%d", queryKeyPrefix, sessionID, now.UnixNano())
	if err := s.store.SetWithExpiry(ctx, key, data, queryEventTTL); err != nil {
		observability.GetLogger().Warn().Err(err).Str("key", key).Msg("failed to store query event")
	}

	s.recordDaily(ctx, now, responseTimeMs, success)
	return nil
}

// recordDaily bumps the calendar day's counter and pushes the sample onto
// the day's rolling sequences, trimmed to the most recent 1000 entries.
func (s *AnalyticsService) recordDaily(ctx context.Context, now time.Time, responseTimeMs float64, success bool) {
	date := now.Format(dateLayout)
	logger := observability.GetLogger()

	dailyKey := dailyKeyPrefix + date
	if _, err := s.store.Increment(ctx, dailyKey); err != nil {
		logger.Warn().Err(err).Str("key", dailyKey).Msg("failed to increment daily counter")
	} else if err := s.store.SetExpiry(ctx, dailyKey, dailyCounterTTL); err != nil {
		logger.Warn().Err(err).Str("key", dailyKey).Msg("failed to set daily counter expiry")
	}

	s.pushRolling(ctx, responseTimeKeyPrefix+date, strconv.FormatFloat(responseTimeMs, 'f', -1, 64))

	flag := "0"
	if success {
		flag = "1"
	}
	s.pushRolling(ctx, successRateKeyPrefix+date, flag)
}

func (s *AnalyticsService) pushRolling(ctx context.Context, key, value string) {
	logger := observability.GetLogger()
	if err := s.store.ListPushFront(ctx, key, value); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("failed to push rolling sample")
		return
	}
	if err := s.store.ListTrim(ctx, key, 0, rollingSampleCap-1); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("failed to trim rolling samples")
	}
	if err := s.store.SetExpiry(ctx, key, rollingListTTL); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("failed to set rolling sample expiry")
	}
}

// TrackContentGap records a sighting of a content gap. Frequency lives in
// a standalone counter incremented atomically, so concurrent sightings of
// the same query never lose updates; the JSON record only carries the
// gap data and first/last seen timestamps. Both keys get a sliding 7-day
// expiry refreshed on every sighting.
func (s *AnalyticsService) TrackContentGap(ctx context.Context, query string, gapData entities.GapData) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return apperrors.NewValidationError("query must not be empty")
	}

	now := s.now()
	logger := observability.GetLogger()
	gapKey := gapKeyPrefix + digestQuery(query)
	freqKey := gapKey + gapFreqKeySuffix

	if _, err := s.store.Increment(ctx, freqKey); err != nil {
		logger.Warn().Err(err).Str("key", freqKey).Msg("failed to increment gap frequency")
	} else if err := s.store.SetExpiry(ctx, freqKey, gapRecordTTL); err != nil {
		logger.Warn().Err(err).Str("key", freqKey).Msg("failed to refresh gap frequency expiry")
	}

	record := entities.ContentGapRecord{
		Query:     query,
		GapData:   gapData,
		FirstSeen: now,
		LastSeen:  now,
	}
	if data, err := s.store.Get(ctx, gapKey); err == nil {
		var existing entities.ContentGapRecord
		if err := json.Unmarshal(data, &existing); err == nil {
			// Repeat sighting: keep the first analysis, only move last_seen.
			record.GapData = existing.GapData
			record.FirstSeen = existing.FirstSeen
		} else {
			logger.Warn().Err(err).Str("key", gapKey).Msg("corrupt gap record, recreating")
		}
	}

	data, err := json.Marshal(record)
	if err != nil {
		return apperrors.NewInternalError("failed to encode gap record", err)
	}
	if err := s.store.SetWithExpiry(ctx, gapKey, data, gapRecordTTL); err != nil {
		logger.Warn().Err(err).Str("key", gapKey).Msg("failed to store gap record")
	}
	return nil
}

// GetSummary returns the aggregate analytics view. Total queries cover the
// trailing 7 calendar days; response-time and success-rate statistics
// reflect only today's rolling samples. Any backend failure yields the
// zeroed default rather than an error.
func (s *AnalyticsService) GetSummary(ctx context.Context) *entities.AnalyticsSummary {
	now := s.now()
	summary := &entities.AnalyticsSummary{LastUpdated: now}

	var total int64
	for i := 0; i < 7; i++ {
		date := now.AddDate(0, 0, -i).Format(dateLayout)
		total += s.dailyCount(ctx, date)
	}
	summary.TotalQueries = total

	today := now.Format(dateLayout)
	if times, ok := s.rollingFloats(ctx, responseTimeKeyPrefix+today); ok && len(times) > 0 {
		var sum float64
		for _, t := range times {
			sum += t
		}
		summary.AverageResponseTimeMs = round1(sum / float64(len(times)))
	}

	if flags, ok := s.rollingFloats(ctx, successRateKeyPrefix+today); ok && len(flags) > 0 {
		var hits float64
		for _, f := range flags {
			hits += f
		}
		summary.SuccessRate = round1(hits / float64(len(flags)) * 100)
	}

	summary.ContentGapsCount = len(s.GetContentGaps(ctx))
	return summary
}

// GetTrends returns per-day query counts for the last days calendar days
// including today, ordered oldest to newest. Missing or failed reads count
// as zero so the shape is always exactly days entries.
func (s *AnalyticsService) GetTrends(ctx context.Context, days int) []entities.TrendPoint {
	if days <= 0 {
		days = 7
	}

	now := s.now()
	trends := make([]entities.TrendPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format(dateLayout)
		trends = append(trends, entities.TrendPoint{
			Date:    date,
			Queries: s.dailyCount(ctx, date),
		})
	}
	return trends
}

// GetTopQueries tallies the individually stored query events and returns
// the limit most frequent distinct query texts with their category. Events
// expire after 24 hours, so the ranking window is the trailing day. Ties
// break by ascending query text, keeping the order reproducible.
func (s *AnalyticsService) GetTopQueries(ctx context.Context, limit int) []entities.TopQuery {
	if limit <= 0 {
		limit = 10
	}

	logger := observability.GetLogger()
	keys, err := s.store.KeysByPrefix(ctx, queryKeyPrefix)
	if err != nil {
		logger.Error().Err(err).Msg("failed to enumerate query events")
		return []entities.TopQuery{}
	}

	counts := make(map[string]int)
	for _, key := range keys {
		data, err := s.store.Get(ctx, key)
		if err != nil {
			continue
		}
		var event entities.QueryEvent
		if err := json.Unmarshal(data, &event); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("skipping corrupt query event")
			continue
		}
		if event.Query != "" {
			counts[event.Query]++
		}
	}

	top := make([]entities.TopQuery, 0, len(counts))
	for query, count := range counts {
		top = append(top, entities.TopQuery{
			Query:    query,
			Count:    count,
			Category: CategorizeQuery(query),
		})
	}

	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Query < top[j].Query
	})

	if len(top) > limit {
		top = top[:limit]
	}
	return top
}

// GetContentGaps lists all live gap records sorted by priority score then
// frequency, both descending. A high-priority gap always sorts before a
// lower-priority one regardless of frequency.
func (s *AnalyticsService) GetContentGaps(ctx context.Context) []entities.ContentGapRecord {
	logger := observability.GetLogger()
	keys, err := s.store.KeysByPrefix(ctx, gapKeyPrefix)
	if err != nil {
		logger.Error().Err(err).Msg("failed to enumerate gap records")
		return []entities.ContentGapRecord{}
	}

	gaps := make([]entities.ContentGapRecord, 0, len(keys))
	for _, key := range keys {
		if strings.HasSuffix(key, gapFreqKeySuffix) {
			continue
		}
		data, err := s.store.Get(ctx, key)
		if err != nil {
			continue
		}
		var record entities.ContentGapRecord
		if err := json.Unmarshal(data, &record); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("skipping corrupt gap record")
			continue
		}
		record.Frequency = s.gapFrequency(ctx, key)
		gaps = append(gaps, record)
	}

	sort.Slice(gaps, func(i, j int) bool {
		si := entities.PriorityScore(gaps[i].GapData.Priority)
		sj := entities.PriorityScore(gaps[j].GapData.Priority)
		if si != sj {
			return si > sj
		}
		return gaps[i].Frequency > gaps[j].Frequency
	})
	return gaps
}

// CategorizeQuery assigns a query to a fixed category by ordered keyword
// match; the first matching rule wins.
func CategorizeQuery(query string) string {
	lower := strings.ToLower(query)
	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.category
			}
		}
	}
	return "General"
}

func (s *AnalyticsService) dailyCount(ctx context.Context, date string) int64 {
	data, err := s.store.Get(ctx, dailyKeyPrefix+date)
	if err != nil {
		return 0
	}
	count, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		observability.GetLogger().Warn().Err(err).Str("date", date).Msg("corrupt daily counter")
		return 0
	}
	return count
}

func (s *AnalyticsService) gapFrequency(ctx context.Context, gapKey string) int64 {
	data, err := s.store.Get(ctx, gapKey+gapFreqKeySuffix)
	if err != nil {
		return 1
	}
	freq, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil || freq < 1 {
		return 1
	}
	return freq
}

// rollingFloats reads a rolling sample list, skipping unparseable entries.
// The second return is false when the read itself failed.
func (s *AnalyticsService) rollingFloats(ctx context.Context, key string) ([]float64, bool) {
	vals, err := s.store.ListRange(ctx, key, 0, -1)
	if err != nil {
		observability.GetLogger().Warn().Err(err).Str("key", key).Msg("failed to read rolling samples")
		return nil, false
	}
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	return out, true
}

// digestQuery derives the gap record key from the normalized query text.
// SHA-256 keeps distinct queries from colliding while bounding key length.
func digestQuery(query string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(query))), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
