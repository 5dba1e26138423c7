package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/mocks"
	"github.com/phrazzld/recall-api/internal/service/boss_round"
	"github.com/phrazzld/recall-api/internal/service/engagement"
	"github.com/phrazzld/recall-api/internal/service/review"
	"github.com/phrazzld/recall-api/internal/service/session"
	"github.com/phrazzld/recall-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServices struct {
	reviews    *mocks.MockReviewService
	sessions   *mocks.MockSessionManager
	engagement *mocks.MockEngagementService
	bossRounds *mocks.MockBossRoundService
}

func newTestServices() *testServices {
	return &testServices{
		reviews:    &mocks.MockReviewService{},
		sessions:   &mocks.MockSessionManager{},
		engagement: &mocks.MockEngagementService{},
		bossRounds: &mocks.MockBossRoundService{},
	}
}

// router mounts the handlers the way the server does, with owner
// authentication replaced by a fixed owner. A nil owner leaves the request
// unauthenticated.
func (s *testServices) router(owner uuid.UUID) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	rh := NewReviewHandler(s.reviews, s.sessions, log)
	eh := NewEngagementHandler(s.engagement, log)
	bh := NewBossRoundHandler(s.bossRounds, log)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if owner != uuid.Nil {
				req = req.WithContext(shared.WithOwnerID(req.Context(), owner))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/api/reviews/due", rh.GetDueQueue)
	r.Post("/api/reviews", rh.SubmitRating)
	r.Post("/api/reviews/batch", rh.SubmitBatch)
	r.Post("/api/reviews/sessions/{id}/end", rh.EndSession)
	r.Get("/api/items/attention", rh.Attention)
	r.Get("/api/engagement", eh.GetState)
	r.Post("/api/engagement/events", eh.PostEvent)
	r.Get("/api/boss-round", bh.GetBossRound)
	r.Post("/api/boss-round/results", bh.PostResult)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func testItem(owner uuid.UUID) *domain.LearnableItem {
	item, _ := domain.NewLearnableItem(owner, domain.Content{Original: "la mesa", Translation: "the table"}, "work")
	return item
}

func TestGetDueQueueHandler(t *testing.T) {
	t.Parallel()
	owner := uuid.New()
	sessionID := uuid.New()

	tests := []struct {
		name       string
		owner      uuid.UUID
		query      string
		serviceErr error
		wantStatus int
		wantLimit  int
		retryAfter bool
	}{
		{name: "default limit", owner: owner, wantStatus: http.StatusOK, wantLimit: 0},
		{name: "explicit limit", owner: owner, query: "?limit=5", wantStatus: http.StatusOK, wantLimit: 5},
		{name: "bad limit", owner: owner, query: "?limit=-1", wantStatus: http.StatusBadRequest},
		{name: "non numeric limit", owner: owner, query: "?limit=ten", wantStatus: http.StatusBadRequest},
		{name: "unauthenticated", wantStatus: http.StatusUnauthorized},
		{
			name:       "transient store failure",
			owner:      owner,
			serviceErr: review.NewGetDueQueueError("failed to list items", store.ErrTransient),
			wantStatus: http.StatusServiceUnavailable,
			retryAfter: true,
		},
		{
			name:       "unexpected failure",
			owner:      owner,
			serviceErr: errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svcs := newTestServices()
			svcs.reviews.GetDueQueueFn = func(_ context.Context, got uuid.UUID, limit int) (*review.DueQueue, error) {
				if tt.serviceErr != nil {
					return nil, tt.serviceErr
				}
				assert.Equal(t, owner, got)
				return &review.DueQueue{Items: []*domain.LearnableItem{testItem(owner)}, TotalDue: 7, SessionID: sessionID}, nil
			}

			rec := do(t, svcs.router(tt.owner), http.MethodGet, "/api/reviews/due"+tt.query, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.retryAfter {
				assert.Equal(t, "2", rec.Header().Get("Retry-After"))
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			assert.Equal(t, []int{tt.wantLimit}, svcs.reviews.DueLimits)
			resp := decode[DueQueueResponse](t, rec)
			assert.Len(t, resp.Items, 1)
			assert.Equal(t, 7, resp.TotalDue)
			assert.Equal(t, sessionID, resp.SessionID)
			assert.Equal(t, "la mesa", resp.Items[0].Content.Original)
		})
	}
}

func TestSubmitRatingHandler(t *testing.T) {
	t.Parallel()
	owner := uuid.New()
	itemID := uuid.New()
	sessionID := uuid.New()

	valid := SubmitRatingRequest{ItemID: itemID.String(), Rating: 3, SessionID: sessionID.String()}

	tests := []struct {
		name       string
		body       interface{}
		serviceErr error
		wantStatus int
		wantError  string
	}{
		{name: "success", body: valid, wantStatus: http.StatusOK},
		{name: "malformed json", body: `{"item_id":`, wantStatus: http.StatusBadRequest, wantError: "Invalid request format"},
		{
			name:       "missing item",
			body:       SubmitRatingRequest{Rating: 3, SessionID: sessionID.String()},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid ItemID: required field",
		},
		{
			name:       "rating out of range",
			body:       valid,
			serviceErr: domain.Rating(7).Validate(),
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid rating",
		},
		{name: "item not found", body: valid, serviceErr: review.ErrItemNotFound, wantStatus: http.StatusNotFound, wantError: "Item not found"},
		{name: "session not owned", body: valid, serviceErr: session.ErrSessionNotOwned, wantStatus: http.StatusForbidden},
		{name: "session closed", body: valid, serviceErr: session.ErrSessionClosed, wantStatus: http.StatusConflict},
		{
			name:       "store failure",
			body:       valid,
			serviceErr: review.NewSubmitRatingError("failed to update item", errors.New("SELECT * FROM learnable_items failed")),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to submit rating",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svcs := newTestServices()
			svcs.reviews.SubmitRatingFn = func(_ context.Context, _, _ uuid.UUID, rating domain.Rating, _ uuid.UUID) (*review.RatingResult, error) {
				if tt.serviceErr != nil {
					return nil, tt.serviceErr
				}
				item := testItem(owner)
				next := time.Now().Add(24 * time.Hour)
				item.NextReviewAt = &next
				return &review.RatingResult{Item: item, NextReviewHint: "Tomorrow", MasteryJustAchieved: false}, nil
			}

			rec := do(t, svcs.router(owner), http.MethodPost, "/api/reviews", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotContains(t, rec.Body.String(), "SELECT")

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decode[shared.ErrorResponse](t, rec).Error)
			}
			if tt.wantStatus == http.StatusOK {
				resp := decode[RatingResponse](t, rec)
				assert.Equal(t, "Tomorrow", resp.NextReviewHint)
				calls := svcs.reviews.RatingCalls()
				require.Len(t, calls, 1)
				assert.Equal(t, mocks.SubmitRatingCall{OwnerID: owner, ItemID: itemID, Rating: domain.RatingGood, SessionID: sessionID}, calls[0])
			}
		})
	}
}

func TestSubmitBatchHandler(t *testing.T) {
	t.Parallel()
	owner := uuid.New()
	sessionID := uuid.New()
	ok, missing := uuid.New(), uuid.New()

	svcs := newTestServices()
	svcs.reviews.SubmitBatchFn = func(_ context.Context, _, gotSession uuid.UUID, entries []review.BatchEntry) (*review.BatchResult, error) {
		assert.Equal(t, sessionID, gotSession)
		require.Len(t, entries, 2)
		assert.Equal(t, domain.RatingEasy, entries[0].Rating)
		item := testItem(owner)
		now := time.Now()
		item.NextReviewAt = &now
		return &review.BatchResult{
			Results:  []*review.RatingResult{{Item: item, NextReviewHint: "In 4 days"}},
			Failures: []review.BatchFailure{{ItemID: missing, Err: review.ErrItemNotFound}},
			Session:  &domain.ReviewSession{ID: sessionID, OwnerID: owner, ItemsReviewed: 1, CorrectCount: 1},
		}, nil
	}

	rec := do(t, svcs.router(owner), http.MethodPost, "/api/reviews/batch", SubmitBatchRequest{
		SessionID: sessionID.String(),
		Ratings: []BatchRatingEntry{
			{ItemID: ok.String(), Rating: 4},
			{ItemID: missing.String(), Rating: 3},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[BatchResponse](t, rec)
	assert.Len(t, resp.Results, 1)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, missing, resp.Failures[0].ItemID)
	assert.Equal(t, "Item not found", resp.Failures[0].Error)
	require.NotNil(t, resp.Session)
	assert.Equal(t, 1, resp.Session.ItemsReviewed)

	empty := do(t, svcs.router(owner), http.MethodPost, "/api/reviews/batch",
		SubmitBatchRequest{SessionID: sessionID.String()})
	assert.Equal(t, http.StatusBadRequest, empty.Code)

	svcs.reviews.SubmitBatchFn = func(context.Context, uuid.UUID, uuid.UUID, []review.BatchEntry) (*review.BatchResult, error) {
		return nil, domain.NewValidationError("ratings", "too many entries", review.ErrBatchTooLarge)
	}
	tooLarge := do(t, svcs.router(owner), http.MethodPost, "/api/reviews/batch", SubmitBatchRequest{
		SessionID: sessionID.String(),
		Ratings:   []BatchRatingEntry{{ItemID: ok.String(), Rating: 3}},
	})
	assert.Equal(t, http.StatusBadRequest, tooLarge.Code)
	assert.Equal(t, "Batch contains too many ratings", decode[shared.ErrorResponse](t, tooLarge).Error)
}

func TestEndSessionHandler(t *testing.T) {
	t.Parallel()
	owner := uuid.New()
	sessionID := uuid.New()

	svcs := newTestServices()
	svcs.sessions.EndSessionFn = func(_ context.Context, gotOwner, gotSession uuid.UUID) (*domain.SessionSummary, error) {
		if gotSession != sessionID {
			return nil, session.ErrSessionNotFound
		}
		return &domain.SessionSummary{SessionID: sessionID, ItemsReviewed: 3, CorrectCount: 2, Accuracy: 67, DurationSecs: 300}, nil
	}
	h := svcs.router(owner)

	rec := do(t, h, http.MethodPost, "/api/reviews/sessions/"+sessionID.String()+"/end", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[domain.SessionSummary](t, rec)
	assert.Equal(t, 67, summary.Accuracy)
	assert.Equal(t, int64(300), summary.DurationSecs)

	assert.Equal(t, http.StatusNotFound,
		do(t, h, http.MethodPost, "/api/reviews/sessions/"+uuid.NewString()+"/end", nil).Code)
	assert.Equal(t, http.StatusBadRequest,
		do(t, h, http.MethodPost, "/api/reviews/sessions/not-a-uuid/end", nil).Code)
}

func TestAttentionHandler(t *testing.T) {
	t.Parallel()
	owner := uuid.New()

	svcs := newTestServices()
	svcs.reviews.AttentionFn = func(context.Context, uuid.UUID) ([]*domain.LearnableItem, error) {
		item := testItem(owner)
		item.LapseCount = 4
		return []*domain.LearnableItem{item}, nil
	}

	rec := do(t, svcs.router(owner), http.MethodGet, "/api/items/attention", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[AttentionResponse](t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 4, resp.Items[0].LapseCount)
}

func TestEngagementHandlers(t *testing.T) {
	t.Parallel()
	owner := uuid.New()

	svcs := newTestServices()
	svcs.engagement.GetEngagementStateFn = func(context.Context, uuid.UUID) (*engagement.State, error) {
		return &engagement.State{
			Daily:             &domain.DailyProgress{OwnerID: owner, TargetCount: 10, CompletedCount: 4},
			BingoLines:        [][3]int{},
			BossRoundUnlocked: false,
		}, nil
	}
	svcs.engagement.PostEventFn = func(_ context.Context, _ uuid.UUID, kind engagement.EventKind, payload json.RawMessage) (*engagement.EventResult, error) {
		switch kind {
		case engagement.EventItemAnswered:
			assert.JSONEq(t, `{"was_correct":true,"exercise_kind":"fill-blank"}`, string(payload))
			return &engagement.EventResult{NewlyCompletedCells: []string{"fillBlank"}, GoalJustCompleted: true, StreakUpdated: true}, nil
		default:
			return nil, domain.NewValidationError("kind", string(kind), engagement.ErrUnknownEventKind)
		}
	}
	h := svcs.router(owner)

	state := do(t, h, http.MethodGet, "/api/engagement", nil)
	require.Equal(t, http.StatusOK, state.Code)
	assert.Equal(t, 4, decode[engagement.State](t, state).Daily.CompletedCount)

	rec := do(t, h, http.MethodPost, "/api/engagement/events",
		`{"kind":"item_answered","payload":{"was_correct":true,"exercise_kind":"fill-blank"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[engagement.EventResult](t, rec)
	assert.Equal(t, []string{"fillBlank"}, res.NewlyCompletedCells)
	assert.True(t, res.GoalJustCompleted)
	assert.True(t, res.StreakUpdated)

	unknown := do(t, h, http.MethodPost, "/api/engagement/events", `{"kind":"level_up"}`)
	assert.Equal(t, http.StatusBadRequest, unknown.Code)
	assert.Equal(t, "Unknown event kind", decode[shared.ErrorResponse](t, unknown).Error)

	missingKind := do(t, h, http.MethodPost, "/api/engagement/events", `{"payload":{}}`)
	assert.Equal(t, http.StatusBadRequest, missingKind.Code)
}

func TestBossRoundHandlers(t *testing.T) {
	t.Parallel()
	owner := uuid.New()

	t.Run("locked until goal completes", func(t *testing.T) {
		t.Parallel()
		svcs := newTestServices()
		rec := do(t, svcs.router(owner), http.MethodGet, "/api/boss-round", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("round", func(t *testing.T) {
		t.Parallel()
		svcs := newTestServices()
		svcs.bossRounds.GetBossRoundFn = func(context.Context, uuid.UUID) (*boss_round.Round, error) {
			return &boss_round.Round{
				Items:            []*domain.LearnableItem{testItem(owner), testItem(owner)},
				TimeLimitSeconds: 90,
			}, nil
		}
		rec := do(t, svcs.router(owner), http.MethodGet, "/api/boss-round", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[BossRoundResponse](t, rec)
		assert.Len(t, resp.Items, 2)
		assert.Equal(t, 90, resp.TimeLimitSeconds)
		assert.False(t, resp.StatsAvailable)
	})

	t.Run("result", func(t *testing.T) {
		t.Parallel()
		svcs := newTestServices()
		svcs.bossRounds.PostBossRoundResultFn = func(_ context.Context, _ uuid.UUID, score, total int, used time.Duration) (*boss_round.Result, error) {
			assert.Equal(t, 4, score)
			assert.Equal(t, 5, total)
			assert.Equal(t, 42500*time.Millisecond, used)
			return &boss_round.Result{Accuracy: 80, Message: boss_round.MessagePassed, Recorded: true}, nil
		}
		h := svcs.router(owner)

		rec := do(t, h, http.MethodPost, "/api/boss-round/results", BossRoundResultRequest{Score: 4, Total: 5, TimeUsedSeconds: 42.5})
		require.Equal(t, http.StatusOK, rec.Code)
		res := decode[boss_round.Result](t, rec)
		assert.Equal(t, 80, res.Accuracy)
		assert.Equal(t, boss_round.MessagePassed, res.Message)

		tests := []BossRoundResultRequest{
			{Score: 6, Total: 5},
			{Score: 1, Total: 0},
			{Score: -1, Total: 5},
			{Score: 1, Total: 5, TimeUsedSeconds: -3},
			{Score: 1, Total: 5, TimeUsedSeconds: 86401},
			{Score: 1, Total: 5, TimeUsedSeconds: 1e12},
		}
		for _, body := range tests {
			assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/boss-round/results", body).Code)
		}
	})
}
