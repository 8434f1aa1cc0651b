package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/peter-abah/tweeter-api/internal/core/domain"
)

const (
	aliceID = "0b6f1a5e-2f43-4c1e-9d3a-6a1b2c3d4e5f"
	bobID   = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
)

type stubFeed struct {
	items      []*domain.ContentItem
	err        error
	gotUser    string
	gotTarget  int
	gotRandomN int
}

func (s *stubFeed) Feed(ctx context.Context, userID string, target int) ([]*domain.ContentItem, error) {
	s.gotUser, s.gotTarget = userID, target
	return s.items, s.err
}

func (s *stubFeed) Random(ctx context.Context, n int) ([]*domain.ContentItem, error) {
	s.gotRandomN = n
	return s.items, s.err
}

type stubRecommend struct {
	users []*domain.User
	err   error
}

func (s *stubRecommend) Recommend(ctx context.Context, userID string) ([]*domain.User, error) {
	return s.users, s.err
}

type stubRelations struct {
	users  []*domain.User
	status *domain.RelationStatus
	err    error
}

func (s *stubRelations) Followers(ctx context.Context, userID string) ([]*domain.User, error) {
	return s.users, s.err
}

func (s *stubRelations) FollowedUsers(ctx context.Context, userID string) ([]*domain.User, error) {
	return s.users, s.err
}

func (s *stubRelations) Relation(ctx context.Context, actorID, targetID string) (*domain.RelationStatus, error) {
	return s.status, s.err
}

type stubValidator map[string]string

func (v stubValidator) Validate(token string) (string, error) {
	if id, ok := v[token]; ok {
		return id, nil
	}
	return "", domain.ErrInvalidToken
}

func newTestMux(feed *stubFeed, rec *stubRecommend, rel *stubRelations, auth TokenValidator) *http.ServeMux {
	mux := http.NewServeMux()
	NewServer(feed, rec, rel, auth, 25).Register(mux)
	return mux
}

func do(t *testing.T, h http.Handler, method, target string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestUserFeed(t *testing.T) {
	t.Parallel()

	at := time.Date(2022, 2, 22, 11, 49, 49, 0, time.UTC)
	feed := &stubFeed{items: []*domain.ContentItem{
		domain.NewTweet("t1", bobID, "hello", at),
		domain.NewRetweet("r1", bobID, "t0", at),
	}}
	mux := newTestMux(feed, &stubRecommend{}, &stubRelations{}, nil)

	rec := do(t, mux, http.MethodGet, "/api/v1/users/"+aliceID+"/feed?target=30", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if feed.gotUser != aliceID || feed.gotTarget != 30 {
		t.Errorf("Feed() called with (%s, %d)", feed.gotUser, feed.gotTarget)
	}

	var got []feedItemDTO
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[1].Type != "retweet" || got[1].DataID != "retweet-r1" || got[1].Tweet.TweetID != "t0" || got[1].Tweet.UserID != bobID {
		t.Errorf("item = %+v", got[1])
	}
}

func TestNumericIDs(t *testing.T) {
	t.Parallel()

	feed := &stubFeed{}
	rel := &stubRelations{status: &domain.RelationStatus{IsFollowing: true}}
	mux := newTestMux(feed, &stubRecommend{}, rel, nil)

	rec := do(t, mux, http.MethodGet, "/api/v1/users/42/feed", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if feed.gotUser != "42" {
		t.Errorf("Feed() user = %q, want 42", feed.gotUser)
	}

	for _, target := range []string{
		"/api/v1/users/42/recommended_follows",
		"/api/v1/users/42/followers",
		"/api/v1/users/42/relation?target=7",
	} {
		if rec := do(t, mux, http.MethodGet, target, nil); rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", target, rec.Code)
		}
	}
}

func TestUserFeedDefaultTarget(t *testing.T) {
	t.Parallel()

	feed := &stubFeed{}
	mux := newTestMux(feed, &stubRecommend{}, &stubRelations{}, nil)

	rec := do(t, mux, http.MethodGet, "/api/v1/users/"+aliceID+"/feed", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if feed.gotTarget != 25 {
		t.Errorf("target = %d, want 25", feed.gotTarget)
	}
}

func TestBadRequests(t *testing.T) {
	t.Parallel()

	mux := newTestMux(&stubFeed{}, &stubRecommend{}, &stubRelations{status: &domain.RelationStatus{}}, nil)

	for _, target := range []string{
		"/api/v1/users/bad%20id/feed",
		"/api/v1/users/" + strings.Repeat("a", maxIDLen+1) + "/feed",
		"/api/v1/users/" + aliceID + "/feed?target=abc",
		"/api/v1/users/" + aliceID + "/feed?target=0",
		fmt.Sprintf("/api/v1/users/%s/feed?target=%d", aliceID, MaxFeedTarget+1),
		"/api/v1/users/not.an.id/recommended_follows",
		"/api/v1/users/" + aliceID + "/relation",
		"/api/v1/tweets/random?count=-1",
	} {
		if rec := do(t, mux, http.MethodGet, target, nil); rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", target, rec.Code)
		}
	}
}

func TestUpstreamErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"graph", fmt.Errorf("%w: neo4j", domain.ErrGraphUnavailable), http.StatusServiceUnavailable},
		{"content", fmt.Errorf("%w: pg", domain.ErrContentUnavailable), http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mux := newTestMux(&stubFeed{err: tt.err}, &stubRecommend{err: tt.err}, &stubRelations{err: tt.err}, nil)
			for _, path := range []string{"/feed", "/recommended_follows", "/followers", "/followed_users"} {
				rec := do(t, mux, http.MethodGet, "/api/v1/users/"+aliceID+path, nil)
				if rec.Code != tt.want {
					t.Errorf("%s status = %d, want %d", path, rec.Code, tt.want)
				}
			}
		})
	}
}

func TestRecommendedFollows(t *testing.T) {
	t.Parallel()

	rec := &stubRecommend{users: []*domain.User{
		{ID: bobID, Username: "bob", FirstName: "Bob", LastName: "Marley"},
		{ID: bobID, Username: "bob", FirstName: "Bob", LastName: "Marley"},
	}}
	mux := newTestMux(&stubFeed{}, rec, &stubRelations{}, nil)

	resp := do(t, mux, http.MethodGet, "/api/v1/users/"+aliceID+"/recommended_follows", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	var got []userDTO
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Doublons conservés jusqu'au client
	if len(got) != 2 || got[0].Name != "Bob Marley" {
		t.Errorf("got %+v", got)
	}
}

func TestRelation(t *testing.T) {
	t.Parallel()

	rel := &stubRelations{status: &domain.RelationStatus{IsFollowing: true}}
	mux := newTestMux(&stubFeed{}, &stubRecommend{}, rel, nil)

	resp := do(t, mux, http.MethodGet, "/api/v1/users/"+aliceID+"/relation?target="+bobID, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	var got relationDTO
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Following || got.FollowedBy {
		t.Errorf("got %+v", got)
	}
}

func TestRandomTweets(t *testing.T) {
	t.Parallel()

	feed := &stubFeed{}
	mux := newTestMux(feed, &stubRecommend{}, &stubRelations{}, nil)

	if rec := do(t, mux, http.MethodGet, "/api/v1/tweets/random?count=7", nil); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if feed.gotRandomN != 7 {
		t.Errorf("Random() n = %d, want 7", feed.gotRandomN)
	}
}

func TestCurrentUserFeedAuth(t *testing.T) {
	t.Parallel()

	validator := stubValidator{"good-token": aliceID}

	tests := []struct {
		name     string
		auth     TokenValidator
		header   map[string]string
		wantCode int
	}{
		{"bearer", validator, map[string]string{"Authorization": "Bearer good-token"}, http.StatusOK},
		{"legacy header", validator, map[string]string{"Authentication": "good-token"}, http.StatusOK},
		{"missing", validator, nil, http.StatusUnauthorized},
		{"invalid", validator, map[string]string{"Authentication": "awrongtoken123456"}, http.StatusUnauthorized},
		{"bad scheme", validator, map[string]string{"Authorization": "Basic Zm9vOmJhcg=="}, http.StatusUnauthorized},
		{"not configured", nil, map[string]string{"Authorization": "Bearer good-token"}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			feed := &stubFeed{}
			mux := newTestMux(feed, &stubRecommend{}, &stubRelations{}, tt.auth)
			rec := do(t, mux, http.MethodGet, "/api/v1/feed", tt.header)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusOK && feed.gotUser != aliceID {
				t.Errorf("Feed() user = %q, want %q", feed.gotUser, aliceID)
			}
		})
	}
}
