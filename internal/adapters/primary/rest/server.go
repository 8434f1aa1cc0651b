package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/peter-abah/tweeter-api/internal/core/domain"
	"github.com/peter-abah/tweeter-api/internal/core/ports"
)

// MaxFeedTarget borne ?target= et ?count=
const MaxFeedTarget = 500

const maxIDLen = 64

type Server struct {
	feed      ports.FeedService
	recommend ports.RecommendationService
	relations ports.RelationService
	auth      TokenValidator
	target    int
}

func NewServer(feed ports.FeedService, recommend ports.RecommendationService, relations ports.RelationService, auth TokenValidator, defaultTarget int) *Server {
	return &Server{
		feed:      feed,
		recommend: recommend,
		relations: relations,
		auth:      auth,
		target:    defaultTarget,
	}
}

// Register monte les routes /api/v1 sur le mux
func (s *Server) Register(mux *http.ServeMux) {
	mux.Handle("GET /api/v1/feed", RequireAuth(s.auth)(http.HandlerFunc(s.currentUserFeed)))
	mux.HandleFunc("GET /api/v1/users/{id}/feed", s.userFeed)
	mux.HandleFunc("GET /api/v1/users/{id}/recommended_follows", s.recommendedFollows)
	mux.HandleFunc("GET /api/v1/users/{id}/followers", s.followers)
	mux.HandleFunc("GET /api/v1/users/{id}/followed_users", s.followedUsers)
	mux.HandleFunc("GET /api/v1/users/{id}/relation", s.relation)
	mux.HandleFunc("GET /api/v1/tweets/random", s.randomTweets)
}

func (s *Server) currentUserFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	s.serveFeed(w, r, userID)
}

func (s *Server) userFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}
	s.serveFeed(w, r, userID)
}

func (s *Server) serveFeed(w http.ResponseWriter, r *http.Request, userID string) {
	target, ok := queryCount(w, r, "target", s.target)
	if !ok {
		return
	}

	items, err := s.feed.Feed(r.Context(), userID, target)
	if err != nil {
		s.fail(w, r, err, "Failed to build feed", "user_id", userID)
		return
	}
	writeJSON(w, http.StatusOK, toFeedDTOs(items))
}

func (s *Server) recommendedFollows(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}

	users, err := s.recommend.Recommend(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err, "Failed to recommend follows", "user_id", userID)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTOs(users))
}

func (s *Server) followers(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}

	users, err := s.relations.Followers(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err, "Failed to list followers", "user_id", userID)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTOs(users))
}

func (s *Server) followedUsers(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}

	users, err := s.relations.FollowedUsers(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err, "Failed to list followed users", "user_id", userID)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTOs(users))
}

func (s *Server) relation(w http.ResponseWriter, r *http.Request) {
	actorID, ok := pathID(w, r)
	if !ok {
		return
	}
	targetID := r.URL.Query().Get("target")
	if !validID(targetID) {
		writeError(w, http.StatusBadRequest, "target must be a valid user id")
		return
	}

	st, err := s.relations.Relation(r.Context(), actorID, targetID)
	if err != nil {
		s.fail(w, r, err, "Failed to check relation", "actor_id", actorID, "target_id", targetID)
		return
	}
	writeJSON(w, http.StatusOK, relationDTO{Following: st.IsFollowing, FollowedBy: st.IsFollowedBy})
}

func (s *Server) randomTweets(w http.ResponseWriter, r *http.Request) {
	count, ok := queryCount(w, r, "count", s.target)
	if !ok {
		return
	}

	items, err := s.feed.Random(r.Context(), count)
	if err != nil {
		s.fail(w, r, err, "Failed to sample tweets")
		return
	}
	writeJSON(w, http.StatusOK, toFeedDTOs(items))
}

// fail log l'erreur et la traduit en status HTTP
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, msg string, attrs ...any) {
	slog.ErrorContext(r.Context(), msg, append(attrs, "request_id", RequestIDFromContext(r.Context()), "error", err)...)

	switch {
	case errors.Is(err, domain.ErrGraphUnavailable), errors.Is(err, domain.ErrContentUnavailable):
		writeError(w, http.StatusServiceUnavailable, "upstream unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// --- Helpers ---

func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if !validID(id) {
		writeError(w, http.StatusBadRequest, "id must be a valid user id")
		return "", false
	}
	return id, true
}

// validID : les IDs sont opaques (entiers en base relationnelle, UUID côté
// graphe). On borne juste la taille et l'alphabet.
func validID(id string) bool {
	if id == "" || len(id) > maxIDLen {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

func queryCount(w http.ResponseWriter, r *http.Request, key string, def int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > MaxFeedTarget {
		writeError(w, http.StatusBadRequest, key+" must be between 1 and "+strconv.Itoa(MaxFeedTarget))
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
