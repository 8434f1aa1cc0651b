package rest

import (
	"time"

	"github.com/peter-abah/tweeter-api/internal/core/domain"
)

type userDTO struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name"`
}

// feedItemDTO : {id, type, data_id, tweet}. data_id est unique toutes tables confondues.
type feedItemDTO struct {
	ID     string     `json:"id"`
	Type   string     `json:"type"`
	DataID string     `json:"data_id"`
	Tweet  contentDTO `json:"tweet"`
}

type contentDTO struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TweetID   string    `json:"tweet_id"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type relationDTO struct {
	Following  bool `json:"following"`
	FollowedBy bool `json:"followed_by"`
}

func toUserDTOs(users []*domain.User) []userDTO {
	out := make([]userDTO, len(users))
	for i, u := range users {
		out[i] = userDTO{
			ID:        u.ID,
			Username:  u.Username,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Name:      u.Name(),
		}
	}
	return out
}

func toFeedDTOs(items []*domain.ContentItem) []feedItemDTO {
	out := make([]feedItemDTO, len(items))
	for i, it := range items {
		out[i] = feedItemDTO{
			ID:     it.ID,
			Type:   string(it.Kind),
			DataID: it.DataID(),
			Tweet: contentDTO{
				ID:        it.ID,
				UserID:    it.Owner(),
				TweetID:   it.TweetID,
				Body:      it.Body,
				CreatedAt: it.Timestamp(),
			},
		}
	}
	return out
}
