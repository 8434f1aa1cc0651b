package domain

import (
	"fmt"
	"strings"
	"time"
)

// ContentKind est le tag du variant ContentItem
type ContentKind string

const (
	KindTweet   ContentKind = "tweet"
	KindRetweet ContentKind = "retweet"
	KindLike    ContentKind = "like"
)

// Valid indique si le tag fait partie de l'union connue
func (k ContentKind) Valid() bool {
	switch k {
	case KindTweet, KindRetweet, KindLike:
		return true
	}
	return false
}

// ContentItem : tout ce qu'un utilisateur produit et qui peut apparaître dans un feed.
// Pour un tweet, TweetID == ID. Pour un retweet ou un like, TweetID pointe
// vers le tweet d'origine et OwnerID est celui qui a retweeté / liké.
type ContentItem struct {
	Kind      ContentKind
	ID        string
	OwnerID   string
	TweetID   string
	Body      string // Texte du tweet (hydraté si dispo)
	CreatedAt time.Time
}

func NewTweet(id, ownerID, body string, createdAt time.Time) *ContentItem {
	return &ContentItem{Kind: KindTweet, ID: id, OwnerID: ownerID, TweetID: id, Body: body, CreatedAt: createdAt}
}

func NewRetweet(id, ownerID, tweetID string, createdAt time.Time) *ContentItem {
	return &ContentItem{Kind: KindRetweet, ID: id, OwnerID: ownerID, TweetID: tweetID, CreatedAt: createdAt}
}

func NewLike(id, ownerID, tweetID string, createdAt time.Time) *ContentItem {
	return &ContentItem{Kind: KindLike, ID: id, OwnerID: ownerID, TweetID: tweetID, CreatedAt: createdAt}
}

// Owner renvoie l'utilisateur à qui l'item est attribué
func (c *ContentItem) Owner() string { return c.OwnerID }

// Timestamp renvoie la date de création, quel que soit le variant
func (c *ContentItem) Timestamp() time.Time { return c.CreatedAt }

// DataID identifie l'item de façon unique toutes tables confondues ("retweet-42")
func (c *ContentItem) DataID() string {
	return fmt.Sprintf("%s-%s", c.Kind, c.ID)
}

// Validate vérifie les invariants du variant
func (c *ContentItem) Validate() error {
	if err := c.ValidateRef(); err != nil {
		return err
	}
	if c.TweetID == "" {
		return fmt.Errorf("%w: %s without tweet reference", ErrInvalidContent, c.Kind)
	}
	if c.Kind == KindTweet && c.TweetID != c.ID {
		return fmt.Errorf("%w: tweet must reference itself", ErrInvalidContent)
	}
	return nil
}

// ValidateRef : le minimum pour retrouver un item déjà indexé (events de suppression)
func (c *ContentItem) ValidateRef() error {
	if !c.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidContent, c.Kind)
	}
	if strings.TrimSpace(c.ID) == "" || strings.TrimSpace(c.OwnerID) == "" {
		return fmt.Errorf("%w: id and owner are required", ErrInvalidContent)
	}
	return nil
}
