package domain

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
)

var (
	ErrEmptyIdentifier = errors.New("account identifier is empty")
	ErrProfileNotFound = errors.New("profile not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrRateLimited     = errors.New("rate limited by weibo")
)

// Profile is the account metadata returned for a uid
type Profile struct {
	ID             string `json:"id"`
	ScreenName     string `json:"screen_name"`
	FollowersCount int    `json:"followers_count"`
	FollowCount    int    `json:"follow_count"`
	StatusesCount  int    `json:"statuses_count"`
	Description    string `json:"description"`
	Gender         string `json:"gender"`
	Verified       bool   `json:"verified"`
	ContainerID    string `json:"-"`
}

// Post is a single timeline card of an account
type Post struct {
	ItemID         string `json:"itemid"`
	Scheme         string `json:"scheme"`
	CardType       int    `json:"card_type"`
	ID             string `json:"id"`
	Text           string `json:"text"`
	CreatedAt      string `json:"created_at"`
	RepostsCount   int    `json:"reposts_count"`
	CommentsCount  int    `json:"comments_count"`
	AttitudesCount int    `json:"attitudes_count"`

	Raw json.RawMessage `json:"-"`
}

// String renders the card as received. Posts built without a raw card fall back
// to their JSON encoding.
func (p Post) String() string {
	if len(p.Raw) > 0 {
		return string(p.Raw)
	}
	b, err := json.Marshal(p)
	if err != nil {
		return p.ItemID
	}
	return string(b)
}

// Corpus holds collected posts keyed by ItemID
type Corpus map[string]Post

// ProfileProvider looks up account metadata
type ProfileProvider interface {
	GetProfile(ctx context.Context, uid string) (*Profile, error)
}

// PostProvider streams an account's posts. The sequence is lazy: pages are only
// requested while the consumer keeps pulling. A failure is yielded once and ends
// the sequence.
type PostProvider interface {
	PostsByName(ctx context.Context, name string, pages int) iter.Seq2[Post, error]
}

// Collector defines the interface for data fetching
type Collector interface {
	ProfileProvider
	PostProvider
}
