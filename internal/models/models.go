package models

import (
	"encoding/json"
	"time"
)

// Swipe directions
const (
	SwipeLike = "LIKE"
	SwipePass = "PASS"
)

// Notification types
const (
	NotificationMatch   = "MATCH"
	NotificationLike    = "LIKE"
	NotificationMessage = "MESSAGE"
)

// Default meme attributes applied when the creator omits them
const (
	DefaultMood  = "NEUTRAL"
	DefaultStyle = "MEME"
)

// User represents a registered user. Password holds the bcrypt hash and is
// never serialized.
type User struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Password    string          `json:"-"`
	Image       *string         `json:"image,omitempty"`
	Bio         *string         `json:"bio,omitempty"`
	Interests   []string        `json:"interests"`
	Photos      []string        `json:"photos"`
	Preferences json.RawMessage `json:"preferences,omitempty"`
	Anthem      json.RawMessage `json:"anthem,omitempty"`
	PushToken   *string         `json:"-"`
	Premium     bool            `json:"premium"`
	IsNewUser   bool            `json:"isNewUser"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// UserSummary is the public subset of a user embedded in memes, matches and
// discovery results.
type UserSummary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Image *string `json:"image,omitempty"`
}

// Meme represents a content record owned by its creator.
type Meme struct {
	ID        string          `json:"id"`
	CreatorID string          `json:"-"`
	ImageURL  string          `json:"imageUrl"`
	Prompt    string          `json:"prompt"`
	Mood      string          `json:"mood"`
	Style     string          `json:"style"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	Creator   *UserSummary    `json:"creator,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Swipe records a single discovery decision by a user on a target profile.
type Swipe struct {
	ID        string    `json:"id"`
	SwiperID  string    `json:"swiperId"`
	TargetID  string    `json:"targetId"`
	Direction string    `json:"direction"`
	CreatedAt time.Time `json:"createdAt"`
}

// Match is a confirmed mutual-interest relationship between two users.
// UserAID is always the lexicographically smaller id.
type Match struct {
	ID        string    `json:"id"`
	UserAID   string    `json:"-"`
	UserBID   string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MatchView is a match as seen by one of its members: both users, the last
// message and the viewer's unread counter.
type MatchView struct {
	ID          string        `json:"id"`
	Users       []UserSummary `json:"users"`
	LastMessage *Message      `json:"lastMessage,omitempty"`
	UnreadCount int           `json:"unreadCount"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// Message belongs to a match. Only the read flag is mutable after insert.
type Message struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"matchId"`
	SenderID  string    `json:"senderId"`
	Content   *string   `json:"content,omitempty"`
	MemeURL   *string   `json:"memeUrl,omitempty"`
	SongURL   *string   `json:"songUrl,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notification is delivered to a single recipient.
type Notification struct {
	ID          string          `json:"id"`
	RecipientID string          `json:"-"`
	Type        string          `json:"type"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	Read        bool            `json:"read"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Profile is a discovery card: the public view of a user shown in the swipe
// deck.
type Profile struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Bio       *string         `json:"bio,omitempty"`
	Photos    []string        `json:"photos"`
	Interests []string        `json:"interests"`
	Anthem    json.RawMessage `json:"anthem,omitempty"`
}

// Track is the internal shape of an external song search result.
type Track struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Artist      string  `json:"artist"`
	AlbumArt    string  `json:"albumArt"`
	PreviewURL  *string `json:"previewUrl"`
	ExternalURL string  `json:"externalUrl"`
}

// MemeTemplate is an external meme template usable for generation.
type MemeTemplate struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Pagination is the envelope returned next to every paginated list. The
// count and the page it describes are always computed under the same filter.
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalMemes  int `json:"totalMemes"`
	Limit       int `json:"limit"`
}
