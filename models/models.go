package models

import (
	"strconv"
	"strings"
	"time"
)

// Account is the author of a status. Counters the server omits stay nil.
type Account struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Acct           string `json:"acct"`
	URL            string `json:"url,omitempty"`
	FollowersCount *int64 `json:"followers_count,omitempty"`
}

// Followers returns the follower count, or 0 when the server did not send one
func (a *Account) Followers() int64 {
	if a == nil || a.FollowersCount == nil {
		return 0
	}
	return *a.FollowersCount
}

// Status is a single post (toot) as returned by the Mastodon REST API
type Status struct {
	ID              string    `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	URL             string    `json:"url,omitempty"`
	Visibility      string    `json:"visibility,omitempty"`
	Language        string    `json:"language,omitempty"`
	Content         string    `json:"content,omitempty"`
	Account         *Account  `json:"account,omitempty"`
	FavouritesCount *int64    `json:"favourites_count,omitempty"`
	ReblogsCount    *int64    `json:"reblogs_count,omitempty"`
}

func (s *Status) Favourites() int64 {
	if s.FavouritesCount == nil {
		return 0
	}
	return *s.FavouritesCount
}

func (s *Status) Reblogs() int64 {
	if s.ReblogsCount == nil {
		return 0
	}
	return *s.ReblogsCount
}

// Toot is the payload for creating a new status
type Toot struct {
	Status     string `json:"status"`
	Sensitive  bool   `json:"sensitive"`
	Visibility string `json:"visibility"`
	Language   string `json:"language"`
}

// Count is a counter Mastodon serialises as a string ("10"), though some
// servers send plain numbers. The textual form is kept as received.
type Count string

func (c *Count) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*c = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return err
		}
		raw = unquoted
	}
	*c = Count(raw)
	return nil
}

// Int parses the counter
func (c Count) Int() (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(string(c)), 10, 64)
}

// TagHistory is one day of usage statistics for a hashtag
type TagHistory struct {
	Day      string `json:"day"`
	Uses     Count  `json:"uses"`
	Accounts Count  `json:"accounts"`
}

// Date returns the day the entry covers. Mastodon sends a unix timestamp,
// a calendar date is accepted as well.
func (h TagHistory) Date() (time.Time, bool) {
	if secs, err := strconv.ParseInt(h.Day, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), true
	}
	if t, err := time.Parse("2006-01-02", h.Day); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Tag is the hashtag entity with its recent usage history, most recent day first
type Tag struct {
	Name    string       `json:"name"`
	URL     string       `json:"url,omitempty"`
	History []TagHistory `json:"history"`
}
