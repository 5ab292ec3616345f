// Package entities contains main entities of service.
package entities

import (
	"time"
)

// Post is a feedback post with its engagement counters.
type Post struct {
	ID            string
	UserID        string
	Type          string
	Company       string
	Title         string
	CreatedAt     time.Time
	Votes         int
	CommentsCount int
	Views         int
	Shares        int
}

// ScoredPost ...
type ScoredPost struct {
	*Post
	Score float64
}

// Profile is a user interaction profile used for personalization.
type Profile struct {
	UserID              string
	FollowedUsers       Set
	InteractedCompanies Set
	PreferredTypes      Set
	VotedPosts          Set
}

// HasVoted returns true if profile's owner has already voted for the post.
func (p *Profile) HasVoted(postID string) bool {
	return p != nil && p.VotedPosts.Has(postID)
}

// Set is a set of strings.
type Set map[string]struct{}

// NewSet creates set from the values.
func NewSet(v ...string) Set {
	s := make(Set, len(v))
	for _, k := range v {
		s[k] = struct{}{}
	}

	return s
}

// Has ...
func (s Set) Has(k string) bool {
	_, ok := s[k]
	return ok
}

// Shown holds companies and authors of posts which were already shown to a reader, in emission order.
// Posts keeps ids of shown posts for pagination.
type Shown struct {
	Companies []string `json:"companies"`
	Users     []string `json:"users"`
	Posts     []string `json:"posts,omitempty"`
}

// Clone ...
func (s *Shown) Clone() *Shown {
	return &Shown{
		Companies: append([]string(nil), s.Companies...),
		Users:     append([]string(nil), s.Users...),
		Posts:     append([]string(nil), s.Posts...),
	}
}

// Push appends post's company and author.
func (s *Shown) Push(p *Post) {
	s.Companies = append(s.Companies, p.Company)
	s.Users = append(s.Users, p.UserID)
}

// Trim keeps only last n companies and users.
func (s *Shown) Trim(n int) {
	if n < 0 {
		return
	}

	if l := len(s.Companies); l > n {
		s.Companies = append([]string(nil), s.Companies[l-n:]...)
	}

	if l := len(s.Users); l > n {
		s.Users = append([]string(nil), s.Users[l-n:]...)
	}
}

// CompanyTrend is an aggregated trending score of company's posts.
type CompanyTrend struct {
	Company   string
	Score     float64
	PostCount int
}

// Variant is an A/B bucket of ranking weights.
type Variant string

const (
	// DefaultVariant ...
	DefaultVariant Variant = "default"
	// EngagementVariant ...
	EngagementVariant Variant = "engagement"
	// RecencyVariant ...
	RecencyVariant Variant = "recency"
)

// Engagement is a delta of post's engagement counters.
type Engagement struct {
	Comments int
	Views    int
	Shares   int
}
