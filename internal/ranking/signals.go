package ranking

import (
	"math"

	"github.com/feedhub/feedrank/internal/entities"
)

const (
	halfLifeHours = 24

	voteWeight    = 1.0
	commentWeight = 2.0
	shareWeight   = 3.0

	freshPostHours = 1
	freshPostBoost = 2
	velocityOffset = 10

	followedBoost   = 2.0
	companyBoost    = 1.5
	typeBoost       = 1.3
	votedPenalty    = 0.5
	companyRepeated = 0.7
	authorRepeated  = 0.8

	downvotedPenalty = 0.3
	discussionRatio  = 0.5
	discussionBoost  = 1.2
	staleHours       = 6
	stalePenalty     = 0.5
)

// timeDecay halves every 24 hours.
func timeDecay(age float64) float64 {
	return math.Pow(0.5, age/halfLifeHours)
}

func engagementScore(p *entities.Post) float64 {
	total := float64(p.Votes)*voteWeight + float64(p.CommentsCount)*commentWeight + float64(p.Shares)*shareWeight
	rate := total / math.Max(float64(p.Views), 1)

	return total * (1 + math.Abs(rate))
}

func velocityScore(engagement, age float64) float64 {
	if age < freshPostHours {
		return engagement * freshPostBoost
	}

	// log10 is floored at zero for heavily downvoted posts.
	return engagement / age * math.Log10(math.Max(engagement+velocityOffset, 1))
}

func personalization(p *entities.Post, profile *entities.Profile) float64 {
	score := 1.0
	if profile == nil {
		return score
	}

	if profile.FollowedUsers.Has(p.UserID) {
		score *= followedBoost
	}
	if profile.InteractedCompanies.Has(p.Company) {
		score *= companyBoost
	}
	if profile.PreferredTypes.Has(p.Type) {
		score *= typeBoost
	}
	if profile.VotedPosts.Has(p.ID) {
		score *= votedPenalty
	}

	return score
}

func diversity(companyHits, authorHits int) float64 {
	return math.Pow(companyRepeated, float64(companyHits)) * math.Pow(authorRepeated, float64(authorHits))
}

func quality(p *entities.Post, age float64) float64 {
	score := 1.0

	if p.Votes < 0 {
		score *= downvotedPenalty
	}

	if p.Votes > 0 && p.CommentsCount > 0 && float64(p.CommentsCount)/float64(p.Votes) > discussionRatio {
		score *= discussionBoost
	}

	if p.Votes == 0 && p.CommentsCount == 0 && age > staleHours {
		score *= stalePenalty
	}

	return score
}
