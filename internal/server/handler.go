package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/tomasen/realip"

	"github.com/feedhub/feedrank/internal/ranking"
	"github.com/feedhub/feedrank/internal/service"
)

var errInvalidRequest = errors.New("invalid request")

func (s server) getFeed(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /feed Feed GetFeed
	//
	// Returns next page of home feed.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: userId
	//   description: personalizes the feed
	//   in: query
	//   required: false
	// - name: session
	//   description: continues the feed returned by previous request
	//   in: query
	//   required: false
	// - name: limit
	//   in: query
	//   required: false
	//   default: 20
	//   minimum: 1
	//   maximum: 100
	// responses:
	//   '200':
	//     description: Feed page
	//     schema:
	//       "$ref": "#/definitions/FeedResponse"
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	q := r.URL.Query()

	limit, err := extractLimit(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	feed, err := s.s.Feed(r.Context(), service.FeedRequest{
		UserID:  q.Get("userId"),
		Bucket:  realip.FromRequest(r),
		Session: q.Get("session"),
		Limit:   limit,
	})
	if err != nil {
		s.writeServiceError(w, r, "failed to get feed", err)
		return
	}

	writeOK(w, http.StatusOK, toAPIFeed(feed))
}

func (s server) getRecommendations(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /recommendations Feed GetRecommendations
	//
	// Returns posts the user hasn't voted for yet.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: userId
	//   in: query
	//   required: true
	// - name: limit
	//   in: query
	//   required: false
	//   default: 20
	//   minimum: 1
	//   maximum: 100
	// responses:
	//   '200':
	//     description: Posts
	//     schema:
	//       "$ref": "#/definitions/PostsResponse"
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	q := r.URL.Query()

	limit, err := extractLimit(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := q.Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	posts, err := s.s.Recommendations(r.Context(), userID, limit)
	if err != nil {
		s.writeServiceError(w, r, "failed to get recommendations", err)
		return
	}

	writeOK(w, http.StatusOK, PostsResponse{Posts: toAPIPosts(posts)})
}

func (s server) getTrending(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /trending Trending GetTrending
	//
	// Returns posts trending in the last 48 hours.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: company
	//   description: returns only the company's posts
	//   in: query
	//   required: false
	// - name: limit
	//   in: query
	//   required: false
	//   default: 20
	//   minimum: 1
	//   maximum: 100
	// responses:
	//   '200':
	//     description: Posts
	//     schema:
	//       "$ref": "#/definitions/PostsResponse"
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	limit, err := extractLimit(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	posts, err := s.s.Trending(r.Context(), limit, r.URL.Query().Get("company"))
	if err != nil {
		s.writeServiceError(w, r, "failed to get trending posts", err)
		return
	}

	writeOK(w, http.StatusOK, PostsResponse{Posts: toAPIPosts(posts)})
}

func (s server) getCompanyTrending(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /companies/trending Trending GetCompanyTrending
	//
	// Returns companies ordered by summed trending score of their posts.
	//
	// ---
	// produces:
	// - application/json
	// responses:
	//   '200':
	//     description: Companies
	//     schema:
	//       "$ref": "#/definitions/CompanyTrendingResponse"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	companies, err := s.s.CompanyTrending(r.Context())
	if err != nil {
		s.writeServiceError(w, r, "failed to get trending companies", err)
		return
	}

	writeOK(w, http.StatusOK, toAPICompanyTrending(companies))
}

func (s server) getPostScore(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /posts/{id}/score Feed GetPostScore
	//
	// Returns the post with its composite score, personalized if userId is passed.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: id
	//   in: path
	//   required: true
	// - name: userId
	//   in: query
	//   required: false
	// responses:
	//   '200':
	//     description: Scored post
	//     schema:
	//       "$ref": "#/definitions/ScoredPost"
	//   '404':
	//     description: post not found
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	p, err := s.s.PostScore(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("userId"))
	if err != nil {
		s.writeServiceError(w, r, "failed to score post", err)
		return
	}

	writeOK(w, http.StatusOK, toAPIScoredPost(*p))
}

func (s server) getVariant(w http.ResponseWriter, r *http.Request) {
	// swagger:operation GET /variant Feed GetVariant
	//
	// Returns ranking variant assigned to the user or, if userId is omitted, to the caller's IP.
	//
	// ---
	// produces:
	// - application/json
	// parameters:
	// - name: userId
	//   in: query
	//   required: false
	// responses:
	//   '200':
	//     description: Variant
	//     schema:
	//       "$ref": "#/definitions/VariantResponse"

	key := r.URL.Query().Get("userId")
	if key == "" {
		key = realip.FromRequest(r)
	}

	writeOK(w, http.StatusOK, VariantResponse{Variant: s.s.Variant(key)})
}

func (s server) rank(w http.ResponseWriter, r *http.Request) {
	// swagger:operation POST /rank Feed Rank
	//
	// Ranks posts from request body. Nothing is stored.
	//
	// ---
	// consumes:
	// - application/json
	// produces:
	// - application/json
	// parameters:
	// - name: request
	//   in: body
	//   required: true
	//   schema:
	//     "$ref": "#/definitions/RankRequest"
	// responses:
	//   '200':
	//     description: Ranked posts
	//     schema:
	//       "$ref": "#/definitions/RankResponse"
	//   '400':
	//     description: bad request
	//     schema:
	//       "$ref": "#/definitions/Error"
	//   '500':
	//     description: internal server error
	//     schema:
	//       "$ref": "#/definitions/Error"

	var req RankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %s", err.Error()))
		return
	}

	posts, profile := req.toEntities()

	scored, err := s.s.Rank(posts, profile)
	if err != nil {
		s.writeServiceError(w, r, "failed to rank posts", err)
		return
	}

	writeOK(w, http.StatusOK, toAPIRankResponse(scored))
}

func (s server) writeServiceError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case errors.Is(err, ranking.ErrInvalidPostData), errors.Is(err, service.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, unwrapMessage(err))
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, unwrapMessage(err))
	default:
		writeInternalError(r, w, message, err)
	}
}

// unwrapMessage drops layers' "failed to ..." prefixes, only the root cause is shown to the client.
func unwrapMessage(err error) string {
	var invalid *ranking.InvalidPostDataError
	if errors.As(err, &invalid) {
		return invalid.Error()
	}

	return err.Error()
}

func extractLimit(q url.Values) (int, error) {
	s := q.Get("limit")
	if s == "" {
		return defaultLimit, nil
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to parse limit", errInvalidRequest)
	}

	if v == 0 || v > maxLimit {
		return 0, fmt.Errorf("%w: limit should be in [1, %d]", errInvalidRequest, maxLimit)
	}

	return int(v), nil
}
