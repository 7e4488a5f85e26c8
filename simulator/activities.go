package simulator

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"

	"board/internal/api"
	"board/internal/models"
	"board/internal/utils"
)

var directions = []models.VoteDirection{models.VoteUp, models.VoteDown, models.VoteNone}

// simulateContention lets every user vote, toggle likes and report the same
// post concurrently.
func (s *Simulator) simulateContention(ctx context.Context) {
	slog.Info("Starting contention phase", "users", len(s.users))

	var wg sync.WaitGroup
	for i, user := range s.users {
		wg.Add(1)
		go func(user *SimulatedUser, seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for round := 0; round < s.config.Rounds; round++ {
				if ctx.Err() != nil {
					return
				}
				switch rng.Intn(3) {
				case 0:
					s.vote(ctx, user, directions[rng.Intn(len(directions))])
				case 1:
					s.toggleLike(ctx, user)
				default:
					s.report(ctx, user)
				}
			}
		}(user, int64(i+1))
	}
	wg.Wait()
}

func (s *Simulator) vote(ctx context.Context, user *SimulatedUser, direction models.VoteDirection) {
	err := s.call(ctx, http.MethodPost, "/post/vote", user.Token, api.VoteRequest{
		PostID:    s.postID,
		Direction: direction,
	}, nil)
	if err != nil {
		slog.Warn("Vote failed", "user", user.Username, "error", err)
		return
	}
	s.stats.mu.Lock()
	s.stats.Votes++
	s.stats.mu.Unlock()
}

func (s *Simulator) toggleLike(ctx context.Context, user *SimulatedUser) {
	err := s.call(ctx, http.MethodPost, "/comment/like", user.Token, api.LikeRequest{CommentID: s.commentID}, nil)
	if err != nil {
		slog.Warn("Like toggle failed", "user", user.Username, "error", err)
		return
	}
	s.stats.mu.Lock()
	s.stats.LikeToggles++
	s.stats.mu.Unlock()
}

// report files a report; every attempt after a user's first must be rejected.
func (s *Simulator) report(ctx context.Context, user *SimulatedUser) {
	err := s.call(ctx, http.MethodPost, "/report", user.Token, api.ReportRequest{
		TargetType: models.TargetPost,
		TargetID:   s.postID,
		Reason:     "simulated report",
	}, nil)

	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()

	var statusErr *statusError
	switch {
	case err == nil:
		if user.Reported {
			slog.Error("Duplicate report accepted", "user", user.Username)
		}
		user.Reported = true
		s.stats.Reports++
	case errors.As(err, &statusErr) && statusErr.Body.Error == utils.ErrAlreadyReported:
		s.stats.RejectedReports++
	default:
		slog.Warn("Report failed", "user", user.Username, "error", err)
	}
}

// verify compares the stored counters against values derived from the rows.
func (s *Simulator) verify(ctx context.Context) (*Result, error) {
	author := s.users[0]

	var votes api.VoteStatusResponse
	if err := s.call(ctx, http.MethodGet, "/post/votes?id="+s.postID.String(), author.Token, nil, &votes); err != nil {
		return nil, err
	}

	var comment models.Comment
	if err := s.call(ctx, http.MethodGet, "/comment?id="+s.commentID.String(), author.Token, nil, &comment); err != nil {
		return nil, err
	}

	var likes api.LikeResponse
	if err := s.call(ctx, http.MethodGet, "/comment/like?commentId="+s.commentID.String(), author.Token, nil, &likes); err != nil {
		return nil, err
	}

	s.stats.mu.RLock()
	defer s.stats.mu.RUnlock()
	result := &Result{
		PostLikeCount:    votes.LikeCount,
		Upvotes:          votes.Upvotes,
		Downvotes:        votes.Downvotes,
		CommentLikeCount: comment.LikeCount,
		CommentLikeRows:  likes.LikeCount,
		Reports:          s.stats.Reports,
		RejectedReports:  s.stats.RejectedReports,
	}
	if !result.Consistent(len(s.users)) {
		slog.Error("Counters diverged", "result", result)
	}
	return result, nil
}
