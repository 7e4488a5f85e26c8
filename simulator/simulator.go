// Package simulator drives a running board server with concurrent users and
// checks that the vote and like counters stay consistent under contention.
package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"board/internal/api"
	"board/internal/models"

	"github.com/google/uuid"
)

type SimConfig struct {
	NumUsers   int
	Rounds     int // actions per user in the contention phase
	NumWorkers int
	EngineURL  string
	Timeout    time.Duration
}

// DefaultSimConfig targets a local server.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		NumUsers:   20,
		Rounds:     10,
		NumWorkers: 5,
		EngineURL:  "http://localhost:8080",
		Timeout:    10 * time.Second,
	}
}

type SimulationStats struct {
	mu               sync.RWMutex
	StartTime        time.Time
	TotalRequests    int64
	SuccessRequests  int64
	FailedRequests   int64
	Votes            int
	LikeToggles      int
	Reports          int
	RejectedReports  int
	RequestLatencies []time.Duration
}

// AverageLatency returns the mean request latency so far.
func (st *SimulationStats) AverageLatency() time.Duration {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if len(st.RequestLatencies) == 0 {
		return 0
	}
	var total time.Duration
	for _, l := range st.RequestLatencies {
		total += l
	}
	return total / time.Duration(len(st.RequestLatencies))
}

// SimulatedUser is a registered account with its session token.
type SimulatedUser struct {
	ID       uuid.UUID
	Username string
	Email    string
	Token    string
	Reported bool
}

// Result summarizes the consistency checks made after the contention phase.
type Result struct {
	PostLikeCount    int
	Upvotes          int
	Downvotes        int
	CommentLikeCount int
	CommentLikeRows  int
	Reports          int
	RejectedReports  int
}

// Consistent reports whether every counter matched its derived value.
func (r *Result) Consistent(numUsers int) bool {
	return r.PostLikeCount == r.Upvotes &&
		r.Upvotes+r.Downvotes <= numUsers &&
		r.CommentLikeCount == r.CommentLikeRows &&
		r.Reports <= numUsers
}

type Simulator struct {
	config    SimConfig
	stats     *SimulationStats
	users     []*SimulatedUser
	postID    uuid.UUID
	commentID uuid.UUID
	client    *http.Client
	runID     string
}

func NewSimulator(config SimConfig) *Simulator {
	if config.NumWorkers <= 0 {
		config.NumWorkers = 1
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &Simulator{
		config: config,
		stats: &SimulationStats{
			StartTime:        time.Now(),
			RequestLatencies: make([]time.Duration, 0),
		},
		client: &http.Client{Timeout: config.Timeout},
		runID:  uuid.New().String()[:8],
	}
}

func (s *Simulator) Stats() *SimulationStats {
	return s.stats
}

// Run registers the users, seeds a post and a comment, runs the contention
// phase and then verifies the counters.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	slog.Info("Starting simulation", "users", s.config.NumUsers, "rounds", s.config.Rounds)

	if err := s.createUsers(ctx); err != nil {
		return nil, fmt.Errorf("failed to create users: %w", err)
	}
	if len(s.users) == 0 {
		return nil, fmt.Errorf("no users could be registered")
	}
	if err := s.seedContent(ctx); err != nil {
		return nil, fmt.Errorf("failed to seed content: %w", err)
	}

	s.simulateContention(ctx)

	result, err := s.verify(ctx)
	if err != nil {
		return nil, fmt.Errorf("verification failed: %w", err)
	}
	slog.Info("Simulation finished",
		"likeCount", result.PostLikeCount,
		"upvotes", result.Upvotes,
		"downvotes", result.Downvotes,
		"commentLikes", result.CommentLikeCount,
		"reports", result.Reports,
		"rejectedReports", result.RejectedReports,
		"avgLatency", s.stats.AverageLatency())
	return result, nil
}

// createUsers registers and logs in users through a small worker pool.
func (s *Simulator) createUsers(ctx context.Context) error {
	jobs := make(chan int)
	results := make(chan *SimulatedUser, s.config.NumUsers)

	var wg sync.WaitGroup
	for i := 0; i < s.config.NumWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for userNum := range jobs {
				user := &SimulatedUser{
					Username: fmt.Sprintf("sim_%s_%d", s.runID, userNum),
					Email:    fmt.Sprintf("sim_%s_%d@test.com", s.runID, userNum),
				}

				// Retry with exponential backoff
				var err error
				for retries := 0; retries < 3; retries++ {
					if err = s.registerUser(ctx, user); err == nil {
						results <- user
						break
					}
					backoff := time.Duration(math.Pow(2, float64(retries))) * 100 * time.Millisecond
					slog.Debug("Retrying registration", "worker", workerID, "user", user.Username, "delay", backoff, "error", err)
					select {
					case <-time.After(backoff):
					case <-ctx.Done():
						return
					}
				}
				if err != nil {
					slog.Warn("Failed to register user", "worker", workerID, "user", user.Username, "error", err)
				}
			}
		}(i)
	}

	go func() {
		defer close(jobs)
		for i := 0; i < s.config.NumUsers; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for user := range results {
		s.users = append(s.users, user)
	}
	slog.Info("Registered users", "count", len(s.users))
	return ctx.Err()
}

func (s *Simulator) registerUser(ctx context.Context, user *SimulatedUser) error {
	var registered models.User
	err := s.call(ctx, http.MethodPost, "/user/register", "", api.RegisterRequest{
		Username: user.Username,
		Email:    user.Email,
		Password: "testpass123",
	}, &registered)
	if err != nil {
		return err
	}
	user.ID = registered.ID

	var login api.LoginResponse
	err = s.call(ctx, http.MethodPost, "/user/login", "", api.LoginRequest{
		Username: user.Username,
		Password: "testpass123",
	}, &login)
	if err != nil {
		return err
	}
	user.Token = login.Token
	return nil
}

func (s *Simulator) seedContent(ctx context.Context) error {
	author := s.users[0]

	var post models.Post
	err := s.call(ctx, http.MethodPost, "/post", author.Token, api.CreatePostRequest{
		Title:   "Simulation " + s.runID,
		Content: "Contended post",
	}, &post)
	if err != nil {
		return err
	}
	s.postID = post.ID

	var comment models.Comment
	err = s.call(ctx, http.MethodPost, "/comment", author.Token, api.CreateCommentRequest{
		PostID:  post.ID,
		Content: "Contended comment",
	}, &comment)
	if err != nil {
		return err
	}
	s.commentID = comment.ID
	return nil
}

// statusError is returned for non-2xx responses.
type statusError struct {
	Status int
	Body   api.ErrorResponse
}

func (e *statusError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s %s", e.Status, e.Body.Error, e.Body.Message)
}

// call sends a JSON request and decodes a JSON response into out when non-nil.
func (s *Simulator) call(ctx context.Context, method, path, token string, body, out interface{}) error {
	start := time.Now()
	err := s.do(ctx, method, path, token, body, out)
	s.recordRequest(time.Since(start), err == nil)
	return err
}

func (s *Simulator) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.EngineURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		statusErr := &statusError{Status: resp.StatusCode}
		json.Unmarshal(respBody, &statusErr.Body)
		return statusErr
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (s *Simulator) recordRequest(latency time.Duration, success bool) {
	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()
	s.stats.TotalRequests++
	if success {
		s.stats.SuccessRequests++
	} else {
		s.stats.FailedRequests++
	}
	s.stats.RequestLatencies = append(s.stats.RequestLatencies, latency)
}
