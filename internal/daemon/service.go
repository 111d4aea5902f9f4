// Package daemon provides the long-running background finance monitor.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/famfin/internal/model"
	"github.com/theirongolddev/famfin/internal/pipeline"
)

// Backend is what the daemon needs from the API client.
type Backend interface {
	pipeline.OverviewSource
	EnsureStreak(ctx context.Context) (*model.Streak, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	BackendURL      string
	Interval        time.Duration
	Addr            string
	EventsBuffer    int
	CheckinSchedule string
	Logger          *logrus.Logger
}

// Snapshot is a compact finance state for status/event payloads.
type Snapshot struct {
	At              time.Time `json:"at"`
	Username        string    `json:"username,omitempty"`
	MonthlyIncome   float64   `json:"monthly_income"`
	Budgets         int       `json:"budgets"`
	BudgetTotal     float64   `json:"budget_total"`
	BudgetSpent     float64   `json:"budget_spent"`
	BudgetRemaining float64   `json:"budget_remaining"`
	OverBudget      int       `json:"over_budget"`
	Goals           int       `json:"goals"`
	SavingPct       float64   `json:"saving_pct"`
	SpendingPct     float64   `json:"spending_pct"`
	Family          string    `json:"family,omitempty"`
	StreakCount     int       `json:"streak_count"`
	Tier            string    `json:"tier"`
	Discount        float64   `json:"discount_pct"`
	DaysToNextTier  int       `json:"days_to_next_tier"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	BudgetSpent     float64 `json:"budget_spent"`
	BudgetRemaining float64 `json:"budget_remaining"`
	Budgets         int     `json:"budgets"`
	Goals           int     `json:"goals"`
	StreakCount     int     `json:"streak_count"`
	TierChanged     bool    `json:"tier_changed,omitempty"`
}

func (d Delta) isZero() bool {
	return d.BudgetSpent == 0 &&
		d.BudgetRemaining == 0 &&
		d.Budgets == 0 &&
		d.Goals == 0 &&
		d.StreakCount == 0 &&
		!d.TierChanged
}

// Event types.
const (
	EventSnapshot  = "snapshot"
	EventUpdate    = "finance_delta"
	EventMilestone = "streak_milestone"
	EventCheckin   = "streak_checkin"
)

// Event is emitted whenever the finance snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
	Message   string    `json:"message,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Backend         string    `json:"backend"`
	CheckinSchedule string    `json:"checkin_schedule,omitempty"`
	LastCheckinAt   time.Time `json:"last_checkin_at,omitempty"`
	Summary         Snapshot  `json:"summary"`
	Warnings        []string  `json:"warnings,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	backend Backend
	log     *logrus.Logger

	mu            sync.RWMutex
	startedAt     time.Time
	lastPollAt    time.Time
	lastCheckinAt time.Time
	pollCount     int64
	lastError     string
	warnings      []string
	hasSnapshot   bool
	snapshot      Snapshot
	nextEventID   int64
	events        []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config, backend Backend) *Service {
	if cfg.Interval < 10*time.Second {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	return &Service{
		cfg:       cfg,
		backend:   backend,
		log:       cfg.Logger,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Router returns the daemon's HTTP routes.
func (s *Service) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/v1/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/v1/events", s.handleEvents).Methods(http.MethodGet)
	r.HandleFunc("/v1/stream", s.handleStream).Methods(http.MethodGet)
	r.HandleFunc("/v1/refresh", s.handleRefresh).Methods(http.MethodPost)
	r.HandleFunc("/v1/checkin", s.handleCheckin).Methods(http.MethodPost)
	return r
}

// Run starts HTTP endpoints, the check-in schedule and polling until ctx
// is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if s.cfg.CheckinSchedule != "" {
		sched := cron.New()
		if _, err := sched.AddFunc(s.cfg.CheckinSchedule, func() { s.checkIn(ctx) }); err != nil {
			_ = server.Close()
			return fmt.Errorf("invalid checkin schedule %q: %w", s.cfg.CheckinSchedule, err)
		}
		sched.Start()
		defer sched.Stop()
		s.log.WithField("schedule", s.cfg.CheckinSchedule).Info("streak check-in scheduled")
	}

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	ov, err := pipeline.LoadOverview(ctx, s.backend)
	now := time.Now()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.WithError(err).Warn("poll failed")
		return
	}

	snap := snapshotFromOverview(ov, now)
	var pending []Event

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""
	s.warnings = ov.Warnings

	if !prevExists {
		pending = append(pending, Event{Type: EventSnapshot, Timestamp: now, Snapshot: snap})
	} else {
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() {
			pending = append(pending, Event{Type: EventUpdate, Timestamp: now, Snapshot: snap, Delta: delta})
		}
		if delta.StreakCount > 0 && pipeline.IsMilestone(snap.StreakCount) {
			pending = append(pending, Event{
				Type:      EventMilestone,
				Timestamp: now,
				Snapshot:  snap,
				Message:   fmt.Sprintf("%d-day streak reached", snap.StreakCount),
			})
		}
	}
	for _, ev := range pending {
		s.publishLocked(ev)
	}
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"budget_spent": snap.BudgetSpent,
		"streak":       snap.StreakCount,
		"events":       len(pending),
	}).Debug("poll complete")
}

// checkIn records today's streak activity and re-polls.
func (s *Service) checkIn(ctx context.Context) {
	streak, err := s.backend.EnsureStreak(ctx)
	if err != nil {
		s.mu.Lock()
		s.lastError = "streak check-in: " + err.Error()
		s.mu.Unlock()
		s.log.WithError(err).Warn("streak check-in failed")
		return
	}

	now := time.Now()
	s.mu.Lock()
	s.lastCheckinAt = now
	snap := s.snapshot
	snap.StreakCount = streak.Count
	s.publishLocked(Event{
		Type:      EventCheckin,
		Timestamp: now,
		Snapshot:  snap,
		Message:   fmt.Sprintf("streak is at %d", streak.Count),
	})
	s.mu.Unlock()

	s.log.WithField("count", streak.Count).Info("streak checked in")
	s.pollOnce(ctx)
}

func snapshotFromOverview(ov *pipeline.Overview, at time.Time) Snapshot {
	snap := Snapshot{
		At:              at,
		Username:        ov.Profile.Username,
		MonthlyIncome:   ov.MonthlyIncome,
		Budgets:         ov.BudgetTotals.Count,
		BudgetTotal:     ov.BudgetTotals.Total,
		BudgetSpent:     ov.BudgetTotals.Spent,
		BudgetRemaining: ov.BudgetTotals.Remaining,
		Goals:           len(ov.Goals),
		SavingPct:       ov.Saving.Percentage,
		SpendingPct:     ov.Spending.Percentage,
		Tier:            ov.Tier.Name,
		Discount:        ov.Tier.Discount,
		DaysToNextTier:  ov.DaysToNextTier,
	}
	for _, b := range ov.Budgets {
		if pipeline.BudgetUsage(b) >= 100 {
			snap.OverBudget++
		}
	}
	if ov.Family != nil {
		snap.Family = ov.Family.Name
	}
	if ov.Streak != nil {
		snap.StreakCount = ov.Streak.Count
	}
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		BudgetSpent:     curr.BudgetSpent - prev.BudgetSpent,
		BudgetRemaining: curr.BudgetRemaining - prev.BudgetRemaining,
		Budgets:         curr.Budgets - prev.Budgets,
		Goals:           curr.Goals - prev.Goals,
		StreakCount:     curr.StreakCount - prev.StreakCount,
		TierChanged:     curr.Tier != prev.Tier,
	}
}

// publishLocked numbers ev and stores it. s.mu must be held, so event IDs
// in the ring are always ascending.
func (s *Service) publishLocked(ev Event) {
	s.nextEventID++
	ev.ID = s.nextEventID
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Backend:         s.cfg.BackendURL,
		CheckinSchedule: s.cfg.CheckinSchedule,
		LastCheckinAt:   s.lastCheckinAt,
		Summary:         s.snapshot,
		Warnings:        s.warnings,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}
