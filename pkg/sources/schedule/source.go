// Package schedule fires triggers on cron schedules.
package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"sync"

	"github.com/dukex/notimaster/pkg/models"
	"github.com/dukex/notimaster/pkg/protocol"
	"github.com/robfig/cron/v3"
)

// Schedule fires TriggerID with Data every time Cron matches.
type Schedule struct {
	ID        string         `json:"id"`
	Cron      string         `json:"cron"`
	TriggerID string         `json:"trigger_id"`
	Data      map[string]any `json:"data,omitempty"`
}

// TriggerChecker reports whether a trigger id exists.
type TriggerChecker interface {
	Has(id string) bool
}

type Source struct {
	triggers  TriggerChecker
	logger    *slog.Logger
	mu        sync.Mutex
	schedules []Schedule
	cron      *cron.Cron
	callback  protocol.TriggerCallback
	ctx       context.Context
}

var _ protocol.TriggerSource = (*Source)(nil)

func New(triggers TriggerChecker, logger *slog.Logger) *Source {
	return &Source{
		triggers: triggers,
		logger:   logger.With("module", "schedule_source"),
	}
}

// Load reads a JSON array of schedules from path.
func Load(path string) ([]Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedules: %w", err)
	}

	var schedules []Schedule

	err = json.Unmarshal(data, &schedules)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schedules %s: %w", path, err)
	}

	return schedules, nil
}

func (s *Source) validate(schedule Schedule) error {
	if schedule.ID == "" {
		return errors.New("schedule id is required")
	}

	if schedule.Cron == "" {
		return fmt.Errorf("schedule %s: cron expression is required", schedule.ID)
	}

	_, err := cron.ParseStandard(schedule.Cron)
	if err != nil {
		return fmt.Errorf("schedule %s: invalid cron expression: %w", schedule.ID, err)
	}

	if !s.triggers.Has(schedule.TriggerID) {
		return fmt.Errorf("schedule %s: unknown trigger %q", schedule.ID, schedule.TriggerID)
	}

	return nil
}

// Add registers a schedule. Schedules added after Start are picked up immediately.
func (s *Source) Add(schedule Schedule) error {
	err := s.validate(schedule)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.schedules {
		if existing.ID == schedule.ID {
			return fmt.Errorf("schedule %s already registered", schedule.ID)
		}
	}

	s.schedules = append(s.schedules, schedule)

	if s.cron != nil {
		return s.register(schedule)
	}

	return nil
}

func (s *Source) Schedules() []Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Schedule(nil), s.schedules...)
}

func (s *Source) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, schedule := range s.schedules {
		err := s.validate(schedule)
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *Source) Start(ctx context.Context, callback protocol.TriggerCallback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return nil
	}

	logger := cronLogger{s.logger}

	s.callback = callback
	s.ctx = ctx
	s.cron = cron.New(cron.WithLogger(logger), cron.WithChain(
		cron.SkipIfStillRunning(logger),
		cron.Recover(logger),
	))

	for _, schedule := range s.schedules {
		err := s.register(schedule)
		if err != nil {
			s.cron = nil

			return err
		}
	}

	s.cron.Start()
	s.logger.InfoContext(ctx, "Schedule source started", "schedules", len(s.schedules))

	return nil
}

func (s *Source) register(schedule Schedule) error {
	_, err := s.cron.AddFunc(schedule.Cron, func() { s.fire(schedule) })
	if err != nil {
		return fmt.Errorf("failed to add cron job for schedule %s: %w", schedule.ID, err)
	}

	return nil
}

func (s *Source) fire(schedule Schedule) {
	s.mu.Lock()
	ctx, callback := s.ctx, s.callback
	s.mu.Unlock()

	if callback == nil {
		return
	}

	data := models.TriggerContext(maps.Clone(schedule.Data))
	if data == nil {
		data = models.TriggerContext{}
	}

	data[models.TriggerContextScheduleIDKey] = schedule.ID

	s.logger.InfoContext(ctx, "Schedule fired", "schedule_id", schedule.ID, "trigger_id", schedule.TriggerID)

	err := callback(ctx, schedule.TriggerID, data)
	if err != nil {
		s.logger.ErrorContext(ctx, "Scheduled trigger failed",
			"schedule_id", schedule.ID,
			"trigger_id", schedule.TriggerID,
			"error", err,
		)
	}
}

// Stop halts the scheduler and waits for running jobs to finish or ctx to end.
func (s *Source) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return nil
	}

	s.logger.InfoContext(ctx, "Stopping schedule source")

	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger routes robfig/cron logging through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
