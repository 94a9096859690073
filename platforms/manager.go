package platforms

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mileusna/crontab"
	"github.com/sirupsen/logrus"

	"pingchain/config"
	"pingchain/metrics"
	"pingchain/store"
	"pingchain/types"
)

const (
	DefaultPollMinutes = 5
	MaxPollMinutes     = 59
	InitialLookback    = 24 * time.Hour
	SyncTimeout        = 2 * time.Minute
)

var ErrNotRunning = errors.New("platform sync is not running")

type syncJob struct {
	ctab     *crontab.Crontab
	adapter  Adapter
	lastSync time.Time
}

// Manager runs one polling job per (user, platform).
type Manager struct {
	messages    store.MessageStore
	newAdapter  AdapterFactory
	pollMinutes int
	now         func() time.Time

	mu   sync.Mutex
	jobs map[string]*syncJob
}

type ManagerOption func(*Manager)

func WithAdapterFactory(f AdapterFactory) ManagerOption {
	return func(m *Manager) { m.newAdapter = f }
}

func WithManagerClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

func NewManager(ms store.MessageStore, pollMinutes int, opts ...ManagerOption) *Manager {
	// the cron minute field only takes steps below 60
	if pollMinutes <= 0 || pollMinutes > MaxPollMinutes {
		pollMinutes = DefaultPollMinutes
	}
	m := &Manager{
		messages:    ms,
		newAdapter:  NewAdapter,
		pollMinutes: pollMinutes,
		now:         time.Now,
		jobs:        make(map[string]*syncJob),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func jobKey(userID string, p types.Platform) string {
	return userID + "/" + string(p)
}

// Start syncs once right away and then every pollMinutes. Starting an already running
// platform replaces its job.
func (m *Manager) Start(ctx context.Context, userID string, platform types.Platform, cfg map[string]string) error {
	adapter, err := m.newAdapter(platform, cfg)
	if err != nil {
		return err
	}

	job := &syncJob{
		ctab:     crontab.New(),
		adapter:  adapter,
		lastSync: m.now().Add(-InitialLookback),
	}
	if _, err := m.syncJob(ctx, userID, job); err != nil {
		job.ctab.Shutdown()
		return err
	}

	cronExpr := fmt.Sprintf("*/%d * * * *", m.pollMinutes)
	if err := job.ctab.AddJob(cronExpr, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), SyncTimeout)
		defer cancel()
		if _, err := m.syncJob(jobCtx, userID, job); err != nil {
			config.Logger.WithFields(logrus.Fields{
				"user_id":  userID,
				"platform": platform,
			}).Error("Platform sync failed: ", err)
		}
	}); err != nil {
		job.ctab.Shutdown()
		return fmt.Errorf("failed to schedule %s sync: %w", platform, err)
	}

	m.mu.Lock()
	if old, ok := m.jobs[jobKey(userID, platform)]; ok {
		old.ctab.Shutdown()
	}
	m.jobs[jobKey(userID, platform)] = job
	m.mu.Unlock()

	config.Logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"platform": platform,
	}).Infof("Platform sync scheduled: every %d minute(s)", m.pollMinutes)
	return nil
}

func (m *Manager) Stop(userID string, platform types.Platform) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobKey(userID, platform)]
	if !ok {
		return ErrNotRunning
	}
	job.ctab.Shutdown()
	delete(m.jobs, jobKey(userID, platform))
	return nil
}

func (m *Manager) Running(userID string, platform types.Platform) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jobs[jobKey(userID, platform)]
	return ok
}

// Shutdown stops every job.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, job := range m.jobs {
		job.ctab.Shutdown()
		delete(m.jobs, key)
	}
}

func (m *Manager) syncJob(ctx context.Context, userID string, job *syncJob) (int, error) {
	m.mu.Lock()
	since := job.lastSync
	m.mu.Unlock()

	started := m.now()
	n, err := Sync(ctx, m.messages, userID, job.adapter, since)
	if err != nil {
		return n, err
	}

	m.mu.Lock()
	job.lastSync = started
	m.mu.Unlock()
	return n, nil
}

// Sync appends fetched messages that are not stored yet and returns how many were added.
func Sync(ctx context.Context, ms store.MessageStore, userID string, a Adapter, since time.Time) (int, error) {
	platform := string(a.Name())

	fetched, err := a.Fetch(ctx, since)
	if err != nil {
		metrics.PlatformSyncErrors.WithLabelValues(platform).Inc()
		return 0, err
	}

	added := 0
	for i := range fetched {
		msg := fetched[i]
		msg.UserID = userID
		if msg.ExternalID != "" {
			exists, err := ms.HasExternalMessage(ctx, userID, msg.ExternalID)
			if err != nil {
				metrics.PlatformSyncErrors.WithLabelValues(platform).Inc()
				return added, fmt.Errorf("failed to check message %s: %w", msg.ExternalID, err)
			}
			if exists {
				continue
			}
		}
		if err := ms.AppendMessage(ctx, &msg); err != nil {
			metrics.PlatformSyncErrors.WithLabelValues(platform).Inc()
			return added, fmt.Errorf("failed to store message: %w", err)
		}
		added++
	}

	metrics.PlatformMessagesSynced.WithLabelValues(platform).Add(float64(added))
	return added, nil
}
