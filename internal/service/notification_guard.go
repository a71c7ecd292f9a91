package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"family-planner/internal/model"
	"family-planner/internal/repository"
)

// ErrAlreadyLogged is returned by Record when another tick already logged an
// attempt for the same (user, task, type) in the same dedup bucket.
var ErrAlreadyLogged = errors.New("notification already logged in this window")

// NotificationGuard enforces at-most-one reminder per (user, task, kind)
// within a time window, backed by the append-only notification log.
//
// AlreadySent alone gives at-most-once only between non-overlapping ticks;
// the unique (user, task, type, bucket) index behind Record closes the
// read-then-write race when ticks overlap.
type NotificationGuard struct {
	logRepo *repository.NotificationLogRepository
	window  time.Duration
}

func NewNotificationGuard(logRepo *repository.NotificationLogRepository, window time.Duration) *NotificationGuard {
	if window <= 0 {
		window = time.Hour
	}
	return &NotificationGuard{logRepo: logRepo, window: window}
}

// AlreadySent reports whether any attempt (sent, delivered or failed — a
// consistently failing send must not hot-loop) was logged for the triple
// within the window ending at now.
func (g *NotificationGuard) AlreadySent(ctx context.Context, userID, taskID, kind string, now time.Time) (bool, error) {
	count, err := g.logRepo.CountSince(ctx, userID, taskID, kind, now.Add(-g.window))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Record appends one delivery attempt. It never updates an existing row.
// A concurrent tick that already recorded the same bucket gets
// ErrAlreadyLogged instead of a second row.
func (g *NotificationGuard) Record(ctx context.Context, entry *model.NotificationLogEntry) error {
	if entry.SentAt.IsZero() {
		entry.SentAt = time.Now()
	}
	entry.TimeBucket = entry.SentAt.Unix() / int64(g.window.Seconds())
	if err := g.logRepo.Insert(ctx, entry); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyLogged
		}
		return err
	}
	return nil
}
