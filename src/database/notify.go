package database

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"

	"walkforward/src/datamodels"
	"walkforward/src/utils/errors"
)

// runStatusChannel is the Postgres NOTIFY channel carrying run lifecycle
// transitions. The payload format is "<runID>;<status>;<originID>".
const runStatusChannel = "run_status"

// NotificationManager relays Postgres LISTEN/NOTIFY run-status messages to
// in-process subscribers, so a server replica can stream status changes made
// by another replica. Transitions published by this replica come back tagged
// with its own origin ID and are dropped; local subscribers already saw them
// through the runner's status listener.
type NotificationManager struct {
	originID    string
	listener    *pq.Listener
	subscribers map[string]chan datamodels.RunStatusEvent
	mu          sync.RWMutex
}

func NewNotificationManager(connStr string, originID string) (*NotificationManager, error) {
	listener := pq.NewListener(connStr, 10*time.Second, time.Minute, nil)
	if err := listener.Listen(runStatusChannel); err != nil {
		return nil, errors.Wrapf(err, "failed to listen on channel %s", runStatusChannel)
	}

	nm := &NotificationManager{
		originID:    originID,
		listener:    listener,
		subscribers: make(map[string]chan datamodels.RunStatusEvent),
	}

	go nm.listen()

	return nm, nil
}

func (nm *NotificationManager) listen() {
	for notification := range nm.listener.Notify {
		if notification == nil {
			continue
		}
		nm.handleNotification(notification.Extra)
	}
}

func (nm *NotificationManager) handleNotification(payload string) {
	parts := strings.SplitN(payload, ";", 3)
	if len(parts) != 3 {
		slog.Error("Invalid run status payload", "payload", payload)
		return
	}
	runID, status, origin := parts[0], parts[1], parts[2]
	if origin == nm.originID {
		return
	}

	event := datamodels.RunStatusEvent{
		RunID:     runID,
		Status:    datamodels.RunStatus(status),
		Timestamp: time.Now().UTC(),
	}

	nm.mu.RLock()
	defer nm.mu.RUnlock()

	for subscriberID, ch := range nm.subscribers {
		select {
		case ch <- event:
		default:
			slog.Warn("Run status channel is full, skipping",
				"runID", runID, "subscriberID", subscriberID)
		}
	}
}

// Subscribe returns a channel carrying every run status transition published
// by other replicas. The channel is closed by Unsubscribe.
func (nm *NotificationManager) Subscribe(subscriberID string) <-chan datamodels.RunStatusEvent {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	ch := make(chan datamodels.RunStatusEvent, 10)
	nm.subscribers[subscriberID] = ch

	slog.Info("Subscribed to run status transitions", "subscriberID", subscriberID)
	return ch
}

func (nm *NotificationManager) Unsubscribe(subscriberIDs ...string) {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	for _, subscriberID := range subscriberIDs {
		if ch, ok := nm.subscribers[subscriberID]; ok {
			close(ch)
			delete(nm.subscribers, subscriberID)
		}
	}
}

func (nm *NotificationManager) Close() error {
	nm.listener.UnlistenAll()
	return nm.listener.Close()
}

// NotifyRunStatus publishes a run status transition through pg_notify, tagged
// with this replica's origin ID.
func (d *databaseImplementation) NotifyRunStatus(ctx context.Context, runID string, status string) error {
	msg := runID + ";" + status + ";" + d.originID

	if err := d.gormDb.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", runStatusChannel, msg).Error; err != nil {
		return errors.Wrapf(err, "failed to notify run status for %s", runID)
	}
	return nil
}
