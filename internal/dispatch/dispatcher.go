// Package dispatch fans a scenario-specific message out to the recipient
// hierarchy for an action kind and tracks the batch as a notification
// record. Sends run strictly in directory order (lead before members, SMS
// before email per contact, region devices last) and each send is bounded
// by a deadline. The batch resolves to success only if every send
// succeeded; per-send results are kept for diagnostics.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-disaster-response/internal/channel"
	"github.com/mr1hm/go-disaster-response/internal/directory"
	"github.com/mr1hm/go-disaster-response/internal/models"
	"github.com/mr1hm/go-disaster-response/internal/observability"
	"github.com/mr1hm/go-disaster-response/internal/repository"
	"github.com/mr1hm/go-disaster-response/internal/stream"
)

const (
	defaultSendTimeout = 5 * time.Second
	// resolveTimeout bounds the status update that moves a record out of
	// pending. It runs detached from the caller's context: a canceled
	// batch must still reach a terminal state.
	resolveTimeout = 5 * time.Second
)

// ErrInvalidRequest marks a request rejected at validation, as opposed to
// an infrastructure failure while recording the dispatch.
var ErrInvalidRequest = errors.New("invalid dispatch request")

// Request is one user-triggered action.
type Request struct {
	Action models.ActionKind `json:"action"`
	Region string            `json:"region"`
}

// SendResult records the outcome of one channel send within a batch.
type SendResult struct {
	Channel string `json:"channel"` // sms, email, push
	Target  string `json:"target"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// Outcome is the result of one dispatch batch: the terminal record plus the
// per-send detail the aggregate status hides.
type Outcome struct {
	Record models.NotificationRecord `json:"record"`
	Sends  []SendResult              `json:"sends"`
}

type Config struct {
	Directory   *directory.Directory
	Sender      channel.Sender
	Repo        repository.NotificationRepository
	Events      *stream.Broadcaster
	Metrics     *observability.Metrics
	SendTimeout time.Duration
	Clock       clockwork.Clock
}

type Dispatcher struct {
	dir         *directory.Directory
	sender      channel.Sender
	repo        repository.NotificationRepository
	events      *stream.Broadcaster
	metrics     *observability.Metrics
	sendTimeout time.Duration
	clock       clockwork.Clock
	seq         atomic.Uint64
}

func New(cfg Config) (*Dispatcher, error) {
	if cfg.Directory == nil {
		return nil, fmt.Errorf("dispatcher requires a directory")
	}
	if cfg.Sender == nil {
		return nil, fmt.Errorf("dispatcher requires a sender")
	}
	if cfg.Repo == nil {
		return nil, fmt.Errorf("dispatcher requires a repository")
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NewMetricsForTesting()
	}

	return &Dispatcher{
		dir:         cfg.Directory,
		sender:      cfg.Sender,
		repo:        cfg.Repo,
		events:      cfg.Events,
		metrics:     cfg.Metrics,
		sendTimeout: cfg.SendTimeout,
		clock:       cfg.Clock,
	}, nil
}

// messages are composed per action kind with the region interpolated.
var messages = map[models.ActionKind]string{
	models.ActionEvacuation:      "URGENT: Evacuation required in %s. Implement evacuation protocol immediately.",
	models.ActionAlert:           "ALERT: Emergency situation developing in %s. Stay tuned for further instructions.",
	models.ActionResourceRequest: "RESOURCE REQUEST: Additional resources needed in %s. Report availability to operations.",
	models.ActionAllClear:        "ALL CLEAR: The emergency situation in %s has been resolved. Normal operations may resume.",
}

var subjects = map[models.ActionKind]string{
	models.ActionEvacuation:      "Evacuation Order",
	models.ActionAlert:           "Emergency Alert",
	models.ActionResourceRequest: "Resource Request",
	models.ActionAllClear:        "All Clear",
}

// reachesRegionDevices reports whether an action targets region-wide
// devices in addition to its team. Alert and AllClear are public-facing;
// Evacuation and ResourceRequest stay team-internal.
func reachesRegionDevices(action models.ActionKind) bool {
	return action == models.ActionAlert || action == models.ActionAllClear
}

// Prepare validates a request and creates its record in pending state. The
// pending record is persisted and broadcast before any send happens, so
// callers can observe the in-flight batch.
func (d *Dispatcher) Prepare(ctx context.Context, req Request) (*models.NotificationRecord, error) {
	if !req.Action.IsValid() {
		return nil, fmt.Errorf("%w: unknown action kind %q", ErrInvalidRequest, req.Action)
	}
	if req.Region == "" {
		return nil, fmt.Errorf("%w: region is required", ErrInvalidRequest)
	}

	group, err := d.dir.GroupFor(req.Action)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	now := d.clock.Now()
	rec := &models.NotificationRecord{
		// The counter suffix keeps IDs unique when two batches are
		// prepared in the same nanosecond.
		ID:         fmt.Sprintf("ntf_%d_%d", now.UnixNano(), d.seq.Add(1)),
		Action:     req.Action,
		Region:     req.Region,
		Status:     models.StatusPending,
		Recipients: recipientSummary(req.Action, group, d.dir.RegionDevices()),
		CreatedAt:  now,
	}

	if err := d.repo.Add(ctx, rec); err != nil {
		return nil, fmt.Errorf("error recording dispatch: %w", err)
	}
	d.broadcast(*rec)

	slog.Info("dispatch prepared", "id", rec.ID, "action", rec.Action, "region", rec.Region)
	return rec, nil
}

// Run executes the sends for a prepared record and resolves it to its
// terminal status. Send failures never propagate as errors; they resolve
// the batch to error status with the failing sends listed in the outcome.
func (d *Dispatcher) Run(ctx context.Context, rec *models.NotificationRecord) (*Outcome, error) {
	group, err := d.dir.GroupFor(rec.Action)
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf(messages[rec.Action], rec.Region)
	subject := subjects[rec.Action]

	var results []SendResult
	contacts := append([]models.Contact{group.Lead}, group.Members...)
	for _, c := range contacts {
		results = append(results,
			d.send(ctx, "sms", c.Phone, func(sctx context.Context) error {
				return d.sender.SendSMS(sctx, c.Phone, message)
			}),
			d.send(ctx, "email", c.Email, func(sctx context.Context) error {
				return d.sender.SendEmail(sctx, c.Email, subject, message)
			}),
		)
	}

	if reachesRegionDevices(rec.Action) {
		for _, dev := range d.dir.RegionDevices() {
			if directory.IsPhoneDevice(dev) {
				results = append(results, d.send(ctx, "sms", dev, func(sctx context.Context) error {
					return d.sender.SendSMS(sctx, dev, message)
				}))
			} else {
				results = append(results, d.send(ctx, "push", dev, func(sctx context.Context) error {
					return d.sender.SendPush(sctx, dev, subject, message)
				}))
			}
		}
	}

	status := models.StatusSuccess
	failed := 0
	for _, r := range results {
		if !r.OK {
			status = models.StatusError
			failed++
		}
	}

	// Resolve under a detached context so a batch whose caller went away
	// (shutdown, disconnect) still transitions out of pending.
	resolveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resolveTimeout)
	defer cancel()
	if err := d.repo.UpdateStatus(resolveCtx, rec.ID, status); err != nil {
		return nil, fmt.Errorf("error resolving record %s: %w", rec.ID, err)
	}
	rec.Status = status
	d.broadcast(*rec)
	d.metrics.DispatchesTotal.WithLabelValues(string(rec.Action), string(status)).Inc()

	if status == models.StatusError {
		slog.Error("dispatch failed", "id", rec.ID, "action", rec.Action,
			"sends", len(results), "failed", failed)
	} else {
		slog.Info("dispatch complete", "id", rec.ID, "action", rec.Action, "sends", len(results))
	}

	return &Outcome{Record: *rec, Sends: results}, nil
}

// Dispatch runs one full batch synchronously: prepare, send, resolve.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Outcome, error) {
	rec, err := d.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	return d.Run(ctx, rec)
}

// send executes one channel send under the per-send deadline, so a hung
// transport resolves to a failed send instead of stalling the batch.
func (d *Dispatcher) send(ctx context.Context, kind, target string, fn func(context.Context) error) SendResult {
	sctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	start := d.clock.Now()
	err := fn(sctx)
	d.metrics.SendDuration.WithLabelValues(kind).Observe(d.clock.Since(start).Seconds())

	result := SendResult{Channel: kind, Target: target, OK: err == nil}
	if err != nil {
		result.Error = err.Error()
		d.metrics.SendsTotal.WithLabelValues(kind, "error").Inc()
		slog.Warn("send failed", "channel", kind, "target", target, "error", err)
		return result
	}
	d.metrics.SendsTotal.WithLabelValues(kind, "success").Inc()
	return result
}

func (d *Dispatcher) broadcast(rec models.NotificationRecord) {
	if d.events != nil {
		d.events.Broadcast(rec)
	}
}

func recipientSummary(action models.ActionKind, group models.RecipientGroup, devices []string) []models.RecipientCount {
	summary := []models.RecipientCount{
		{Type: "lead", Count: 1},
		{Type: "members", Count: len(group.Members)},
	}
	if reachesRegionDevices(action) {
		summary = append(summary, models.RecipientCount{Type: "devices", Count: len(devices)})
	}
	return summary
}
