package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kaziconnect/notify-engine/internal/domain"
	"github.com/kaziconnect/notify-engine/internal/preference"
	"github.com/kaziconnect/notify-engine/internal/provider"
	"github.com/kaziconnect/notify-engine/internal/ratelimiter"
	"github.com/kaziconnect/notify-engine/internal/repository"
	"github.com/kaziconnect/notify-engine/internal/worker"
)

// Hooks carries the metric callback functions injected by main.
// Using a struct keeps the dispatcher constructor signature clean.
type Hooks struct {
	OnSent           func(ch domain.Channel, latency time.Duration)
	OnFailed         func(ch domain.Channel)
	OnSuppressed     func(ch domain.Channel)
	OnRetryScheduled func(ch domain.Channel)
}

func (h Hooks) normalized() Hooks {
	if h.OnSent == nil {
		h.OnSent = func(domain.Channel, time.Duration) {}
	}
	if h.OnFailed == nil {
		h.OnFailed = func(domain.Channel) {}
	}
	if h.OnSuppressed == nil {
		h.OnSuppressed = func(domain.Channel) {}
	}
	if h.OnRetryScheduled == nil {
		h.OnRetryScheduled = func(domain.Channel) {}
	}
	return h
}

// Options bound the dispatcher's retry and timeout behaviour.
type Options struct {
	MaxRetries      int
	BaseRetryDelay  time.Duration
	ProviderTimeout time.Duration
	CountryCode     string
}

// Dispatcher accepts notification requests, applies the preference gate,
// and hands delivery work to the worker pools. It never blocks on the
// network itself: the provider call happens inside a pool task.
type Dispatcher struct {
	repo     repository.DeliveryRepository
	prefs    preference.Store
	adapters provider.Registry
	primary  *worker.Pool
	retry    *worker.Pool
	limiter  *ratelimiter.ChannelLimiters
	logger   *zap.Logger
	hooks    Hooks
	opts     Options

	now func() time.Time
}

func NewDispatcher(
	repo repository.DeliveryRepository,
	prefs preference.Store,
	adapters provider.Registry,
	primary, retry *worker.Pool,
	limiter *ratelimiter.ChannelLimiters,
	opts Options,
	logger *zap.Logger,
	hooks Hooks,
) *Dispatcher {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.BaseRetryDelay <= 0 {
		opts.BaseRetryDelay = 5 * time.Minute
	}
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = 10 * time.Second
	}
	if opts.CountryCode == "" {
		opts.CountryCode = domain.DefaultCountryCode
	}
	return &Dispatcher{
		repo:     repo,
		prefs:    prefs,
		adapters: adapters,
		primary:  primary,
		retry:    retry,
		limiter:  limiter,
		logger:   logger,
		hooks:    hooks.normalized(),
		opts:     opts,
		now:      time.Now,
	}
}

// Dispatch validates and accepts a notification request.
//
// Validation failures return synchronously and leave no trace: no record is
// created and no provider is contacted. Once a record exists the method
// cannot fail from the caller's perspective — suppression and provider
// errors are recorded states, not errors.
func (d *Dispatcher) Dispatch(ctx context.Context, req domain.NotificationRequest) (*Handle, error) {
	if req.Priority == "" {
		req.Priority = domain.PriorityNormal
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	recipient, err := d.normalizeRecipient(req)
	if err != nil {
		return nil, err
	}

	now := d.now().UTC()
	rec := &domain.DeliveryRecord{
		ID:         uuid.New().String(),
		UserID:     req.UserID,
		Channel:    req.Channel,
		Recipient:  recipient,
		Subject:    req.Subject,
		Content:    req.Content,
		HTMLBody:   req.HTMLBody,
		Category:   req.Category,
		Priority:   req.Priority,
		Status:     domain.StatusPending,
		MaxRetries: d.opts.MaxRetries,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	decision := d.evaluateGate(ctx, req)
	rec.Silent = decision.Silent

	if err := d.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	h := newHandle(rec)

	if !decision.Allow {
		if err := d.repo.MarkSuppressed(ctx, rec.ID, decision.Reason); err != nil {
			d.logger.Error("failed to mark suppressed", zap.String("delivery_id", rec.ID), zap.Error(err))
		}
		d.hooks.OnSuppressed(rec.Channel)
		d.logger.Info("notification suppressed",
			zap.String("delivery_id", rec.ID),
			zap.String("channel", string(rec.Channel)),
			zap.String("reason", decision.Reason),
		)
		h.resolve(domain.DeliveryResult{
			Success:   false,
			ID:        rec.ID,
			Status:    domain.StatusSuppressed,
			Recipient: rec.MaskedRecipient(),
			Error:     decision.Reason,
		})
		return h, nil
	}

	d.primary.Submit(ctx, func(taskCtx context.Context) {
		d.deliver(taskCtx, rec, h)
	})
	return h, nil
}

// Resubmit re-queues a failed record whose backoff window has elapsed.
// The preference gate is deliberately not re-evaluated: it was consulted at
// original dispatch time and suppression is terminal.
//
// MarkRetrying runs before the task is queued, so a record can never be in
// flight twice: the scheduler's next sweep no longer sees it as failed.
func (d *Dispatcher) Resubmit(ctx context.Context, rec *domain.DeliveryRecord) error {
	if err := d.repo.MarkRetrying(ctx, rec.ID); err != nil {
		return err
	}
	rec.Status = domain.StatusPending
	rec.NextRetryAt = nil

	h := newHandle(rec)
	d.retry.Submit(ctx, func(taskCtx context.Context) {
		d.deliver(taskCtx, rec, h)
	})
	return nil
}

func (d *Dispatcher) normalizeRecipient(req domain.NotificationRequest) (string, error) {
	switch req.Channel {
	case domain.ChannelSMS:
		return domain.NormalizePhone(req.Recipient, d.opts.CountryCode)
	case domain.ChannelEmail:
		if err := domain.ValidateEmail(req.Recipient); err != nil {
			return "", err
		}
		return req.Recipient, nil
	default:
		// push device tokens and in-app user ids are opaque
		return req.Recipient, nil
	}
}

// evaluateGate loads preferences and runs the pure gate. A preference store
// outage fails open: defaults allow everything, and blocking deliveries on
// a cache/DB hiccup would be worse than briefly ignoring quiet hours.
func (d *Dispatcher) evaluateGate(ctx context.Context, req domain.NotificationRequest) preference.Decision {
	prefs, err := d.prefs.Get(ctx, req.UserID)
	if err != nil {
		d.logger.Warn("preference lookup failed; defaulting to deliver",
			zap.String("user_id", req.UserID), zap.Error(err))
		prefs = preference.Defaults(req.UserID)
	}
	return preference.Evaluate(prefs, req.Channel, req.Category, d.now())
}

// deliver executes one send attempt. It runs inside a worker pool (or on
// the caller's goroutine under backpressure) and never lets a provider
// error escape: every outcome lands on the delivery record.
func (d *Dispatcher) deliver(ctx context.Context, rec *domain.DeliveryRecord, h *Handle) {
	start := d.now()
	log := d.logger.With(
		zap.String("delivery_id", rec.ID),
		zap.String("channel", string(rec.Channel)),
		zap.String("recipient", rec.MaskedRecipient()),
	)

	if err := d.limiter.Wait(ctx, rec.Channel); err != nil {
		// ctx cancelled while waiting — shutting down. The record stays
		// pending; operators can requeue stragglers from the store.
		log.Warn("rate limiter wait aborted", zap.Error(err))
		h.resolve(domain.DeliveryResult{ID: rec.ID, Status: domain.StatusPending, Recipient: rec.MaskedRecipient()})
		return
	}

	adapter, ok := d.adapters.For(rec.Channel)
	if !ok {
		d.fail(ctx, rec, h, log, domain.ErrChannelDisabled)
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.opts.ProviderTimeout)
	result, err := adapter.Send(sendCtx, rec)
	cancel()

	if err != nil {
		d.fail(ctx, rec, h, log, err)
		return
	}

	sentAt := d.now().UTC()
	if err := d.repo.MarkSent(ctx, rec.ID, result.MessageID, sentAt); err != nil {
		log.Error("failed to mark as sent", zap.Error(err))
	}
	d.hooks.OnSent(rec.Channel, d.now().Sub(start))
	log.Info("notification sent",
		zap.String("provider_msg_id", result.MessageID),
		zap.Duration("latency", d.now().Sub(start)),
	)
	h.resolve(domain.DeliveryResult{
		Success:   true,
		ID:        rec.ID,
		Status:    domain.StatusSent,
		Recipient: rec.MaskedRecipient(),
		MessageID: &result.MessageID,
	})
}

// fail records a failed attempt: either schedules a retry with exponential
// backoff or marks the record terminally failed.
//
// Backoff: delay = BaseRetryDelay * 2^(retryCount-1) where retryCount is
// the count after this failure. MaxRetries bounds total failed attempts.
func (d *Dispatcher) fail(ctx context.Context, rec *domain.DeliveryRecord, h *Handle, log *zap.Logger, sendErr error) {
	// A cancelled context means the service is shutting down mid-send, not
	// that the provider rejected anything. The attempt is not counted: the
	// record stays pending, same as a cancelled rate limiter wait, and
	// operators can requeue stragglers from the store.
	if errors.Is(sendErr, context.Canceled) {
		log.Warn("send aborted by shutdown; record left pending", zap.Error(sendErr))
		h.resolve(domain.DeliveryResult{ID: rec.ID, Status: domain.StatusPending, Recipient: rec.MaskedRecipient()})
		return
	}

	newCount := rec.RetryCount + 1
	retryable := provider.Retryable(sendErr) && newCount < rec.MaxRetries

	if !retryable {
		if err := d.repo.MarkFailed(ctx, rec.ID, newCount, sendErr.Error()); err != nil {
			log.Error("failed to mark as failed", zap.Error(err))
		}
		d.hooks.OnFailed(rec.Channel)
		log.Warn("delivery failed permanently",
			zap.Int("retry_count", newCount),
			zap.Error(sendErr),
		)
		h.resolve(domain.DeliveryResult{
			ID:        rec.ID,
			Status:    domain.StatusFailed,
			Recipient: rec.MaskedRecipient(),
			Error:     sendErr.Error(),
		})
		return
	}

	delay := d.opts.BaseRetryDelay << (newCount - 1)
	nextRetry := d.now().UTC().Add(delay)

	if err := d.repo.ScheduleRetry(ctx, rec.ID, newCount, nextRetry, sendErr.Error()); err != nil {
		log.Error("failed to schedule retry", zap.Error(err))
	}
	d.hooks.OnRetryScheduled(rec.Channel)
	log.Warn("delivery failed; retry scheduled",
		zap.Int("retry_count", newCount),
		zap.Time("next_retry_at", nextRetry),
		zap.Error(sendErr),
	)
	h.resolve(domain.DeliveryResult{
		ID:        rec.ID,
		Status:    domain.StatusFailed,
		Recipient: rec.MaskedRecipient(),
		Error:     sendErr.Error(),
		WillRetry: true,
	})
}
