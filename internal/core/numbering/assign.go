package numbering

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"cgl/internal/core/apperror"
)

var tracer = otel.Tracer("cgl/numbering")

// Observer receives assignment outcomes (metrics).
type Observer interface {
	Assigned(scope Scope, attempts int)
	Conflict(scope Scope)
}

type nopObserver struct{}

func (nopObserver) Assigned(Scope, int) {}
func (nopObserver) Conflict(Scope)      {}

// AssignerConfig tunes conflict retries.
type AssignerConfig struct {
	// MaxAttempts bounds allocate+create rounds; 1 disables retries.
	MaxAttempts int
	// Backoff is multiplied by the attempt number between rounds.
	Backoff time.Duration
	// Observer is notified of every outcome. Optional.
	Observer Observer
}

// DefaultAssignerConfig returns 5 attempts with a 10ms linear backoff.
func DefaultAssignerConfig() AssignerConfig {
	return AssignerConfig{
		MaxAttempts: 5,
		Backoff:     10 * time.Millisecond,
	}
}

// CreateFunc persists an entity carrying the given number. It must report a
// taken number as apperror.CodeNumberConflict.
type CreateFunc func(ctx context.Context, number VisibleNumber) error

// Assigner composes an Allocator with the store's uniqueness constraint:
// allocate, try to create, and on a number conflict allocate again.
type Assigner struct {
	alloc Allocator
	cfg   AssignerConfig
}

// NewAssigner creates an Assigner.
func NewAssigner(alloc Allocator, cfg AssignerConfig) *Assigner {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}
	return &Assigner{alloc: alloc, cfg: cfg}
}

// Assign reserves the next number of scope and hands it to create. Errors
// other than a number conflict are returned as is; after MaxAttempts the last
// conflict is returned.
func (a *Assigner) Assign(ctx context.Context, scope Scope, create CreateFunc) (VisibleNumber, error) {
	ctx, span := tracer.Start(ctx, "numbering.Assign")
	defer span.End()
	span.SetAttributes(attribute.String("numbering.scope", scope.Key()))

	var lastErr error
	for attempt := 1; attempt <= a.cfg.MaxAttempts; attempt++ {
		number, err := a.alloc.Allocate(ctx, scope)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "allocate")
			return VisibleNumber{}, err
		}

		err = create(ctx, number)
		if err == nil {
			a.cfg.Observer.Assigned(scope, attempt)
			span.SetAttributes(
				attribute.String("numbering.number", number.String()),
				attribute.Int("numbering.attempts", attempt),
			)
			return number, nil
		}
		if !apperror.IsRetryable(err) {
			span.RecordError(err)
			return VisibleNumber{}, err
		}

		lastErr = err
		a.cfg.Observer.Conflict(scope)
		span.AddEvent("numbering.conflict", trace.WithAttributes(attribute.String("numbering.number", number.String())))

		if attempt < a.cfg.MaxAttempts && a.cfg.Backoff > 0 {
			timer := time.NewTimer(a.cfg.Backoff * time.Duration(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return VisibleNumber{}, ctx.Err()
			case <-timer.C:
			}
		}
	}

	span.SetStatus(codes.Error, "conflict retries exhausted")
	return VisibleNumber{}, lastErr
}

// AssignExplicit creates an entity with a caller-chosen number (manual
// insertion between assigned numbers). Conflicts are not retried: the caller
// asked for that exact number.
func AssignExplicit(ctx context.Context, number VisibleNumber, create CreateFunc) (VisibleNumber, error) {
	if !number.Valid() {
		return VisibleNumber{}, apperror.NewValidation("visible number out of range").
			WithDetail("visibleNumber", number.String())
	}
	if err := create(ctx, number); err != nil {
		if apperror.IsNumberConflict(err) {
			appErr, _ := apperror.AsAppError(err)
			return VisibleNumber{}, apperror.NewConflict("visible number already in use").
				WithDetail("visibleNumber", number.String()).
				WithCause(appErr)
		}
		return VisibleNumber{}, err
	}
	return number, nil
}
