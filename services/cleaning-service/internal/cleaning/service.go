// Package cleaning is the schedule and booking engine: creation, editing, booking and the
// availability reads built on top of the store.
package cleaning

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	otelx "github.com/propdesk/backoffice/libs/otel"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/cache"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/directory"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/model"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/storage"
	"go.opentelemetry.io/otel/trace"
)

// Notifier receives a confirmation after each committed booking. Errors are logged only.
type Notifier interface {
	SlotBooked(ctx context.Context, s *model.Schedule, slot model.Slot) error
}

type Options struct {
	Cache     cache.Cache
	Directory directory.Directory
	Notifier  Notifier
	Logger    *slog.Logger
	// Now supplies the current instant. Defaults to time.Now.
	Now   func() time.Time
	NewID func() string
	// NotifyTimeout bounds the confirmation hand-off, which runs detached from the request.
	NotifyTimeout time.Duration
}

type Service struct {
	store         storage.Store
	cache         cache.Cache
	directory     directory.Directory
	notifier      Notifier
	logger        *slog.Logger
	now           func() time.Time
	newID         func() string
	notifyTimeout time.Duration
	tracer        trace.Tracer
}

func NewService(store storage.Store, opts Options) *Service {
	s := &Service{
		store:         store,
		cache:         opts.Cache,
		directory:     opts.Directory,
		notifier:      opts.Notifier,
		logger:        opts.Logger,
		now:           opts.Now,
		newID:         opts.NewID,
		notifyTimeout: opts.NotifyTimeout,
		tracer:        otelx.Tracer("cleaning"),
	}
	if s.cache == nil {
		s.cache = cache.Noop{}
	}
	if s.directory == nil {
		s.directory = directory.Open{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.notifyTimeout <= 0 {
		s.notifyTimeout = 5 * time.Second
	}
	return s
}

// Now is the service clock, exposed so read models and handlers agree on the cutoff.
func (s *Service) Now() time.Time { return s.now() }

func (s *Service) invalidate(ctx context.Context, sch *model.Schedule) {
	s.cache.Delete(ctx, cache.KeysFor(sch)...)
}
