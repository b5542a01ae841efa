package loader

import (
	"context"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/viant/afs"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/erraggy/oasderef/element"
	"github.com/erraggy/oasderef/oaserrors"
)

// DefaultMaxDocumentSize is the largest document Service accepts by default (32 MiB).
const DefaultMaxDocumentSize int64 = 32 << 20

// Service loads documents through an afs.Service, deduplicating concurrent
// loads of the same location and caching decoded trees for its lifetime.
type Service struct {
	fs      afs.Service
	group   singleflight.Group
	limiter *rate.Limiter
	maxSize int64
	logger  Logger

	mu    sync.RWMutex
	cache map[string]*element.Element

	flightMu sync.Mutex
	flights  map[string]*flight
}

// flight is a shared download. Its context is cancelled once every caller
// waiting on it has returned.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// Option configures a Service.
type Option func(*Service)

// WithFS sets the storage service used for downloads.
func WithFS(fs afs.Service) Option {
	return func(s *Service) { s.fs = fs }
}

// WithRateLimit throttles http(s) downloads to rps requests per second with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Service) {
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMaxDocumentSize caps the size in bytes of a single document. Zero or
// less disables the check.
func WithMaxDocumentSize(n int64) Option {
	return func(s *Service) { s.maxSize = n }
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a loader service.
func New(opts ...Option) *Service {
	s := &Service{
		maxSize: DefaultMaxDocumentSize,
		logger:  NopLogger{},
		cache:   make(map[string]*element.Element),
		flights: make(map[string]*flight),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fs == nil {
		s.fs = afs.New()
	}
	return s
}

// Load returns a copy of the decoded document at location. Failures are
// reported as *oaserrors.LoadError; documents that were fetched but could
// not be decoded carry an *oaserrors.ParseError cause.
func (s *Service) Load(ctx context.Context, location string) (*element.Element, error) {
	location = Normalize(location)
	if err := ctx.Err(); err != nil {
		return nil, &oaserrors.LoadError{Location: location, Cause: err}
	}
	if doc, ok := s.cached(location); ok {
		return doc.Clone(), nil
	}

	fctx, release := s.join(ctx, location)
	defer release()
	ch := s.group.DoChan(location, func() (any, error) {
		return s.fetch(fctx, location)
	})
	select {
	case <-ctx.Done():
		return nil, &oaserrors.LoadError{Location: location, Cause: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*element.Element).Clone(), nil
	}
}

// join registers a caller of the shared download of location. The returned
// context outlives any single caller and is cancelled by the last release.
func (s *Service) join(ctx context.Context, location string) (context.Context, func()) {
	s.flightMu.Lock()
	defer s.flightMu.Unlock()
	f, ok := s.flights[location]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		s.flights[location] = f
	}
	f.waiters++

	var once sync.Once
	return f.ctx, func() {
		once.Do(func() {
			s.flightMu.Lock()
			defer s.flightMu.Unlock()
			f.waiters--
			if f.waiters > 0 {
				return
			}
			f.cancel()
			if s.flights[location] == f {
				delete(s.flights, location)
			}
			// Later callers start a fresh download.
			s.group.Forget(location)
		})
	}
}

// Purge drops every cached document.
func (s *Service) Purge() {
	s.mu.Lock()
	s.cache = make(map[string]*element.Element)
	s.mu.Unlock()
}

func (s *Service) cached(location string) (*element.Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.cache[location]
	return doc, ok
}

func (s *Service) fetch(ctx context.Context, location string) (*element.Element, error) {
	if s.limiter != nil && isRemote(location) {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, &oaserrors.LoadError{Location: location, Cause: pkgerrors.Wrap(err, "rate limiter")}
		}
	}
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, &oaserrors.LoadError{Location: location, Cause: pkgerrors.Wrapf(err, "failed to download %v", location)}
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return nil, &oaserrors.LoadError{Location: location, Cause: &oaserrors.ResourceLimitError{
			ResourceType: "file_size",
			Limit:        s.maxSize,
			Actual:       int64(len(data)),
		}}
	}
	doc, err := element.Decode(data, location)
	if err != nil {
		return nil, &oaserrors.LoadError{Location: location, Cause: err}
	}
	s.logger.Debug("loaded document", "location", location, "bytes", len(data))

	s.mu.Lock()
	s.cache[location] = doc
	s.mu.Unlock()
	return doc, nil
}
