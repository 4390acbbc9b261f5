// Package resolve turns locator strings into live native handles. It owns
// the handle caches and the freshness-versus-validity rule: a cache hit is
// only trusted after the backend confirms the handle is still alive.
package resolve

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/winauto-dev/winrunner/pkg/cache"
	"github.com/winauto-dev/winrunner/pkg/config"
	"github.com/winauto-dev/winrunner/pkg/core"
	"github.com/winauto-dev/winrunner/pkg/driver"
	"github.com/winauto-dev/winrunner/pkg/locator"
)

// Service resolves applications, windows and elements against the selected
// backend. One Service per session; it is not safe for concurrent use.
type Service struct {
	drivers *driver.Registry
	backend string

	apps     *cache.Store[core.ApplicationHandle]
	windows  *cache.Store[core.WindowHandle]
	elements *cache.Store[core.ElementHandle]
	locators *cache.Store[locator.Locator]

	timeout time.Duration
	log     *zap.Logger
}

// New builds a Service from the probed registry and the session config.
func New(drivers *driver.Registry, cfg *config.Config, log *zap.Logger) *Service {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		drivers:  drivers,
		backend:  cfg.Backend,
		apps:     cache.New[core.ApplicationHandle](cfg.Cache.ApplicationSize, cfg.Cache.ApplicationTTL),
		windows:  cache.New[core.WindowHandle](cfg.Cache.WindowSize, cfg.Cache.WindowTTL),
		elements: cache.New[core.ElementHandle](cfg.Cache.ElementSize, cfg.Cache.ElementTTL),
		locators: cache.New[locator.Locator](cfg.Cache.LocatorSize, cfg.Cache.LocatorTTL),
		timeout:  cfg.Timeout,
		log:      log,
	}
}

// Driver returns the session's selected backend driver.
func (s *Service) Driver() (core.Driver, error) {
	return s.drivers.Get(s.backend)
}

// StartApplication launches a process. Launches are never cached; starting
// twice means two processes on purpose.
func (s *Service) StartApplication(path string, args []string) (core.ApplicationHandle, error) {
	d, err := s.Driver()
	if err != nil {
		return core.ApplicationHandle{}, err
	}

	app, err := d.StartApplication(path, args)
	if err != nil {
		return core.ApplicationHandle{}, err
	}

	s.apps.Set(app.Identity(), app)
	s.log.Info("application started",
		zap.String("path", path),
		zap.String("app", app.Identity()))
	return app, nil
}

// ResolveApplication attaches to a running process by pid, process name or
// main-window title. Repeated calls with the same identifier reuse the
// cached handle while it stays fresh.
func (s *Service) ResolveApplication(identifier string) (core.ApplicationHandle, error) {
	if app, ok := s.apps.Get("attach:" + identifier); ok {
		s.log.Debug("application cache hit", zap.String("identifier", identifier))
		return app, nil
	}

	d, err := s.Driver()
	if err != nil {
		return core.ApplicationHandle{}, err
	}

	app, err := d.AttachApplication(identifier)
	if err != nil {
		return core.ApplicationHandle{}, err
	}

	s.apps.Set("attach:"+identifier, app)
	s.apps.Set(app.Identity(), app)
	return app, nil
}

// ResolveWindow locates a top-level window of app by locator string. Window
// handles carry no cheap liveness probe, so cache reuse is bounded by TTL
// alone; a vanished window surfaces as ErrNotFound on the next element
// search against it.
func (s *Service) ResolveWindow(app core.ApplicationHandle, raw string, timeout time.Duration) (core.WindowHandle, error) {
	if timeout <= 0 {
		timeout = s.timeout
	}

	loc, err := s.parse(raw)
	if err != nil {
		return core.WindowHandle{}, err
	}

	key := app.Identity() + "|" + loc.String() + "|" + timeout.String()
	if win, ok := s.windows.Get(key); ok {
		s.log.Debug("window cache hit", zap.String("locator", raw))
		return win, nil
	}

	d, err := s.Driver()
	if err != nil {
		return core.WindowHandle{}, err
	}

	win, err := d.FindWindow(app, loc.Criteria(d.Name()), timeout)
	if err != nil {
		return core.WindowHandle{}, s.wrapNotFound(raw, timeout, err)
	}

	s.windows.Set(key, win)
	return win, nil
}

// Resolve locates a single element under parent by locator string. The
// cache key covers the parent's surrogate identity, the normalized locator
// and the timeout, so the same locator searched with different deadlines
// never aliases. A stale cached handle is evicted and resolved fresh with
// exactly one new backend search.
func (s *Service) Resolve(parent core.WindowHandle, raw string, timeout time.Duration) (core.ElementHandle, error) {
	if timeout <= 0 {
		timeout = s.timeout
	}

	loc, err := s.parse(raw)
	if err != nil {
		return core.ElementHandle{}, err
	}

	d, err := s.Driver()
	if err != nil {
		return core.ElementHandle{}, err
	}

	key := parent.Identity() + "|" + loc.String() + "|" + timeout.String()
	if h, ok := s.elements.Get(key); ok {
		if d.IsValid(h) {
			s.log.Debug("element cache hit", zap.String("locator", raw))
			return h, nil
		}
		// Fresh but dead. The entry goes, the search runs again.
		s.elements.Remove(key)
		s.log.Debug("stale handle evicted", zap.String("locator", raw))
	}

	h, err := d.FindElement(parent, loc.Criteria(d.Name()), timeout)
	if err != nil {
		return core.ElementHandle{}, s.wrapNotFound(raw, timeout, err)
	}

	s.elements.Set(key, h)
	s.log.Debug("element resolved",
		zap.String("locator", raw),
		zap.String("ref", h.NativeRef))
	return h, nil
}

// ResolveAll locates every element under parent matching the locator. Results
// are never cached: multi-match sets churn too much to be worth invalidating.
func (s *Service) ResolveAll(parent core.WindowHandle, raw string, timeout time.Duration) ([]core.ElementHandle, error) {
	if timeout <= 0 {
		timeout = s.timeout
	}

	loc, err := s.parse(raw)
	if err != nil {
		return nil, err
	}

	d, err := s.Driver()
	if err != nil {
		return nil, err
	}

	return d.FindElements(parent, loc.Criteria(d.Name()), timeout)
}

// ClearCaches drops every cached handle and parsed locator.
func (s *Service) ClearCaches() {
	s.apps.Clear()
	s.windows.Clear()
	s.elements.Clear()
	s.locators.Clear()
}

// parse returns the parsed locator for raw, caching the result. Parsing is
// pure, so entries need no validity check.
func (s *Service) parse(raw string) (locator.Locator, error) {
	if loc, ok := s.locators.Get(raw); ok {
		return loc, nil
	}

	loc, err := locator.Parse(raw)
	if err != nil {
		return locator.Locator{}, err
	}

	s.locators.Set(raw, loc)
	return loc, nil
}

// wrapNotFound annotates an exhausted search with the locator and deadline.
// The wrapper still matches errors.Is(err, core.ErrNotFound).
func (s *Service) wrapNotFound(raw string, timeout time.Duration, err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("resolve: %w", &core.TimeoutError{Locator: raw, Elapsed: timeout})
	}
	return err
}
