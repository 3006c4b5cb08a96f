package surface

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"seller-dashboard/internal/domain"
)

type Variant int

const (
	Dropdown Variant = iota
	FullList
)

func (v Variant) String() string {
	if v == FullList {
		return "list"
	}
	return "dropdown"
}

// DefaultLimit is the page size a variant uses when none is configured.
func (v Variant) DefaultLimit() int {
	if v == FullList {
		return 20
	}
	return 10
}

type State int

const (
	Idle State = iota
	Loading
	Loaded
	LoadError
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case LoadError:
		return "error"
	}
	return "idle"
}

// Action names a user-triggered write.
type Action string

const (
	ActionMarkRead    Action = "MARK_READ"
	ActionMarkAllRead Action = "MARK_ALL_READ"
	ActionDelete      Action = "DELETE"
)

var genericAlerts = map[Action]string{
	ActionMarkRead:    "Failed to mark notification as read",
	ActionMarkAllRead: "Failed to mark all notifications as read",
	ActionDelete:      "Failed to delete notification",
}

// Alert is a failed write waiting to be acknowledged. Verbatim is set when
// Message is the backend's own error text.
type Alert struct {
	Action   Action
	Message  string
	Verbatim bool
}

type Filter struct {
	Type       *domain.NotificationType
	UnreadOnly bool
}

type Options struct {
	// Limit is the page size; zero selects the variant default. Sizes above
	// domain.MaxListLimit are clamped, since the server never returns more.
	Limit    int
	Logger   *log.Logger
	OnChange func(Snapshot)
}

// Snapshot is a copy of a surface's state at one instant.
type Snapshot struct {
	Variant Variant
	State   State
	Items   []domain.Notification
	Unread  int64
	HasMore bool
	Filter  Filter
	Err     error
	Alert   *Alert
}

var ErrAlreadyMounted = errors.New("surface already mounted")

// Surface holds the list and unread count behind one notification view and
// re-fetches both whenever the change feed reports anything.
type Surface struct {
	src      Source
	variant  Variant
	limit    int
	logger   *log.Logger
	onChange func(Snapshot)

	mu      sync.Mutex
	state   State
	items   []domain.Notification
	unread  int64
	hasMore bool
	filter  Filter
	err     error
	alert   *Alert

	feed    Feed
	cancel  context.CancelFunc
	done    chan struct{}
	mounted bool
}

func New(src Source, variant Variant, opts Options) *Surface {
	if opts.Limit <= 0 {
		opts.Limit = variant.DefaultLimit()
	}
	if opts.Limit > domain.MaxListLimit {
		opts.Limit = domain.MaxListLimit
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Surface{
		src:      src,
		variant:  variant,
		limit:    opts.Limit,
		logger:   opts.Logger,
		onChange: opts.OnChange,
		items:    []domain.Notification{},
	}
}

// Mount loads the first page and the unread count, then follows the change
// feed until Unmount. A feed that cannot be opened leaves the surface loaded
// but static.
func (s *Surface) Mount(ctx context.Context) error {
	s.mu.Lock()
	if s.mounted {
		s.mu.Unlock()
		return ErrAlreadyMounted
	}
	s.mounted = true
	s.mu.Unlock()

	s.Refresh(ctx)

	feed, err := s.src.Subscribe(ctx)
	if err != nil {
		s.logger.Printf("%s: subscribe failed: %v", s.variant, err)
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	s.feed, s.cancel, s.done = feed, cancel, done
	s.mu.Unlock()

	go s.follow(loopCtx, feed, done)
	return nil
}

func (s *Surface) follow(ctx context.Context, feed Feed, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-feed.Events():
			if !ok {
				return
			}
			s.HandleEvent(ctx, ev)
		}
	}
}

// HandleEvent re-fetches regardless of what the event describes.
func (s *Surface) HandleEvent(ctx context.Context, _ domain.ChangeEvent) {
	s.Refresh(ctx)
}

// Refresh re-runs the first-page list and the unread count concurrently.
// Responses are applied in arrival order, so an older refresh finishing last
// wins.
func (s *Surface) Refresh(ctx context.Context) {
	s.mu.Lock()
	s.state = Loading
	opts := domain.ListOptions{
		Limit:      s.limit,
		Offset:     0,
		Type:       s.filter.Type,
		UnreadOnly: s.filter.UnreadOnly,
	}
	s.mu.Unlock()
	s.notify()

	var items []domain.Notification
	var unread int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.src.List(gctx, opts)
		return err
	})
	g.Go(func() error {
		var err error
		unread, err = s.src.Count(gctx, domain.CountOptions{UnreadOnly: true})
		return err
	})
	err := g.Wait()

	s.mu.Lock()
	if err != nil {
		s.logger.Printf("%s: load failed: %v", s.variant, err)
		s.state = LoadError
		s.err = err
		s.items = []domain.Notification{}
		s.unread = 0
		s.hasMore = false
	} else {
		if items == nil {
			items = []domain.Notification{}
		}
		s.state = Loaded
		s.err = nil
		s.items = items
		s.unread = unread
		s.hasMore = len(items) == s.limit
	}
	s.mu.Unlock()
	s.notify()
}

// LoadMore appends the next page of the full list. hasMore only tracks
// whether the last page came back full, so a final page of exactly limit
// items costs one more empty fetch.
func (s *Surface) LoadMore(ctx context.Context) {
	s.mu.Lock()
	if s.variant != FullList || s.state != Loaded || !s.hasMore {
		s.mu.Unlock()
		return
	}
	opts := domain.ListOptions{
		Limit:      s.limit,
		Offset:     len(s.items),
		Type:       s.filter.Type,
		UnreadOnly: s.filter.UnreadOnly,
	}
	s.mu.Unlock()

	page, err := s.src.List(ctx, opts)

	s.mu.Lock()
	if err != nil {
		s.logger.Printf("%s: load more failed: %v", s.variant, err)
		s.hasMore = false
	} else {
		s.items = append(s.items, page...)
		s.hasMore = len(page) == s.limit
	}
	s.mu.Unlock()
	s.notify()
}

func (s *Surface) SetFilter(ctx context.Context, f Filter) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()

	s.Refresh(ctx)
}

func (s *Surface) MarkRead(ctx context.Context, id uuid.UUID) {
	s.mutate(ctx, ActionMarkRead, func() error { return s.src.MarkRead(ctx, id) })
}

func (s *Surface) MarkAllRead(ctx context.Context) {
	s.mutate(ctx, ActionMarkAllRead, func() error { return s.src.MarkAllRead(ctx) })
}

func (s *Surface) Delete(ctx context.Context, id uuid.UUID) {
	s.mutate(ctx, ActionDelete, func() error { return s.src.Delete(ctx, id) })
}

// mutate always re-fetches afterwards, even when the write failed.
func (s *Surface) mutate(ctx context.Context, action Action, write func() error) {
	if err := write(); err != nil {
		s.logger.Printf("%s: %s failed: %v", s.variant, action, err)
		alert := alertFor(action, err)

		s.mu.Lock()
		s.alert = &alert
		s.mu.Unlock()
		s.notify()
	}

	s.Refresh(ctx)
}

func alertFor(action Action, err error) Alert {
	var backendErr *domain.BackendError
	if errors.As(err, &backendErr) && backendErr.Error() != "" {
		return Alert{Action: action, Message: backendErr.Error(), Verbatim: true}
	}
	return Alert{Action: action, Message: genericAlerts[action]}
}

// DismissAlert acknowledges the pending alert, if any.
func (s *Surface) DismissAlert() {
	s.mu.Lock()
	s.alert = nil
	s.mu.Unlock()
	s.notify()
}

// Unmount releases the feed and waits for the event loop to stop.
func (s *Surface) Unmount() {
	s.mu.Lock()
	feed, cancel, done := s.feed, s.cancel, s.done
	s.feed, s.cancel, s.done = nil, nil, nil
	s.mounted = false
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if feed != nil {
		feed.Close()
	}
	if done != nil {
		<-done
	}
}

func (s *Surface) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Variant: s.variant,
		State:   s.state,
		Items:   append([]domain.Notification(nil), s.items...),
		Unread:  s.unread,
		HasMore: s.hasMore,
		Filter:  s.filter,
		Err:     s.err,
	}
	if s.alert != nil {
		alert := *s.alert
		snap.Alert = &alert
	}
	return snap
}

func (s *Surface) notify() {
	if s.onChange == nil {
		return
	}
	s.onChange(s.Snapshot())
}
