package dict

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lai323/lutego/model"
)

var ErrSessionClosed = errors.New("dict: session closed")

// Tab is one dictionary source of a lookup session.
type Tab struct {
	Dictionary model.DictionaryInfo
	Name       string
	URL        string
	Content    string
	Err        error
	Loaded     bool
}

// Session is a tabbed lookup of one term, tied to the lifetime of the view
// showing it. Results that arrive after Close are dropped.
type Session struct {
	svc        *Service
	term       string
	languageID int

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	tabs   []Tab
	closed bool
}

// NewSession opens one tab per active term dictionary, in configuration
// order.
func NewSession(parent context.Context, svc *Service, term string, languageID int, dicts []model.DictionaryInfo) (*Session, error) {
	active := model.TermDictionaries(dicts)
	if len(active) == 0 {
		return nil, ErrNoDictionaries
	}
	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		svc:        svc,
		term:       term,
		languageID: languageID,
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, d := range active {
		u, _ := d.LookupURL(term, svc.serverURL)
		s.tabs = append(s.tabs, Tab{Dictionary: d, Name: d.DisplayName(), URL: u})
	}
	return s, nil
}

func (s *Session) Term() string { return s.term }

func (s *Session) Tabs() []Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Tab, len(s.tabs))
	copy(out, s.tabs)
	return out
}

func (s *Session) Tab(i int) (Tab, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.tabs) {
		return Tab{}, false
	}
	return s.tabs[i], true
}

// LoadSync fetches tab i and stores the result unless the session has been
// closed in the meantime.
func (s *Session) LoadSync(i int) (Tab, error) {
	tab, ok := s.Tab(i)
	if !ok {
		return Tab{}, fmt.Errorf("dict: no tab %d", i)
	}
	if tab.Loaded && tab.Err == nil {
		return tab, nil
	}

	content, err := s.svc.Lookup(s.ctx, s.term, s.languageID, tab.Dictionary)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Tab{}, ErrSessionClosed
	}
	s.tabs[i].Content = content
	s.tabs[i].Err = err
	s.tabs[i].Loaded = true
	return s.tabs[i], err
}

// Load fetches tab i in the background and calls done with the result.
// done is not called when the session closes first.
func (s *Session) Load(i int, done func(Tab)) {
	go func() {
		tab, err := s.LoadSync(i)
		if errors.Is(err, ErrSessionClosed) {
			s.svc.log.Debug("discarding dictionary result of closed session", "term", s.term, "tab", i)
			return
		}
		if done != nil && !s.isClosed() {
			done(tab)
		}
	}()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close cancels in-flight fetches. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}
