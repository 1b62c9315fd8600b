package dict

import (
	"reflect"
	"strings"
	"sync"
)

// TranslationObserver is told about every change of the shared translation.
// Observers must not change the slot from inside TranslationChanged.
// Register pointers: an observer whose type is not comparable can never be
// matched again, so it is neither deduplicated nor removable.
type TranslationObserver interface {
	TranslationChanged(text string)
}

// TranslationCacheManager holds the in-progress translation of the term
// being edited, shared by the term view and every dictionary tab.
type TranslationCacheManager struct {
	// notifyMu orders a mutation together with its notification.
	notifyMu sync.Mutex

	mu        sync.Mutex
	text      string
	valid     bool
	observers []TranslationObserver
}

func NewTranslationCacheManager() *TranslationCacheManager {
	return &TranslationCacheManager{}
}

func (m *TranslationCacheManager) AddObserver(o TranslationObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.observers {
		if sameObserver(existing, o) {
			return
		}
	}
	m.observers = append(m.observers, o)
}

func (m *TranslationCacheManager) RemoveObserver(o TranslationObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.observers {
		if sameObserver(existing, o) {
			m.observers = append(m.observers[:i:i], m.observers[i+1:]...)
			return
		}
	}
}

// SetTemporaryTranslation replaces the slot and notifies every observer
// registered at the time of the call before returning.
func (m *TranslationCacheManager) SetTemporaryTranslation(text string) {
	m.update(func(string, bool) (string, bool) { return text, true })
}

// AppendTranslation adds text to the current translation, skipping it when
// it is already one of the comma separated parts.
func (m *TranslationCacheManager) AppendTranslation(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	m.update(func(current string, valid bool) (string, bool) {
		if !valid || strings.TrimSpace(current) == "" {
			return text, true
		}
		for _, part := range strings.Split(current, ",") {
			if strings.TrimSpace(part) == text {
				return current, false
			}
		}
		return current + ", " + text, true
	})
}

// sameObserver compares without panicking on non-comparable types.
func sameObserver(a, b TranslationObserver) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || ta == nil || !ta.Comparable() {
		return false
	}
	return a == b
}

// update runs the read-modify-write under mu and notifies a snapshot of the
// observers outside it, so observers may add or remove themselves. notifyMu
// is held throughout, so observers see mutations in the order they happen.
func (m *TranslationCacheManager) update(fn func(current string, valid bool) (string, bool)) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	next, changed := fn(m.text, m.valid)
	if !changed {
		m.mu.Unlock()
		return
	}
	m.text = next
	m.valid = true
	snapshot := make([]TranslationObserver, len(m.observers))
	copy(snapshot, m.observers)
	m.mu.Unlock()

	for _, o := range snapshot {
		o.TranslationChanged(next)
	}
}

func (m *TranslationCacheManager) TemporaryTranslation() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, m.valid
}

// Reset ends the editing session: the slot becomes empty and invalid.
// Observers are not notified.
func (m *TranslationCacheManager) Reset() {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()
	m.mu.Lock()
	m.text = ""
	m.valid = false
	m.mu.Unlock()
}
