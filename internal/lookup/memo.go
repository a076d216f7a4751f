package lookup

import (
	"container/list"
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/BTreeMap/DefineBot/internal/models"
)

// DefaultMemoSize bounds the number of recent lookup results kept.
const DefaultMemoSize = 32

// memoEntry is a cached outcome: either a definition or a not-found.
type memoEntry struct {
	query    string
	def      *models.Definition
	notFound bool
}

// Memo wraps a Service with a bounded cache of recent results, so
// repeated or abusive queries don't trigger redundant page fetches.
// Only settled outcomes (a definition or not-found) are cached;
// transient errors always retry. Eviction is FIFO, the same discipline
// as the processed-comment cache, but the structure is kept separate.
// Memo is not safe for concurrent use; the bot loop is its only caller.
type Memo struct {
	inner    Service
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

// Compile-time check that Memo implements Service.
var _ Service = (*Memo)(nil)

// NewMemo wraps inner with a bounded result cache.
// A non-positive capacity falls back to DefaultMemoSize.
func NewMemo(inner Service, capacity int) *Memo {
	if capacity <= 0 {
		capacity = DefaultMemoSize
	}
	return &Memo{
		inner:    inner,
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

// Lookup returns a cached result when one exists, otherwise delegates
// to the wrapped service and caches settled outcomes.
func (m *Memo) Lookup(ctx context.Context, query string) (*models.Definition, error) {
	key := strings.ToLower(strings.TrimSpace(query))
	if e, ok := m.entries[key]; ok {
		entry := e.Value.(*memoEntry)
		slog.Debug("Memo.Lookup: cache hit", "query", key, "not_found", entry.notFound)
		if entry.notFound {
			return nil, models.ErrNotFound
		}
		return entry.def, nil
	}

	def, err := m.inner.Lookup(ctx, query)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			m.remember(&memoEntry{query: key, notFound: true})
		}
		return nil, err
	}
	m.remember(&memoEntry{query: key, def: def})
	return def, nil
}

func (m *Memo) remember(entry *memoEntry) {
	m.entries[entry.query] = m.order.PushBack(entry)
	if m.order.Len() > m.capacity {
		front := m.order.Front()
		m.order.Remove(front)
		delete(m.entries, front.Value.(*memoEntry).query)
	}
}
