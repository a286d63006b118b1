package reminders

import (
	"context"
	"encoding/json"
	"fmt"

	"seva-health/internal/kv"
	"seva-health/internal/logging"

	"go.uber.org/zap"
)

// StorageKey is the single key holding the whole reminder collection.
const StorageKey = "com.seva:medicine_reminders"

// StorageError is returned when the underlying key-value store rejects a write.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("reminder storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// LoadResult is what Load recovered from storage.
type LoadResult struct {
	Reminders []Reminder
	// Dropped counts stored elements that failed the shape check.
	Dropped int
	// Corrupted is set when the stored value was not a JSON array at all.
	Corrupted bool
}

// Store reads and writes the reminder collection as one value. Every Save
// rewrites the full list; there is no per-record update and no locking, so
// concurrent writers race and the last one wins.
type Store struct {
	kv  kv.Store
	log *zap.Logger
}

func NewStore(store kv.Store, logger *zap.Logger) *Store {
	return &Store{
		kv:  store,
		log: logging.OrNop(logger).Named("reminders"),
	}
}

func (s *Store) Save(ctx context.Context, reminders []Reminder) error {
	out := make([]Reminder, len(reminders))
	for i, r := range reminders {
		if r.Days == nil {
			r.Days = []string{}
		}
		out[i] = r
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	if err := s.kv.Set(ctx, StorageKey, raw); err != nil {
		s.log.Error("save reminders failed", zap.Error(err))
		return &StorageError{Op: "save", Err: err}
	}
	s.log.Debug("reminders saved", zap.Int("count", len(out)))
	return nil
}

// shape mirrors Reminder with pointers so absent fields can be told apart
// from empty ones.
type shape struct {
	ID    *string    `json:"id"`
	Name  *string    `json:"name"`
	Time  *string    `json:"time"`
	Days  *[]*string `json:"days"`
	Notes *string    `json:"notes"`
}

func (sh shape) reminder() (Reminder, bool) {
	if sh.ID == nil || sh.Name == nil || sh.Time == nil || sh.Days == nil {
		return Reminder{}, false
	}
	days := make([]string, 0, len(*sh.Days))
	for _, d := range *sh.Days {
		if d == nil {
			return Reminder{}, false
		}
		days = append(days, *d)
	}
	r := Reminder{ID: *sh.ID, Name: *sh.Name, Time: *sh.Time, Days: days}
	if sh.Notes != nil {
		r.Notes = *sh.Notes
	}
	return r, r.Valid()
}

// Load never fails: an absent, unreadable or corrupted value yields an empty
// list, and invalid elements are dropped while valid ones are kept in order.
func (s *Store) Load(ctx context.Context) LoadResult {
	res := LoadResult{Reminders: []Reminder{}}

	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		s.log.Error("read reminders failed", zap.Error(err))
		return res
	}
	if !ok || len(raw) == 0 {
		return res
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		s.log.Warn("stored reminders corrupted, expected an array", zap.String("key", StorageKey))
		res.Corrupted = true
		return res
	}

	for i, item := range items {
		var sh shape
		if err := json.Unmarshal(item, &sh); err != nil {
			s.log.Warn("skipping invalid reminder", zap.Int("index", i), zap.Error(err))
			res.Dropped++
			continue
		}
		r, ok := sh.reminder()
		if !ok {
			s.log.Warn("skipping invalid reminder", zap.Int("index", i), zap.ByteString("raw", item))
			res.Dropped++
			continue
		}
		res.Reminders = append(res.Reminders, r)
	}

	if res.Dropped > 0 {
		s.log.Warn("dropped invalid reminders", zap.Int("dropped", res.Dropped), zap.Int("kept", len(res.Reminders)))
	}
	return res
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		s.log.Error("clear reminders failed", zap.Error(err))
		return &StorageError{Op: "clear", Err: err}
	}
	return nil
}
