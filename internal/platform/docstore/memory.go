package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryEntry struct {
	seq  uint64
	data []byte
}

// MemoryStore keeps documents in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	seq  uint64
	docs map[Collection]map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[Collection]map[string]memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, coll Collection, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.docs[coll][id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return Record{ID: id, Data: cloneBytes(entry.data)}, nil
}

func (s *MemoryStore) Query(_ context.Context, coll Collection, filters ...Filter) ([]Record, error) {
	wanted := make(map[string][]byte, len(filters))
	for _, f := range filters {
		raw, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("encode filter %s: %w", f.Field, err)
		}
		wanted[f.Field] = raw
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type hit struct {
		seq uint64
		rec Record
	}
	var hits []hit
	for id, entry := range s.docs[coll] {
		if len(wanted) > 0 && !matches(entry.data, wanted) {
			continue
		}
		hits = append(hits, hit{seq: entry.seq, rec: Record{ID: id, Data: cloneBytes(entry.data)}})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].seq < hits[j].seq })

	records := make([]Record, 0, len(hits))
	for _, h := range hits {
		records = append(records, h.rec)
	}
	return records, nil
}

func matches(data []byte, wanted map[string][]byte) bool {
	obj := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return false
	}
	for field, raw := range wanted {
		got, ok := obj[field]
		if !ok || !bytes.Equal(compact(got), raw) {
			return false
		}
	}
	return true
}

func compact(raw []byte) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}

func (s *MemoryStore) Insert(ctx context.Context, coll Collection, doc any) (string, error) {
	id := uuid.NewString()
	if err := s.Put(ctx, coll, id, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MemoryStore) Put(_ context.Context, coll Collection, id string, doc any) error {
	data, err := encode(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.docs[coll] == nil {
		s.docs[coll] = make(map[string]memoryEntry)
	}
	entry, exists := s.docs[coll][id]
	if !exists {
		s.seq++
		entry.seq = s.seq
	}
	entry.data = cloneBytes(data)
	s.docs[coll][id] = entry
	return nil
}

func (s *MemoryStore) Update(_ context.Context, coll Collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.docs[coll][id]
	if !ok {
		return ErrNotFound
	}
	merged, err := merge(entry.data, fields)
	if err != nil {
		return err
	}
	entry.data = merged
	s.docs[coll][id] = entry
	return nil
}

func (s *MemoryStore) DeleteMany(_ context.Context, coll Collection, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.docs[coll], id)
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func cloneBytes(b []byte) []byte {
	return append([]byte(nil), b...)
}
