package store

import (
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process Backend. It is used by tests and by headless runs
// that should not touch disk.
type Memory struct {
	mu     sync.Mutex
	data   map[string]map[string][]byte
	closed bool
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string][]byte)}
}

func (m *Memory) Load(ns, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	v, ok := m.data[ns][key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *Memory) Save(ns, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	bucket, ok := m.data[ns]
	if !ok {
		bucket = make(map[string][]byte)
		m.data[ns] = bucket
	}
	v := make([]byte, len(value))
	copy(v, value)
	bucket[key] = v
	return nil
}

func (m *Memory) Entries(prefix string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	var out []Entry
	for ns, bucket := range m.data {
		if !strings.HasPrefix(ns, prefix) {
			continue
		}
		for k, v := range bucket {
			out = append(out, Entry{Namespace: ns, Key: k, Value: append([]byte(nil), v...)})
		}
	}
	// Map iteration is random; keep exports stable.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Namespace != out[j].Namespace {
			return out[i].Namespace < out[j].Namespace
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

func (m *Memory) Clear(ns string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.data, ns)
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
