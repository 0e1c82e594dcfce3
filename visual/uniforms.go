package visual

import (
	"sort"
	"sync"
)

// Uniform names shared with the mesh shader.
const (
	UniformMouse            = "mouse"
	UniformAudioData        = "tAudioData"
	UniformSampleRate       = "sampleRate"
	UniformSpectrogram      = "tSpectrogram"
	UniformColorLookupTable = "colorLookupTable"
	UniformAverageMagnitude = "averageMagnitude"
)

// Uniform is one shader input. Dirty is set on every write and cleared once the backend
// has uploaded the value.
type Uniform struct {
	Value   any
	Dirty   bool
	Version uint64
}

// UniformSet maps uniform names to values. The synchronizer writes it once per frame and
// the render backend flushes it before drawing.
type UniformSet struct {
	mu     sync.RWMutex
	values map[string]*Uniform
}

// NewUniformSet creates an empty set.
func NewUniformSet() *UniformSet {
	return &UniformSet{values: make(map[string]*Uniform)}
}

// Set stores v under name and marks it dirty.
func (s *UniformSet) Set(name string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.values[name]
	if !ok {
		u = &Uniform{}
		s.values[name] = u
	}
	u.Value = v
	u.Dirty = true
	u.Version++
}

// Get returns a copy of the named uniform.
func (s *UniformSet) Get(name string) (Uniform, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.values[name]
	if !ok {
		return Uniform{}, false
	}
	return *u, true
}

// Names lists all uniforms that have been written, sorted.
func (s *UniformSet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.values))
	for n := range s.values {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DirtyNames lists uniforms waiting for upload, sorted.
func (s *UniformSet) DirtyNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var names []string
	for n, u := range s.values {
		if u.Dirty {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// MarkAllDirty forces every uniform to be uploaded again. Renderers call it after linking
// a new program.
func (s *UniformSet) MarkAllDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.values {
		u.Dirty = true
	}
}

// Flush calls upload for every dirty uniform in name order and clears the flag of those
// that uploaded without error. The first error is returned after all uniforms are tried.
func (s *UniformSet) Flush(upload func(name string, u Uniform) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.values))
	for n, u := range s.values {
		if u.Dirty {
			names = append(names, n)
		}
	}
	sort.Strings(names)

	var first error
	for _, n := range names {
		u := s.values[n]
		if err := upload(n, *u); err != nil {
			if first == nil {
				first = err
			}
			continue
		}
		u.Dirty = false
	}
	return first
}
