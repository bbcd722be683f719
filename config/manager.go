package config

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Op identifies whether a dispatched command is setting or deleting a
// leaf, mirroring the CLI's own Apply semantics (a line can retract a
// previously-set leaf by the same path).
type Op int

const (
	OpSet Op = iota
	OpDelete
)

// HandlerFunc is registered against a config path prefix; args holds
// every token after the registered prefix. For OpSet the leaf's value is
// appended as the final element; for OpDelete it is not.
type HandlerFunc func(op Op, args []string) error

// Manager is the builder-pattern config dispatcher of §9's design note:
// handlers are registered once at startup, mutations accumulate in a
// cache overlay distinct from the running config, and CommitEnd applies
// the whole cache atomically — a failing handler aborts the commit and
// leaves running untouched (§7).
type Manager struct {
	mu       sync.Mutex
	handlers map[string]HandlerFunc
	running  map[string]string
	cache    map[string]string
	log      *logrus.Entry
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		handlers: make(map[string]HandlerFunc),
		running:  make(map[string]string),
		cache:    make(map[string]string),
		log:      logrus.WithField("component", "config"),
	}
}

// RegisterHandler binds fn to every path with this exact prefix. Longer
// registered prefixes win over shorter ones at dispatch time, so
// `routing bgp neighbors neighbor` can capture the neighbor's address
// and remaining sub-path as args rather than needing one handler per
// concrete neighbor.
func (m *Manager) RegisterHandler(path string, fn HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = fn
}

// Load parses src and stages every leaf it contains into the cache
// overlay, ready for CommitEnd. It does not touch the running config.
func (m *Manager) Load(src string) error {
	cmds, err := Parse(src)
	if err != nil {
		return errors.Wrap(err, "config: parse")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range cmds {
		m.cache[c.Path] = c.Value
	}
	return nil
}

// Set stages a single path/value mutation into the cache overlay, the
// path taken by the CLI's `Apply` RPC line-by-line.
func (m *Manager) Set(path, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[path] = value
}

// Delete stages a retraction of path from the cache overlay.
func (m *Manager) Delete(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[path] = deletedMarker
}

// deletedMarker distinguishes "this commit deletes path" from "this
// commit never mentioned path" inside the cache overlay.
const deletedMarker = "\x00deleted"

// CommitEnd dispatches every staged cache entry through its registered
// handler and, only if every handler succeeds, replaces the running
// config with the merged result. The first handler error aborts the
// commit; running is left exactly as it was before CommitEnd was called.
func (m *Manager) CommitEnd() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	applied := make(map[string]string, len(m.running)+len(m.cache))
	for k, v := range m.running {
		applied[k] = v
	}

	for path, value := range m.cache {
		op := OpSet
		if value == deletedMarker {
			op = OpDelete
		}
		fn, args, ok := m.handlerFor(path)
		if ok {
			if op == OpSet {
				args = append(append([]string{}, args...), value)
			}
			if err := fn(op, args); err != nil {
				m.log.WithError(err).WithField("path", path).Warn("config commit aborted")
				return errors.Wrapf(err, "config: commit %s", path)
			}
		}
		if op == OpDelete {
			delete(applied, path)
		} else {
			applied[path] = value
		}
	}

	m.running = applied
	m.cache = make(map[string]string)
	return nil
}

// handlerFor finds the longest registered prefix of path's tokens,
// returning the handler and the tokens after that prefix.
func (m *Manager) handlerFor(path string) (HandlerFunc, []string, bool) {
	tokens := strings.Fields(path)
	for i := len(tokens); i > 0; i-- {
		prefix := strings.Join(tokens[:i], " ")
		if fn, ok := m.handlers[prefix]; ok {
			return fn, tokens[i:], true
		}
	}
	return nil, nil, false
}

// Running returns the value committed for path, if any — used by show
// commands to render the active config tree.
func (m *Manager) Running(path string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.running[path]
	return v, ok
}
