package heartbeat

import (
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	StateStarting = "starting"
	StateHealthy  = "healthy"
	StateDegraded = "degraded"
	StateStopped  = "stopped"
	StateStale    = "stale"
)

// Reporter is implemented by the registry and accepted by long-running
// components so they can publish liveness without holding the registry type.
type Reporter interface {
	Starting(component, message string)
	Beat(component, message string)
	Degrade(component, message string, err error)
	Stopped(component, message string)
}

type ComponentStatus struct {
	Name          string `json:"name"`
	State         string `json:"state"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
	LastBeatUnix  int64  `json:"last_beat_at_unix,omitempty"`
	UpdatedAtUnix int64  `json:"updated_at_unix"`
}

type Snapshot struct {
	GeneratedAtUnix int64             `json:"generated_at_unix"`
	Overall         string            `json:"overall"`
	Components      []ComponentStatus `json:"components"`
}

type record struct {
	state      string
	message    string
	lastError  string
	lastBeatAt time.Time
	updatedAt  time.Time
}

type Registry struct {
	mu         sync.RWMutex
	components map[string]record
}

func NewRegistry() *Registry {
	return &Registry{components: map[string]record{}}
}

func (r *Registry) Starting(component, message string) {
	r.set(component, StateStarting, message, "")
}

func (r *Registry) Beat(component, message string) {
	name := normalize(component)
	if name == "" {
		return
	}
	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[name] = record{
		state:      StateHealthy,
		message:    strings.TrimSpace(message),
		lastBeatAt: now,
		updatedAt:  now,
	}
}

func (r *Registry) Degrade(component, message string, err error) {
	errorText := ""
	if err != nil {
		errorText = strings.TrimSpace(err.Error())
	}
	r.set(component, StateDegraded, message, errorText)
}

func (r *Registry) Stopped(component, message string) {
	r.set(component, StateStopped, message, "")
}

func (r *Registry) set(component, state, message, errorText string) {
	name := normalize(component)
	if name == "" {
		return
	}
	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	previous := r.components[name]
	previous.state = state
	previous.message = strings.TrimSpace(message)
	previous.lastError = errorText
	previous.updatedAt = now
	if previous.lastBeatAt.IsZero() {
		previous.lastBeatAt = now
	}
	r.components[name] = previous
}

// Snapshot renders the current component states, marking components whose
// last beat is older than staleAfter.
func (r *Registry) Snapshot(staleAfter time.Duration) Snapshot {
	now := time.Now().UTC()
	r.mu.RLock()
	defer r.mu.RUnlock()

	components := make([]ComponentStatus, 0, len(r.components))
	for name, entry := range r.components {
		status := ComponentStatus{
			Name:          name,
			State:         entry.state,
			Message:       entry.message,
			Error:         entry.lastError,
			UpdatedAtUnix: entry.updatedAt.Unix(),
		}
		if !entry.lastBeatAt.IsZero() {
			status.LastBeatUnix = entry.lastBeatAt.Unix()
		}
		if staleAfter > 0 && (entry.state == StateHealthy || entry.state == StateStarting) &&
			now.Sub(entry.lastBeatAt) > staleAfter {
			status.State = StateStale
		}
		components = append(components, status)
	}
	sort.Slice(components, func(left, right int) bool {
		return components[left].Name < components[right].Name
	})

	return Snapshot{
		GeneratedAtUnix: now.Unix(),
		Overall:         overall(components),
		Components:      components,
	}
}

func (s Snapshot) Healthy() bool {
	return s.Overall == StateHealthy || s.Overall == StateStarting
}

func overall(components []ComponentStatus) string {
	if len(components) == 0 {
		return StateStarting
	}
	starting := false
	for _, component := range components {
		switch component.State {
		case StateDegraded, StateStale:
			return StateDegraded
		case StateStarting:
			starting = true
		}
	}
	if starting {
		return StateStarting
	}
	return StateHealthy
}

func normalize(component string) string {
	return strings.ToLower(strings.TrimSpace(component))
}
