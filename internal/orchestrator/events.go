package orchestrator

import (
	"context"
	"fmt"
)

// EventType names one stage of the orchestrator's fallback state machine.
type EventType string

const (
	EventClassify      EventType = "CLASSIFY"
	EventSQLAttempt    EventType = "SQL_ATTEMPT"
	EventVectorAttempt EventType = "VECTOR_ATTEMPT"
	EventAssemble      EventType = "ASSEMBLE"
	EventGenerate      EventType = "GENERATE"
	EventPersist       EventType = "PERSIST"
)

// PluginError carries a stage-scoped failure through the plugin chain.
type PluginError struct {
	Stage   EventType
	Message string
	Err     error
}

func (e *PluginError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

func (e *PluginError) Unwrap() error { return e.Err }

// NewPluginError builds a PluginError scoped to stage.
func NewPluginError(stage EventType, message string) *PluginError {
	return &PluginError{Stage: stage, Message: message}
}

// WithError attaches the causing error for chained construction at the
// call site, e.g. NewPluginError(stage, msg).WithError(err).
func (e *PluginError) WithError(err error) *PluginError {
	e.Err = err
	return e
}

// Plugin reacts to one or more EventTypes during a single request's pass
// through the pipeline.
type Plugin interface {
	ActivationEvents() []EventType
	OnEvent(ctx context.Context, eventType EventType, state *RequestState, next func() *PluginError) *PluginError
}

// EventManager dispatches an event to every registered plugin that
// activates on it, chaining each plugin's next() to the following one so a
// plugin can short-circuit the remaining chain by not calling next().
type EventManager struct {
	plugins map[EventType][]Plugin
}

// NewEventManager builds an empty EventManager.
func NewEventManager() *EventManager {
	return &EventManager{plugins: make(map[EventType][]Plugin)}
}

// Register adds a plugin for every EventType it activates on.
func (m *EventManager) Register(p Plugin) {
	for _, et := range p.ActivationEvents() {
		m.plugins[et] = append(m.plugins[et], p)
	}
}

// Trigger runs every plugin registered for eventType in registration order.
func (m *EventManager) Trigger(ctx context.Context, eventType EventType, state *RequestState) *PluginError {
	chain := m.plugins[eventType]
	var run func(i int) *PluginError
	run = func(i int) *PluginError {
		if i >= len(chain) {
			return nil
		}
		return chain[i].OnEvent(ctx, eventType, state, func() *PluginError {
			return run(i + 1)
		})
	}
	return run(0)
}
