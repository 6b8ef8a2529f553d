package automation

import (
	"fmt"
	"sort"
)

// Script is a named list of actions declared in config.
type Script struct {
	ID      string       `yaml:"id"`
	Actions []ActionSpec `yaml:"actions"`
}

// Command is a request to run one action or one script.
type Command struct {
	Action  string `json:"action,omitempty"`
	DelayMs *int   `json:"delay_ms,omitempty"`
	Script  string `json:"script,omitempty"`
}

// Registry resolves action names and script ids against a Controller.
// Scripts are compiled once in NewRegistry; the registry is read-only
// afterwards and safe for concurrent use.
type Registry struct {
	target  Controller
	scripts map[string]Sequence
}

// NewRegistry compiles the scripts. Every action is validated up front so a
// bad config fails at startup rather than when triggered.
func NewRegistry(target Controller, scripts []Script) (*Registry, error) {
	r := &Registry{
		target:  target,
		scripts: make(map[string]Sequence, len(scripts)),
	}
	for i, s := range scripts {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: script %d has no id", ErrInvalidScript, i)
		}
		if _, dup := r.scripts[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidScript, s.ID)
		}
		if len(s.Actions) == 0 {
			return nil, fmt.Errorf("%w: %q has no actions", ErrInvalidScript, s.ID)
		}
		seq := make(Sequence, 0, len(s.Actions))
		for j, spec := range s.Actions {
			a, err := Build(target, spec)
			if err != nil {
				return nil, fmt.Errorf("script %q action %d: %w", s.ID, j, err)
			}
			seq = append(seq, a)
		}
		r.scripts[s.ID] = seq
	}
	return r, nil
}

// Action builds a single action.
func (r *Registry) Action(spec ActionSpec) (Action, error) {
	return Build(r.target, spec)
}

// Script returns the compiled script with the given id.
func (r *Registry) Script(id string) (Action, error) {
	seq, ok := r.scripts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScript, id)
	}
	return seq, nil
}

// Resolve turns a command into an action and a display name.
func (r *Registry) Resolve(cmd Command) (Action, string, error) {
	if cmd.Script != "" {
		if cmd.Action != "" {
			return nil, "", fmt.Errorf("%w: both action and script set", ErrInvalidCommand)
		}
		a, err := r.Script(cmd.Script)
		if err != nil {
			return nil, "", err
		}
		return a, "script:" + cmd.Script, nil
	}
	a, err := r.Action(ActionSpec{Action: cmd.Action, DelayMs: cmd.DelayMs})
	if err != nil {
		return nil, "", err
	}
	return a, cmd.Action, nil
}

// Scripts returns the script ids, sorted.
func (r *Registry) Scripts() []string {
	ids := make([]string, 0, len(r.scripts))
	for id := range r.scripts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
