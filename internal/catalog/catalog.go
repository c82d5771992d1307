// Package catalog holds the intent definitions the classifier scores and
// the slot filler and dispatcher act on.
//
// A Catalog is immutable once built. Intent order is observable: classifier
// ties go to the entry scanned first, so reordering Default changes
// behavior.
package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/carelog/internal/records"
)

// Action identifies the dispatch handler family of an intent.
type Action string

const (
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionDelete    Action = "delete"
	ActionView      Action = "view"
	ActionAnalytics Action = "analytics"
	ActionNavigate  Action = "navigate"
	ActionLogout    Action = "logout"
	ActionEmergency Action = "emergency"
	ActionUndo      Action = "undo"
	ActionCancel    Action = "cancel"
	ActionChat      Action = "chat"
)

// Actions lists every valid action.
var Actions = []Action{
	ActionCreate, ActionUpdate, ActionDelete, ActionView, ActionAnalytics,
	ActionNavigate, ActionLogout, ActionEmergency, ActionUndo, ActionCancel, ActionChat,
}

// Reversible reports whether successful dispatches of this action are
// recorded in the undo log.
func (a Action) Reversible() bool {
	return a == ActionCreate || a == ActionUpdate || a == ActionDelete
}

// FallbackName is the pseudo-intent returned when nothing scores above the
// confidence floor.
const FallbackName = "general_conversation"

// ErrUnknownIntent indicates a lookup for a name not in the catalog.
var ErrUnknownIntent = errors.New("unknown intent")

// Definition describes one intent.
type Definition struct {
	Name     string           `json:"name"`
	Keywords []string         `json:"keywords"`
	Examples []string         `json:"examples"`
	Action   Action           `json:"action"`
	Category records.Category `json:"category,omitempty"`
	Required []string         `json:"required"`
	Optional []string         `json:"optional,omitempty"`
}

// Slots returns required then optional slot names.
func (d Definition) Slots() []string {
	return append(slices.Clone(d.Required), d.Optional...)
}

// HasSlot reports whether the intent uses slot, required or optional.
func (d Definition) HasSlot(slot string) bool {
	return slices.Contains(d.Required, slot) || slices.Contains(d.Optional, slot)
}

// IsFallback reports whether d is the general conversation pseudo-intent.
func (d Definition) IsFallback() bool {
	return d.Name == FallbackName
}

// Fallback returns the general conversation pseudo-intent. It has no slots
// and is never scored.
func Fallback() Definition {
	return Definition{Name: FallbackName, Action: ActionChat}
}

// Override short-circuits classification when any of Terms occurs in the
// utterance. With RequireCategory set, a record category word must also
// occur.
type Override struct {
	Intent          string   `json:"intent"`
	Terms           []string `json:"terms"`
	RequireCategory bool     `json:"require_category,omitempty"`
}

// Catalog is an ordered set of intent definitions plus priority overrides.
type Catalog struct {
	intents   []Definition
	overrides []Override
	index     map[string]int
}

// New builds a catalog after validating it.
func New(intents []Definition, overrides []Override) (*Catalog, error) {
	c := &Catalog{
		intents:   slices.Clone(intents),
		overrides: slices.Clone(overrides),
		index:     make(map[string]int, len(intents)),
	}
	for i, d := range c.intents {
		if err := validateDefinition(d); err != nil {
			return nil, err
		}
		if _, dup := c.index[d.Name]; dup {
			return nil, fmt.Errorf("intent %q: duplicate name", d.Name)
		}
		c.index[d.Name] = i
	}
	for i, o := range c.overrides {
		if _, ok := c.index[o.Intent]; !ok {
			return nil, fmt.Errorf("override %d: %w: %q", i, ErrUnknownIntent, o.Intent)
		}
		if len(o.Terms) == 0 {
			return nil, fmt.Errorf("override %d: no terms", i)
		}
	}
	return c, nil
}

func validateDefinition(d Definition) error {
	if d.Name == "" {
		return errors.New("intent with empty name")
	}
	if d.Name == FallbackName {
		return fmt.Errorf("intent %q: name is reserved", d.Name)
	}
	if !slices.Contains(Actions, d.Action) {
		return fmt.Errorf("intent %q: unknown action %q", d.Name, d.Action)
	}
	if len(d.Keywords)+len(d.Examples) == 0 {
		return fmt.Errorf("intent %q: needs at least one keyword or example", d.Name)
	}
	if d.Category != "" {
		if _, err := records.ParseCategory(string(d.Category)); err != nil {
			return fmt.Errorf("intent %q: %w", d.Name, err)
		}
	}
	for _, s := range d.Slots() {
		if !KnownSlot(s) {
			return fmt.Errorf("intent %q: unknown slot %q", d.Name, s)
		}
	}
	return nil
}

// Intents returns the definitions in catalog order.
func (c *Catalog) Intents() []Definition {
	return slices.Clone(c.intents)
}

// Overrides returns the priority overrides in evaluation order.
func (c *Catalog) Overrides() []Override {
	return slices.Clone(c.overrides)
}

// Len returns the number of intents.
func (c *Catalog) Len() int {
	return len(c.intents)
}

// Find looks up an intent by name. The fallback name always resolves.
func (c *Catalog) Find(name string) (Definition, error) {
	if name == FallbackName {
		return Fallback(), nil
	}
	i, ok := c.index[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownIntent, name)
	}
	return c.intents[i], nil
}
