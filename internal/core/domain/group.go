package domain

import (
	"errors"
	"fmt"
	"time"
)

// Well-known group names.
const (
	GroupAdministrator = "administrator"
	GroupManager       = "manager"
	GroupCommuter      = "commuter"
)

// OrganizationGroup returns the group name for an organization id.
func OrganizationGroup(id string) string {
	return fmt.Sprintf("organization-%s", id)
}

// DefaultGroups are created when a directory is bootstrapped.
var DefaultGroups = []string{GroupAdministrator, GroupManager, GroupCommuter}

// Group is a named authorization label. Names are unique within the directory.
type Group struct {
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// GroupCreation reports the outcome of creating one group.
type GroupCreation struct {
	Name    string `json:"name"`
	Created bool   `json:"created"`
}

var errEmptyGroupSet = errors.New("required group set must not be empty")

// RequiredGroupSet is the requirement a route places on the caller's groups.
type RequiredGroupSet struct {
	names      []string
	distinct   map[string]struct{}
	requireAll bool
}

// NewRequiredGroupSet builds a requirement. Duplicate names collapse into a
// single requirement; an empty list is rejected.
func NewRequiredGroupSet(names []string, requireAll bool) (RequiredGroupSet, error) {
	if len(names) == 0 {
		return RequiredGroupSet{}, errEmptyGroupSet
	}
	distinct := make(map[string]struct{}, len(names))
	ordered := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			return RequiredGroupSet{}, fmt.Errorf("required group set: empty group name")
		}
		if _, ok := distinct[n]; ok {
			continue
		}
		distinct[n] = struct{}{}
		ordered = append(ordered, n)
	}
	return RequiredGroupSet{names: ordered, distinct: distinct, requireAll: requireAll}, nil
}

// MustGroupSet is NewRequiredGroupSet for route registration; it panics on error.
func MustGroupSet(requireAll bool, names ...string) RequiredGroupSet {
	set, err := NewRequiredGroupSet(names, requireAll)
	if err != nil {
		panic(err)
	}
	return set
}

// Names returns the distinct required names in registration order.
func (s RequiredGroupSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// RequireAll reports whether every name must be held.
func (s RequiredGroupSet) RequireAll() bool { return s.requireAll }

// Contains reports whether name is one of the required groups.
func (s RequiredGroupSet) Contains(name string) bool {
	_, ok := s.distinct[name]
	return ok
}

// Len is the number of distinct required names.
func (s RequiredGroupSet) Len() int { return len(s.names) }
