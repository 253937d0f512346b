// Package object keeps the session-wide index of live game objects by uid
// and by kind.
package object

import (
	"slices"

	xlog "campfire/internal/log"

	"github.com/rs/zerolog"
)

// Kind categorises objects.
type Kind uint8

const (
	KindOther Kind = iota
	KindPlayer
	KindMonster
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "Player"
	case KindMonster:
		return "Monster"
	}
	return "Other"
}

// Object is implemented by everything stored in the registry.
type Object interface {
	UID() int
	SetUID(uid int)
	Kind() Kind
}

// Registry maps uids to objects and kinds to sets of objects.
type Registry struct {
	nextUID int
	byUID   map[int]Object
	byKind  map[Kind]map[int]Object
	logger  zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		nextUID: 1,
		byUID:   make(map[int]Object),
		byKind:  make(map[Kind]map[int]Object),
		logger:  xlog.WithComponent("object"),
	}
}

// NextUID mints a uid that is not in use.
func (r *Registry) NextUID() int {
	for {
		uid := r.nextUID
		r.nextUID++
		if _, taken := r.byUID[uid]; !taken {
			return uid
		}
	}
}

// Register adds obj. Objects without a uid, or whose uid belongs to a
// different object, are given a fresh one.
func (r *Registry) Register(obj Object) {
	if obj == nil {
		return
	}
	if obj.UID() <= 0 {
		obj.SetUID(r.NextUID())
	} else if other, ok := r.byUID[obj.UID()]; ok && other != obj {
		old := obj.UID()
		obj.SetUID(r.NextUID())
		r.logger.Warn().
			Str("event", "object.uid_conflict").
			Int("uid", old).
			Int("new_uid", obj.UID()).
			Msg("uid already taken, assigned a new one")
	}
	r.byUID[obj.UID()] = obj
	set := r.byKind[obj.Kind()]
	if set == nil {
		set = make(map[int]Object)
		r.byKind[obj.Kind()] = set
	}
	set[obj.UID()] = obj
}

// Unregister removes obj. Unknown objects are ignored.
func (r *Registry) Unregister(obj Object) {
	if obj == nil {
		return
	}
	if cur, ok := r.byUID[obj.UID()]; !ok || cur != obj {
		return
	}
	delete(r.byUID, obj.UID())
	if set := r.byKind[obj.Kind()]; set != nil {
		delete(set, obj.UID())
		if len(set) == 0 {
			delete(r.byKind, obj.Kind())
		}
	}
}

// Find returns the object with the given uid, or nil.
func (r *Registry) Find(uid int) Object {
	return r.byUID[uid]
}

// FindAll returns every object of kind k ordered by uid.
func (r *Registry) FindAll(k Kind) []Object {
	set := r.byKind[k]
	if len(set) == 0 {
		return nil
	}
	out := make([]Object, 0, len(set))
	for _, obj := range set {
		out = append(out, obj)
	}
	slices.SortFunc(out, func(a, b Object) int { return a.UID() - b.UID() })
	return out
}

// FindAllAs returns the objects of kind k that have concrete type T.
func FindAllAs[T Object](r *Registry, k Kind) []T {
	var out []T
	for _, obj := range r.FindAll(k) {
		if t, ok := obj.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// Count returns the total number of registered objects.
func (r *Registry) Count() int { return len(r.byUID) }

// CountKind returns the number of registered objects of kind k.
func (r *Registry) CountKind(k Kind) int { return len(r.byKind[k]) }

// Clear removes every object.
func (r *Registry) Clear() {
	clear(r.byUID)
	clear(r.byKind)
	r.logger.Debug().Str("event", "object.cleared").Msg("all objects cleared")
}
