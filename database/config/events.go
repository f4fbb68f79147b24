package config

import (
	"sort"
	"sync"

	"github.com/redasGoluenko/Errando/database/models"
)

// Setting names one site setting.
type Setting string

const (
	SettingSitename          Setting = "sitename"
	SettingAllowRegistration Setting = "allowRegistration"
	SettingAllowCors         Setting = "allowCors"
)

// Change is published after a save that altered at least one setting.
type Change struct {
	Old     models.Config
	New     models.Config
	Changed []Setting
}

// Has reports whether s is among the changed settings.
func (c Change) Has(s Setting) bool {
	for _, changed := range c.Changed {
		if changed == s {
			return true
		}
	}
	return false
}

// Listener receives setting changes.
type Listener func(Change)

var (
	listenersMu sync.RWMutex
	listeners   = map[int]Listener{}
	nextID      int
)

// Subscribe registers l and returns a function that removes it. Listeners
// run synchronously on the goroutine that saved the settings, so Update
// returns only after every listener has seen the change.
func Subscribe(l Listener) (unsubscribe func()) {
	listenersMu.Lock()
	defer listenersMu.Unlock()
	id := nextID
	nextID++
	listeners[id] = l
	return func() {
		listenersMu.Lock()
		defer listenersMu.Unlock()
		delete(listeners, id)
	}
}

func diff(old, cur models.Config) []Setting {
	var changed []Setting
	if old.Sitename != cur.Sitename {
		changed = append(changed, SettingSitename)
	}
	if old.AllowRegistration != cur.AllowRegistration {
		changed = append(changed, SettingAllowRegistration)
	}
	if old.AllowCors != cur.AllowCors {
		changed = append(changed, SettingAllowCors)
	}
	return changed
}

// publish notifies every listener when old and cur differ.
func publish(old, cur models.Config) {
	changed := diff(old, cur)
	if len(changed) == 0 {
		return
	}
	change := Change{Old: old, New: cur, Changed: changed}

	listenersMu.RLock()
	ids := make([]int, 0, len(listeners))
	for id := range listeners {
		ids = append(ids, id)
	}
	snapshot := make([]Listener, 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		snapshot = append(snapshot, listeners[id])
	}
	listenersMu.RUnlock()

	for _, l := range snapshot {
		l(change)
	}
}
