package core

import (
	"fmt"
	"time"
)

// EventType represents the type of change in the store.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
	EventImport EventType = "IMPORT"
	EventReload EventType = "RELOAD"

	// EventExternal is emitted by Watchable blob stores when the persisted
	// blob was changed outside this process.
	EventExternal EventType = "EXTERNAL"
)

// Event notifies the view layer that the store changed and it should re-render.
type Event struct {
	Type EventType
	// Date is empty for store-wide events (IMPORT, RELOAD, EXTERNAL).
	Date      string
	Count     int
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	if e.Date == "" {
		return fmt.Sprintf("%s (%d notes)", e.Type, e.Count)
	}
	return fmt.Sprintf("%s %s", e.Type, e.Date)
}

func newEvent(t EventType, date string, count int) Event {
	return Event{Type: t, Date: date, Count: count, Timestamp: time.Now().Unix()}
}

// Change describes what a store command did to a single date.
type Change int

const (
	ChangeNone Change = iota
	ChangeCreated
	ChangeUpdated
	ChangeDeleted
)

func (c Change) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unchanged"
	}
}

func (c Change) eventType() EventType {
	switch c {
	case ChangeCreated:
		return EventCreate
	case ChangeDeleted:
		return EventDelete
	default:
		return EventModify
	}
}
