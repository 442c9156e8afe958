package model

import "context"

// EventName identifies a notification emitted by the risk model
type EventName string

// EventRefreshRelatedDocuments is emitted once after every successful save so
// listeners can re-render document listings that depend on the risk.
const EventRefreshRelatedDocuments EventName = "refreshRelatedDocuments"

// Event carries a snapshot of the saved risk
type Event struct {
	Name      EventName
	Operation Operation
	Risk      *Risk
}

// EventHandler receives events it subscribed to
type EventHandler func(ctx context.Context, ev Event)
