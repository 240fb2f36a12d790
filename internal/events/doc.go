// Package events decouples the review path from background work: a
// service that wants a reconciliation pass publishes a SyncRequested
// event, and whoever is wired up (the task runner, in production)
// reacts. Services never import the task package.
package events
