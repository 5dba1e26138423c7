// Package events carries engagement milestones from the services that
// detect them to in-process observers.
//
// Services publish EngagementEvents through an EventEmitter without knowing
// which handlers consume them. Handlers are side channels only: a failing
// handler never changes the outcome of the operation that emitted the event.
package events
