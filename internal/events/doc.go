// Package events provides types and interfaces for an event-driven architecture.
//
// This package defines event types and handler interfaces that allow for loose coupling
// between components in the system. The task manager and the synchronous
// generation path emit an ExerciseEvent for every finished exercise; handlers
// such as the archive writer subscribe without either side knowing the other.
//
// The primary components are:
// - ExerciseEvent: Reports a finished exercise
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
