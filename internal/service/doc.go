// Package service contains the application use cases. It coordinates the
// generation pipeline, the task manager, the event emitter and the exercise
// archive so the API layer only deals with one entry point per feature.
//
// Services receive their dependencies through constructor injection and
// depend on interfaces, never on the platform packages that implement them.
package service
