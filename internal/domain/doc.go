// Package domain holds the exercise records shared by the recovery parser,
// the scorer, the retry controller and the task manager. It has no
// dependencies on infrastructure.
package domain
