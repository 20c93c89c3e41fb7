// Package task runs exercise generation in the background so HTTP handlers
// can answer immediately with a task id.
//
// Submitted tasks go into a bounded FIFO queue consumed by a fixed pool of
// workers. Each worker runs the generation pipeline for one task, writes the
// task's terminal record exactly once, and then sweeps finished records older
// than the configured TTL. Unknown ids, queued ids and swept ids all poll as
// pending.
package task
