// Package api exposes exercise generation, task polling, translation and the
// exercise archive over HTTP. Handlers decode and validate JSON requests, call
// the service layer and map its errors to status codes and safe messages.
package api
