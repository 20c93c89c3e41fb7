// Package gemini provides an implementation of the generation.Generator interface
// that uses Google's Gemini API to write exercise drafts.
//
// This package is an infrastructure adapter: it connects the exercise pipeline
// to Google's Gemini service without exposing the details of the external
// client to the rest of the application. The generator returns the model's raw
// text; recovering an exercise from it happens in the recovery package.
//
// Error handling:
//   - API and transport errors are retried with exponential backoff and jitter
//   - content blocked by safety filters is reported as generation.ErrContentBlocked
//     and never retried
//   - empty candidates are reported as generation.ErrInvalidResponse
package gemini
