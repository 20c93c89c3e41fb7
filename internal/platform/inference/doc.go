// Package inference is the HTTP client for the model sidecar that serves the
// masked language model, sentence embeddings and machine translation.
//
// Client implements scoring.MaskedPredictor, scoring.Embedder and
// translation.Translator. Transport failures, 429 and 5xx responses are
// retried with exponential backoff; everything else fails immediately.
package inference
