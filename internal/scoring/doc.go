// Package scoring judges fill-in-the-blank exercise candidates.
//
// A candidate first goes through cheap structural checks that never touch a
// model. It is then scored on two axes computed concurrently: semantic
// coherence, from a masked-LM's predictions for the answer position, and
// distractor quality, from the cosine similarity between the answer and the
// other options. The weighted combination is the confidence; a candidate is
// valid when the confidence exceeds the configured threshold.
package scoring
