// Package recovery extracts a structured fill-in-the-blank exercise from
// free-form language model output.
//
// Recovery walks an ordered chain of tiers: a fenced JSON block, an
// unterminated fence, the longest balanced brace span, a naive brace span,
// label-based field search, line heuristics, and finally synthesis. JSON
// spans that fail to parse are retried after an ordered set of pure text
// rewrites. Whatever a tier recovers is normalized so the candidate always
// has four options, the requested word as answer, and a gap marker.
package recovery
