// Package generation turns a Chinese target word into a fill-in-the-blank
// exercise.
//
// The Generator interface is the boundary to external LLM services (LM Studio
// and Gemini implementations live under internal/platform). The Controller
// drives one generation request end to end: it renders the prompt, calls the
// generator, recovers a structured exercise from the reply, fills in missing
// pinyin or translation, scores the result and regenerates at a higher
// temperature when the score is poor. When the generator cannot be reached it
// returns a template-based fallback exercise instead of an error.
package generation
