// Package lmstudio implements generation.Generator against an OpenAI-compatible
// chat-completions server such as LM Studio.
//
// The client walks a configured list of model identifiers in order and returns
// the reply of the first model that answers. Non-2xx statuses, transport errors
// and empty replies all move on to the next model; the model that answered is
// reported in generation.Output.Model.
package lmstudio
