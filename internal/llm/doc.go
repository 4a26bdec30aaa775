// Package llm turns free text and receipt images into draft transactions
// using a generative AI provider. Gemini, Anthropic and OpenAI-compatible
// endpoints are supported behind a single Client interface.
package llm
