// Package llm provides an OpenRouter-compatible chat client that returns JSON
// payloads.
//
// The extract package uses it to turn scraped team-page text into contact
// candidates, and the CLI uses HealthCheck for `config llm-check`.
//
// # Entry Points
//
// NewClient: construct a client from the [llm] config section.
// Client.CompleteJSON: send system/user prompts, receive the raw JSON content.
// Client.HealthCheck: verify the API key and model are usable.
// DecodeLLMJSON: decode model output that may be wrapped in code fences or prose.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx, empty completions, and network
// timeouts with exponential backoff per RetryPolicy (base 1s, max 10s, up to 5 attempts by
// default). A Retry-After header overrides the computed delay. Context
// cancellation aborts retries immediately.
package llm
