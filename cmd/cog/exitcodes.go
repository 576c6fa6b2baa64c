package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (no repository, invalid config, graph not built)
	ExitDataError   = 3 // Data error (malformed records or works, empty graph)
	ExitNotFound    = 4 // Work or entity not found
	ExitAPIError    = 5 // OpenAlex API error (rate limit, network, HTTP status)
)
