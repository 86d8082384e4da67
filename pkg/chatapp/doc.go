// Package chatapp fronts the LibreChat web application.
//
// Proxy forwards the chat API prefixes to the backend, streaming responses
// and rewriting Set-Cookie attributes so sessions bind to the gateway's
// origin. StaticHandler serves the pre-built client with long-lived caching
// for hashed assets and an index.html fallback for browser navigations.
//
// When no external chat URL is configured the backend runs locally:
// Launcher spawns it as a child process and Prober reports whether it
// answers.
package chatapp
