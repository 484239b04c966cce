// Package cat relays a single chat message from a browser client to the
// Gemini generateContent API, injecting a server-held API key and enforcing
// an origin allow-list on every response.
//
// The repository contains two capabilities:
//  1. HTTP relay: the relayhttp package exports the chat handler plus Gin
//     route registration
//  2. SDK: the backend package provides a ToolCallingChatModel implementation
//     usable from Eino on top of the same generateContent client
package cat
