// internal/handlers/ws_codes.go
package handlers

// Application close codes sent on the room websocket.
const (
	BadSubprotocolError   = 3000 // Client did not negotiate the minesweeper subprotocol.
	InvalidAuthTokenError = 3001 // An auth token was presented but could not be verified.
	ServerShutdownError   = 3002 // The server is shutting down.
)
