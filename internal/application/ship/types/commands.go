package types

import "github.com/andrescamacho/portlogistics-go/internal/domain/navigation"

// Ship command types - shared between handlers and the simulation driver

// RequestDockCommand - Captain asks the destination port for a berth
type RequestDockCommand struct{}

// ConfirmDockCommand - Port answers the pending docking request
type ConfirmDockCommand struct {
	Granted bool
}

// RequestUndockCommand - Captain asks the current port for leave to sail
type RequestUndockCommand struct{}

// ConfirmUndockCommand - Port answers the pending undocking request
type ConfirmUndockCommand struct {
	Granted bool
}

// HandshakeResponse - Response from any of the four handshake commands
type HandshakeResponse struct {
	Request     navigation.Request
	State       navigation.ShipState
	Destination string
}

// UnloadCommand - Unload every onboard container into the destination import store
type UnloadCommand struct{}

// UnloadResponse - Response from the unload command
type UnloadResponse struct {
	Unloaded  int
	Remaining int
	State     navigation.ShipState
	Port      string
}

// ExportCommand - Load containers from the destination export store
type ExportCommand struct{}

// ExportResponse - Response from the export command
type ExportResponse struct {
	Loaded  int
	Onboard int
	Port    string
}
