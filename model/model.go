package model

import "thloop/network"

// Msg is the websocket envelope: a type tag and a JSON payload.
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// NetworkDef is the wire description of a loop to build and solve.
type NetworkDef struct {
	Components  []ComponentDef  `json:"components"`
	Connections []ConnectionDef `json:"connections"`
	Targets     []TargetDef     `json:"targets"`
}

// ComponentDef declares one component. Params carries the numeric
// parameters each component type understands; absent keys take the type's
// defaults, and for boundary components presence decides what gets fixed.
type ComponentDef struct {
	Name   string             `json:"name"`
	Type   string             `json:"type"`
	Params map[string]float64 `json:"params"`
}

// ConnectionDef wires an outlet port to an inlet port with initial guesses
// for mass flow [kg/s], pressure [Pa] and enthalpy [J/kg].
type ConnectionDef struct {
	Name     string  `json:"name"`
	From     string  `json:"from"`
	FromPort string  `json:"from_port"`
	To       string  `json:"to"`
	ToPort   string  `json:"to_port"`
	MGuess   float64 `json:"m_guess"`
	PGuess   float64 `json:"p_guess"`
	HGuess   float64 `json:"h_guess"`
}

// TargetDef pins a connection quantity ("m", "p", "h", "x", "alpha", "T")
// to a value with an extra residual equation.
type TargetDef struct {
	Conn     string  `json:"conn"`
	Quantity string  `json:"quantity"`
	Value    float64 `json:"value"`
}

// SolveOptionsDef is the wire form of the solver options. Zero values mean
// defaults. Friction is "hem" or "chisholm".
type SolveOptionsDef struct {
	MaxIter  int     `json:"max_iter"`
	Tol      float64 `json:"tol"`
	FDEps    float64 `json:"fd_eps"`
	Damping  *bool   `json:"damping"`
	Workers  int     `json:"workers"`
	Friction string  `json:"friction"`
}

// SolveRequest bundles a network definition with solver options.
type SolveRequest struct {
	Network NetworkDef      `json:"network"`
	Options SolveOptionsDef `json:"options"`
}

// ProgressFrame is pushed after every solver iteration.
type ProgressFrame struct {
	Iter    int     `json:"iter"`
	Norm    float64 `json:"norm"`
	Damping float64 `json:"damping"`
}

// SolveReply is the final answer: solver outcome plus the post-solve state
// of every connection.
type SolveReply struct {
	Status       string              `json:"status"`
	Iterations   int                 `json:"iterations"`
	ResidualNorm float64             `json:"residual_norm"`
	Message      string              `json:"message,omitempty"`
	Connections  []network.ConnState `json:"connections,omitempty"`
}
