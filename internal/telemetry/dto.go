package telemetry

// Snapshot is the JSON frame broadcast each output tick.
type Snapshot struct {
	Tick   uint64     `json:"tick"`
	Sector string     `json:"sector"`
	Pilot  PilotDTO   `json:"pilot"`
	Aliens []AlienDTO `json:"aliens"`
	Shots  []ShotDTO  `json:"shots,omitempty"`
	Events []EventDTO `json:"events,omitempty"`
}

type Vec3DTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type PilotDTO struct {
	Position Vec3DTO `json:"position"`
	Velocity Vec3DTO `json:"velocity"`
	Hull     int32   `json:"hull"`
	Shield   int32   `json:"shield"`
	Credits  int64   `json:"credits"`
	Score    int64   `json:"score"`
	Dead     bool    `json:"dead,omitempty"`
}

type AlienDTO struct {
	Class    string  `json:"class"`
	Position Vec3DTO `json:"position"`
	Hull     int32   `json:"hull"`
	State    string  `json:"state"`
}

type ShotDTO struct {
	Position Vec3DTO `json:"position"`
	Velocity Vec3DTO `json:"velocity"`
}

// EventDTO carries tick-scoped notifications: kills, deaths, discoveries.
type EventDTO struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}
