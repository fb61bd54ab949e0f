package system

import "time"

// Phase defines execution ordering within a single simulation tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain pilot control queues
	PhasePreUpdate               // 1: dispatch last tick's events
	PhaseUpdate                  // 2: movement, AI, combat
	PhasePostUpdate              // 3: regen, respawn, discovery
	PhaseOutput                  // 4: build + broadcast telemetry
	PhasePersist                 // 5: batch profile saves
	PhaseCleanup                 // 6: destroy queued entities
)

// System is the interface every simulation system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
