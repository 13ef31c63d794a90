// SPDX-License-Identifier: MIT
package audio

func (e *Engine) EnableGate() {
	e.gateEnabled = true
}

func (e *Engine) DisableGate() {
	e.gateEnabled = false
}

// SetGateThreshold adjusts the noise gate threshold and enables the gate
// for any positive value. The value is a peak absolute amplitude in the
// range 0.0-1.0; frames at or below it render flat without running the
// transform.
func (e *Engine) SetGateThreshold(threshold float64) {
	if threshold < 0.0 {
		threshold = 0.0
	}
	if threshold > 1.0 {
		threshold = 1.0
	}

	e.gateThreshold = threshold
	e.gateEnabled = threshold > 0
}

// GetGateThreshold returns the current noise gate threshold.
func (e *Engine) GetGateThreshold() float64 {
	return e.gateThreshold
}

// GateEnabled reports whether quiet frames are being flattened.
func (e *Engine) GateEnabled() bool {
	return e.gateEnabled
}
