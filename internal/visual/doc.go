// SPDX-License-Identifier: MIT

/*
Package visual maps analysis output to screen-space polylines.

Two layouts are supported:

	spectrum   one point per bin in [Min, Max), alternating above and
	           below the centre line ("wavy" rendering)
	waveform   an anchor at the left edge followed by evenly spaced
	           time-domain samples of the frame

Coordinates follow image conventions: x grows to the right, y grows
downwards, and the centre line sits at height/2.
*/
package visual
