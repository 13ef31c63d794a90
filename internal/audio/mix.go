// SPDX-License-Identifier: MIT
package audio

// remix converts interleaved src from inCh to outCh channels, writing into
// dst (grown when needed):
//
//   - same count: copy
//   - to mono: average of all input channels
//   - from mono: duplicate into every output channel
//   - otherwise: output channel c takes input channel c mod inCh
func remix(dst, src []float64, inCh, outCh int) []float64 {
	frames := len(src) / inCh
	need := frames * outCh
	if cap(dst) < need {
		dst = make([]float64, need)
	}
	dst = dst[:need]

	switch {
	case inCh == outCh:
		copy(dst, src[:need])
	case outCh == 1:
		scale := 1 / float64(inCh)
		for i := range frames {
			var sum float64
			for _, s := range src[i*inCh : (i+1)*inCh] {
				sum += s
			}
			dst[i] = sum * scale
		}
	case inCh == 1:
		for i := range frames {
			for c := range outCh {
				dst[i*outCh+c] = src[i]
			}
		}
	default:
		for i := range frames {
			for c := range outCh {
				dst[i*outCh+c] = src[i*inCh+c%inCh]
			}
		}
	}
	return dst
}
