package pads

import "strconv"

// AppendTelemetry appends one telemetry line for the readings to dst.
// A single pad produces "<mv>\r\n"; several pads produce
// "A:<mv>,B:<mv>\r\n" using the pad names, in pad order.
func AppendTelemetry(dst []byte, pads []Pad, readings []Reading) []byte {
	if len(pads) == 1 {
		dst = strconv.AppendUint(dst, uint64(readings[0].MilliVolts), 10)
		return append(dst, '\r', '\n')
	}
	for i, p := range pads {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = append(dst, p.Name...)
		dst = append(dst, ':')
		dst = strconv.AppendUint(dst, uint64(readings[i].MilliVolts), 10)
	}
	return append(dst, '\r', '\n')
}
