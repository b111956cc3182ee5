package native

import (
	"time"

	"github.com/wldfngrs/olive/lang/value"
)

// Clock is the canonical native function present in the original C corpus's
// standard native set: host wall-clock time, in fractional seconds, useful
// for crude benchmarking from within a script. Rejects any arguments.
func Clock(argc int, argv []value.Value) (value.Value, bool) {
	if argc != 0 {
		return nil, false
	}
	return value.Number(float64(time.Now().UnixNano()) / 1e9), true
}
