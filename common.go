package remote

import (
	"github.com/golang/glog"
)

var debugFlag = false

// debugf receives wire traffic when debugging is enabled.
var debugf = glog.Infof

// SetDebug forces wire traffic to be logged regardless of the glog
// verbosity. Without it, traffic is logged at -v=1 and above.
func SetDebug(debug bool) {
	debugFlag = debug
}

func debugEnabled() bool {
	return debugFlag || bool(glog.V(1))
}

func debugLog(format string, args ...interface{}) {
	if !debugEnabled() {
		return
	}
	debugf(format, args...)
}
