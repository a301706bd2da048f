package utils

import (
	"fmt"
	"log"
	"time"
)

// TimeTrack logs the time elapsed since start. Use with defer at the top of
// a phase.
func TimeTrack(start time.Time, name string) {
	log.Printf("%s took %s\n", name, time.Since(start).Round(time.Microsecond))
}

// VerbosePrint prints only with -verbose.
func VerbosePrint(format string, a ...interface{}) (n int, err error) {
	if Opts().Verbose() {
		return fmt.Printf(format, a...)
	}
	return 0, nil
}
