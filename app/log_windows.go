// SPDX-License-Identifier: Unlicense OR MIT

package app

import (
	"log"

	syscall "golang.org/x/sys/windows"

	"github.com/owsgo/ows/app/internal/windows"
)

type debugLogger struct{}

func init() {
	// GUI subsystem programs have no stderr; send the log to the
	// debugger instead. DebugView adds its own timestamps.
	if syscall.Stderr == 0 {
		log.SetFlags(log.Flags() &^ log.LstdFlags)
		log.SetOutput(debugLogger{})
	}
}

func (debugLogger) Write(buf []byte) (int, error) {
	if err := windows.OutputDebugString(string(buf)); err != nil {
		return 0, err
	}
	return len(buf), nil
}
