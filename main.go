package main

import (
	"os"
	"runtime/debug"

	"provault/cmd"
	"provault/logx"
	"provault/monitoring"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			monitoring.IncreasePanicCount()
			_ = logx.Errorf("NODE CRASHED: %v\n%s", r, debug.Stack())
			os.Exit(1)
		}
	}()

	cmd.Execute()
}
