// main is the entry point of the cadence CLI.
package main

import (
	"os"

	"github.com/huangsam/cadence/cmd"
	"github.com/huangsam/cadence/internal/contract"
	"github.com/huangsam/cadence/internal/iocache"
)

func main() {
	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Cannot stop profiling", stopErr)
	}
	iocache.CloseRunStore()
	if err != nil {
		contract.LogWarn("Command failed", err)
		os.Exit(1)
	}
}
