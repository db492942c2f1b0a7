package main

import (
	cmd "github.com/curalab/triage/cmd/triage"
	"github.com/curalab/triage/internal"
)

var log = internal.GetLogger()

func main() {
	log.Info("Starting triage")
	cmd.Execute()
}
