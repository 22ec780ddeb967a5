// medlookup is the operator CLI for the medication lookup service: ask the
// chat questions, validate a dataset and score resolution quality.
package main

import (
	"os"

	"github.com/mBrond/chat-medicamentos/cmd/medlookup/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
