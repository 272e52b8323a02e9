// Command spellbook is a CLI client for the Spellbook card collection service.
package main

import "github.com/spellbook-cards/spellbook-go/cmd/spellbook/cmd"

func main() {
	cmd.Execute()
}
