package main

import "github.com/LaudateCorpus1/fastr/cmd/rprofctl/commands"

func main() {
	commands.Execute()
}
