package main

import "github.com/nhle/checklist-sync/cmd"

func main() {
	cmd.Execute()
}
