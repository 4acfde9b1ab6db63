package main

import "github.com/KaramelBytes/claimscope-cli/cmd"

func main() {
	cmd.Execute()
}
