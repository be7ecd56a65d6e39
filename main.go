package main

import "github.com/icco/scoresynth/cmd"

func main() {
	cmd.Execute()
}
