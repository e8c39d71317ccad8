package main

import "github.com/iksnae/neuralguard/cmd"

func main() {
	cmd.Execute()
}
