package main

import "s2-spectral/cmd"

func main() {
	cmd.Execute()
}
