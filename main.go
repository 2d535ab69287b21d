package main

import "lakehouse-utils/cmd"

func main() {
	cmd.Execute()
}
