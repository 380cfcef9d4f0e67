package main

import "github.com/lebenh/rfi-triage/cmd"

func main() {
	cmd.Execute()
}
