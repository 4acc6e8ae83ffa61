/*
	Copyright 2023 Markus Papenbrock
*/

package main

import "github.com/mpapenbr/race-strategy-engine/cmd"

func main() {
	cmd.Execute()
}
