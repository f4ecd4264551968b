// The main package for the leads executable.
package main

import "github.com/TimAnthonyAlexander/leads/cmd"

func main() {
	cmd.Execute()
}
