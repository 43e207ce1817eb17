package main

import "github.com/Mohsinsiddi/samkit/cmd"

func main() {
	cmd.Execute()
}
