package main

import "github.com/adamgarcia4/goLearning/cqlsession/cmd"

func main() {
	cmd.Execute()
}
