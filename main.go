package main

import "github.com/jfmyers9/airtime/cmd"

func main() {
	cmd.Execute()
}
