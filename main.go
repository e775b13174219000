package main

import "github.com/judgecore/judgecore/cmd"

func main() {
	cmd.Execute()
}
