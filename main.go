package main

import "textclassifier/cmd"

func main() {
	cmd.Execute()
}
