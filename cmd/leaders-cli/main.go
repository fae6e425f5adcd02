package main

import "github.com/Saad0095/leaders-tax-cli/internal/cmd"

func main() {
	cmd.Execute()
}
