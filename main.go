package main

import "github.com/clinicpulse/clinicpulse_backend/cmd"

func main() {
	cmd.Execute()
}
