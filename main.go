package main

import "github.com/iksnae/strava-export/cmd"

func main() {
	cmd.Execute()
}
