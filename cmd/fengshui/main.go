// Command fengshui calculates Flying Star charts and Life Gua profiles, and
// serves them over HTTP.
package main

import "github.com/talgya/flyingstars/internal/cli"

func main() {
	cli.Execute()
}
