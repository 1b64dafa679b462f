package main

import (
	"tagdigest/cmd"

	_ "time/tzdata" // Timezone database for scratch containers

	_ "golang.org/x/crypto/x509roots/fallback" // We need this to make TLS work in scratch containers
)

func main() {
	cmd.Execute()
}
