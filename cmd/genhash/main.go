// Command genhash prints a bcrypt hash for the credentials table when
// CREDENTIAL_HASHING=bcrypt.
//
//	go run ./cmd/genhash 'my password'
package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: genhash <password> [<password>...]")
		os.Exit(2)
	}

	for _, pass := range os.Args[1:] {
		hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
		if err != nil {
			fmt.Println("Error:", err)
			continue
		}
		fmt.Println(string(hash))
	}
}
