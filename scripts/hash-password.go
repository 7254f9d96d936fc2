package main

import (
	"fmt"
	"os"

	"github.com/aeroway/aeroway-api/internal/util"
)

// Prints a bcrypt hash for seeding users rows by hand.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: go run scripts/hash-password.go <password>\n")
		os.Exit(1)
	}

	password := os.Args[1]
	if !util.PasswordStrong(password) {
		fmt.Fprintf(os.Stderr, "Error: password needs at least 8 characters, a digit and a letter\n")
		os.Exit(1)
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
