package main

import (
	"fmt"
	"os"

	"agid/internal/auth"
)

// Genera el hash bcrypt para sembrar usuarios en agid_api_users
func main() {
	password := "admin123"
	if len(os.Args) > 1 {
		password = os.Args[1]
	}

	h, err := auth.HashPassword(password)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(h)
}
