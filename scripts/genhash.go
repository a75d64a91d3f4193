// One-off: go run scripts/genhash.go [username] [password]
// Prints an INSERT statement for a superuser account.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	username := "admin"
	password := "admin"
	if len(os.Args) > 1 {
		username = os.Args[1]
	}
	if len(os.Args) > 2 {
		password = os.Args[2]
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		panic(err)
	}
	fmt.Printf(
		"INSERT INTO users (id, username, password_hash, is_active, is_staff, is_superuser, date_joined)\n"+
			"VALUES ('%s', '%s', '%s', TRUE, TRUE, TRUE, now());\n",
		uuid.NewString(), username, string(h),
	)
}
