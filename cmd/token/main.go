// Command token issues an access token for local testing:
//
//	go run ./cmd/token -user manager -role manager
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/config"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/jwt"
)

func main() {
	userID := flag.String("user", "", "user id (token user_id claim)")
	role := flag.String("role", string(user.RoleEmployee), "admin, manager or employee")
	employeeID := flag.String("employee", "", "optional employee_id claim")
	flag.Parse()

	if *userID == "" || !user.Role(*role).IsValid() {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error creating JWT service:", err)
		os.Exit(1)
	}

	var empID *string
	if *employeeID != "" {
		empID = employeeID
	}

	token, expiresAt, err := JWTService.GenerateAccessToken(*userID, empID, user.Role(*role))
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error generating token:", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintln(os.Stderr, "expires at", time.Unix(expiresAt, 0).Format(time.RFC3339))
}
