package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fitpro/backend/internal/client"
	"github.com/fitpro/backend/internal/logging"
)

func main() {
	baseURL := flag.String("api", "http://localhost:3000", "auth API base URL")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
	}

	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatal(err)
	}
	secrets, err := client.NewFileStore(filepath.Join(home, ".fitpro"))
	if err != nil {
		log.Fatal(err)
	}

	api := client.NewAPIClient(*baseURL, secrets)
	notifier := client.NotifierFunc(func(title, message string) {
		fmt.Printf("%s: %s\n", title, message)
	})
	controller := client.NewSessionController(
		api,
		client.NewDialConnectivity(),
		client.NewHTTPReachability(*baseURL),
		secrets,
		notifier,
		logging.NewDefault(),
	)

	ctx := context.Background()

	switch args[0] {
	case "login":
		if len(args) != 3 {
			usage()
		}
		if err := controller.Login(ctx, args[1], args[2]); err != nil {
			os.Exit(1)
		}
	case "signup":
		if len(args) != 5 {
			usage()
		}
		err := controller.Signup(ctx, client.SignupForm{
			Email:           args[1],
			Password:        args[2],
			ConfirmPassword: args[2],
			FirstName:       args[3],
			LastName:        args[4],
			TermsAccepted:   true,
		})
		if err != nil {
			os.Exit(1)
		}
	case "profile":
		profile, err := api.Profile(ctx)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s <%s>\n", profile.FullName, profile.Email)
	case "logout":
		if err := api.Logout(ctx); err != nil {
			log.Fatal(err)
		}
		fmt.Println("Logged out")
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  client [-api URL] login <email> <password>
  client [-api URL] signup <email> <password> <first> <last>
  client [-api URL] profile
  client [-api URL] logout`)
	os.Exit(2)
}
