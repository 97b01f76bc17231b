package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/carbonledger/internal/config"
	"github.com/localnerve/carbonledger/internal/testutil"
	"github.com/rs/zerolog/log"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var withAuthorizer bool
	flag.BoolVar(&withAuthorizer, "authz", true, "also start an Authorizer container")
	var devUser string
	flag.StringVar(&devUser, "user", "", "email of a development account to create in the Authorizer")
	flag.Parse()

	usage := `
Run a throwaway carbonledger database (and Authorizer) in containers with the
environment variables from the .env file, then print the settings the server
needs to reach them.

Usage:

testcontainers [-h] [-authz=false] [-user EMAIL] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to the .env file
EMAIL: signs up a "user" role account and prints its password and token

example
  testcontainers -f /path/to/something/.env
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	config.InitLogger("info", "console")

	if envFilename != "" {
		log.Info().Str("file", envFilename).Msg("loading environment variables")
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatal().Err(err).Msg("failed to load environment variables")
		}
	} else {
		log.Info().Msg("no environment file specified, using current environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	containers, err := testutil.Start(ctx, withAuthorizer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start containers")
	}

	cfg := containers.Config
	fmt.Printf("DB_TYPE=%s\nDB_HOST=%s\nDB_PORT=%s\nDB_DATABASE=%s\nDB_USER=%s\nDB_PASSWORD=%s\n",
		cfg.DBType, cfg.DBHost, cfg.DBPort, cfg.DBDatabase, cfg.DBUser, cfg.DBPassword)
	if withAuthorizer {
		fmt.Printf("AUTHZ_URL=%s\nAUTHZ_CLIENT_ID=%s\n", cfg.AuthzURL, cfg.AuthzClientID)

		if devUser != "" {
			password := testutil.GeneratePassword()
			token, err := testutil.AcquireAccount(cfg.AuthzURL, cfg.AuthzClientID, devUser, password, []string{"user"})
			if err != nil {
				log.Error().Err(err).Str("email", devUser).Msg("failed to create development account")
			} else {
				fmt.Printf("# %s / %s\n# access token: %s\n", devUser, password, token)
			}
		}
	}

	<-ctx.Done()
	log.Info().Msg("received signal, terminating containers")
	if err := containers.Terminate(context.Background()); err != nil {
		log.Error().Err(err).Msg("failed to terminate containers")
		os.Exit(1)
	}
}
