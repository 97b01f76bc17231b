// containers.go
//
// A greenhouse-gas quantification and aggregation service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of carbonledger.
// carbonledger is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// carbonledger is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with carbonledger.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package testutil starts the throwaway database and Authorizer containers
// used by the integration tests and by cmd/testcontainers.
//
// Settings come from the environment: DB_IMAGE, DB_TYPE (mariadb, mysql or
// postgres), DB_DATABASE, DB_USER, DB_PASSWORD, DB_ROOT_PASSWORD and, when
// an Authorizer is requested, AUTHZ_IMAGE, AUTHZ_PORT, AUTHZ_CLIENT_ID,
// AUTHZ_ADMIN_SECRET and AUTHZ_DATABASE.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/localnerve/carbonledger/internal/config"
	"github.com/localnerve/carbonledger/internal/database"
	"github.com/rs/zerolog/log"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

const (
	dbNetworkAlias    = "db"
	authzNetworkAlias = "authorizer"
)

// Containers holds the running containers and the configuration that
// reaches the database from the host.
type Containers struct {
	Network    *testcontainers.DockerNetwork
	DB         testcontainers.Container
	Authorizer testcontainers.Container
	Config     *config.Config
}

// Terminate stops every container that was started and removes the network.
func (c *Containers) Terminate(ctx context.Context) error {
	var errs []error
	if c.Authorizer != nil {
		if err := c.Authorizer.Terminate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("terminate authorizer: %w", err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Terminate(ctx); err != nil {
			errs = append(errs, fmt.Errorf("terminate database: %w", err))
		}
	}
	if c.Network != nil {
		if err := c.Network.Remove(ctx); err != nil {
			errs = append(errs, fmt.Errorf("remove network: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Start runs the database container and, when withAuthorizer is set, an
// Authorizer container that stores its users in the same server. On error
// anything already started is terminated.
func Start(ctx context.Context, withAuthorizer bool) (*Containers, error) {
	dbImage := os.Getenv("DB_IMAGE")
	if dbImage == "" {
		return nil, fmt.Errorf("DB_IMAGE is required")
	}

	tc := &Containers{}
	fail := func(err error, msg string) (*Containers, error) {
		if terr := tc.Terminate(context.Background()); terr != nil {
			log.Warn().Err(terr).Msg("cleanup after failed start")
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}

	nw, err := network.New(ctx)
	if err != nil {
		return fail(err, "failed to create network")
	}
	tc.Network = nw

	cfg := &config.Config{
		DBType:            getEnv("DB_TYPE", "mariadb"),
		DBDatabase:        getEnv("DB_DATABASE", "carbonledger"),
		DBUser:            getEnv("DB_USER", "carbonledger"),
		DBPassword:        getEnv("DB_PASSWORD", "carbonledger"),
		DBConnectionLimit: 5,
		DBLogLevel:        getEnv("DB_LOG_LEVEL", "warn"),
		LogLevel:          "info",
		LogFormat:         "console",
	}
	rootPassword := getEnv("DB_ROOT_PASSWORD", "root")

	containerPort := "3306"
	if cfg.DBType == "postgres" {
		containerPort = "5432"
	}
	tcpDBPort, err := nat.NewPort("tcp", containerPort)
	if err != nil {
		return fail(err, "failed to create database port")
	}

	if present, err := imagePresent(ctx, dbImage); err != nil {
		log.Warn().Err(err).Str("image", dbImage).Msg("could not inspect local images")
	} else if !present {
		log.Info().Str("image", dbImage).Msg("image not present locally, pulling")
	}

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:              dbImage,
			ExposedPorts:       []string{string(tcpDBPort)},
			Env:                dbInitEnv(cfg, rootPassword),
			HostConfigModifier: dataOnTmpfs(cfg.DBType),
			WaitingFor:         wait.ForListeningPort(tcpDBPort).WithStartupTimeout(90 * time.Second),
			Networks:           []string{nw.Name},
			NetworkAliases: map[string][]string{
				nw.Name: {dbNetworkAlias},
			},
		},
		Started: true,
	})
	if err != nil {
		return fail(err, "failed to start database")
	}
	tc.DB = dbContainer

	host, err := dbContainer.Host(ctx)
	if err != nil {
		return fail(err, "failed to read database host")
	}
	mapped, err := dbContainer.MappedPort(ctx, tcpDBPort)
	if err != nil {
		return fail(err, "failed to read database port")
	}
	cfg.DBHost = host
	cfg.DBPort = mapped.Port()

	if err := waitForDatabase(ctx, cfg); err != nil {
		return fail(err, "database not ready")
	}
	log.Info().Str("host", host).Str("port", cfg.DBPort).Msg("database container started")

	if withAuthorizer {
		if err := startAuthorizer(ctx, tc, cfg, rootPassword, containerPort); err != nil {
			return fail(err, "failed to start authorizer")
		}
	}

	tc.Config = cfg
	return tc, nil
}

func startAuthorizer(ctx context.Context, tc *Containers, cfg *config.Config, rootPassword, dbContainerPort string) error {
	authzDatabase := getEnv("AUTHZ_DATABASE", "authorizer")
	if err := createAuthorizerDatabase(ctx, cfg, rootPassword, authzDatabase); err != nil {
		return err
	}

	tcpAuthzPort, err := nat.NewPort("tcp", getEnv("AUTHZ_PORT", "8080"))
	if err != nil {
		return err
	}

	dbType := cfg.DBType
	dbURL := fmt.Sprintf("root:%s@tcp(%s:%s)/%s", rootPassword, dbNetworkAlias, dbContainerPort, authzDatabase)
	if dbType == "postgres" {
		dbURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.DBUser, cfg.DBPassword, dbNetworkAlias, dbContainerPort, authzDatabase)
	} else {
		dbType = "mysql"
	}

	clientID := getEnv("AUTHZ_CLIENT_ID", "carbonledger")
	authz, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        getEnv("AUTHZ_IMAGE", "lakhansamani/authorizer:latest"),
			ExposedPorts: []string{string(tcpAuthzPort)},
			Env: map[string]string{
				"ENV":           "production",
				"CLIENT_ID":     clientID,
				"PORT":          tcpAuthzPort.Port(),
				"DATABASE_TYPE": dbType,
				"DATABASE_NAME": authzDatabase,
				"DATABASE_URL":  dbURL,
				"ADMIN_SECRET":  getEnv("AUTHZ_ADMIN_SECRET", "admin"),
				"ROLES":         "admin,user",
				"DEFAULT_ROLES": "user",
			},
			WaitingFor: wait.ForLog("Authorizer running at PORT:").WithStartupTimeout(30 * time.Second),
			Networks:   []string{tc.Network.Name},
			NetworkAliases: map[string][]string{
				tc.Network.Name: {authzNetworkAlias},
			},
		},
		Started: true,
	})
	if err != nil {
		return err
	}
	tc.Authorizer = authz

	host, err := authz.Host(ctx)
	if err != nil {
		return err
	}
	port, err := authz.MappedPort(ctx, tcpAuthzPort)
	if err != nil {
		return err
	}
	cfg.AuthzURL = fmt.Sprintf("http://%s:%s", host, port.Port())
	cfg.AuthzClientID = clientID
	log.Info().Str("url", cfg.AuthzURL).Msg("authorizer container started")
	return nil
}

func dbInitEnv(cfg *config.Config, rootPassword string) map[string]string {
	if cfg.DBType == "postgres" {
		return map[string]string{
			"POSTGRES_PASSWORD": cfg.DBPassword,
			"POSTGRES_USER":     cfg.DBUser,
			"POSTGRES_DB":       cfg.DBDatabase,
		}
	}
	return map[string]string{
		"MYSQL_ROOT_PASSWORD": rootPassword,
		"MYSQL_DATABASE":      cfg.DBDatabase,
		"MYSQL_USER":          cfg.DBUser,
		"MYSQL_PASSWORD":      cfg.DBPassword,
	}
}

// dataOnTmpfs keeps the server's data directory in memory.
func dataOnTmpfs(dbType string) func(*container.HostConfig) {
	dataDir := "/var/lib/mysql"
	if dbType == "postgres" {
		dataDir = "/var/lib/postgresql/data"
	}
	return func(hostConfig *container.HostConfig) {
		hostConfig.Tmpfs = map[string]string{dataDir: "rw"}
	}
}

// waitForDatabase pings until the server accepts the application user. The
// listening port opens before MariaDB finishes its init scripts.
func waitForDatabase(ctx context.Context, cfg *config.Config) error {
	var lastErr error
	for range 30 {
		db, err := database.Connect(cfg)
		if err == nil {
			lastErr = ping(ctx, db)
			if cerr := database.Close(db); cerr != nil && lastErr == nil {
				lastErr = cerr
			}
			if lastErr == nil {
				return nil
			}
		} else {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return fmt.Errorf("not ready after 30 seconds: %w", lastErr)
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func createAuthorizerDatabase(ctx context.Context, cfg *config.Config, rootPassword, name string) error {
	admin := *cfg
	admin.DBLogLevel = "silent"
	if cfg.DBType != "postgres" {
		admin.DBUser = "root"
		admin.DBPassword = rootPassword
	}

	db, err := database.Connect(&admin)
	if err != nil {
		return err
	}
	defer database.Close(db)

	stmt := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", name)
	if cfg.DBType == "postgres" {
		stmt = fmt.Sprintf("CREATE DATABASE %s", name)
	}
	if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	return nil
}

func imagePresent(ctx context.Context, name string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}
	for _, img := range images {
		if slices.Contains(img.RepoTags, name) {
			return true, nil
		}
	}
	return false, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
