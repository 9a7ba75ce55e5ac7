package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/nsqio/go-nsq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"jobportal/internal/config"
)

type IntegrationSuite struct {
	T   *testing.T
	DB  *sql.DB
	NSQ *nsq.Producer

	// NSQDAddr is the host:port of the nsqd TCP listener, set when WithNSQ
	// was requested.
	NSQDAddr string

	withNSQ bool
	connStr string

	pgContainer  *postgres.PostgresContainer
	nsqContainer testcontainers.Container
}

func NewIntegrationSuite(t *testing.T) *IntegrationSuite {
	return &IntegrationSuite{T: t}
}

// WithNSQ also starts an nsqd container during Setup.
func (s *IntegrationSuite) WithNSQ() *IntegrationSuite {
	s.withNSQ = true
	return s
}

// MigrationsPath is the file:// URL of the repository migrations.
func MigrationsPath() string {
	_, b, _, _ := runtime.Caller(0)
	basepath := filepath.Dir(b)
	return fmt.Sprintf("file://%s/../../migrations", basepath)
}

func (s *IntegrationSuite) Setup() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("jobportal_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(s.T, err)
	s.pgContainer = pgContainer

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(s.T, err)
	s.connStr = connStr

	s.DB, err = sql.Open("postgres", connStr)
	require.NoError(s.T, err)

	m, err := migrate.New(MigrationsPath(), connStr)
	require.NoError(s.T, err)
	require.NoError(s.T, m.Up())

	if !s.withNSQ {
		return
	}

	nsqReq := testcontainers.ContainerRequest{
		Image:        "nsqio/nsq:v1.3.0",
		ExposedPorts: []string{"4150/tcp", "4151/tcp"},
		Cmd:          []string{"/nsqd", "--broadcast-address=localhost"},
		WaitingFor:   wait.ForLog("TCP: listening on").WithStartupTimeout(60 * time.Second),
	}
	nsqC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: nsqReq,
		Started:          true,
	})
	require.NoError(s.T, err)
	s.nsqContainer = nsqC

	nsqHost, err := nsqC.Host(ctx)
	require.NoError(s.T, err)
	nsqPort, err := nsqC.MappedPort(ctx, "4150")
	require.NoError(s.T, err)

	s.NSQDAddr = fmt.Sprintf("%s:%s", nsqHost, nsqPort.Port())
	s.NSQ, err = nsq.NewProducer(s.NSQDAddr, nsq.NewConfig())
	require.NoError(s.T, err)
}

// GetAppConfig returns an application config pointing at the suite's
// containers, with a placeholder completion key.
func (s *IntegrationSuite) GetAppConfig() *config.Config {
	return &config.Config{
		DatabaseURL:                s.connStr,
		MigrationPath:              MigrationsPath(),
		NSQDHost:                   s.NSQDAddr,
		LLMProvider:                config.ProviderOpenRouter,
		OpenRouterAPIKey:           "test-key",
		OpenRouterModel:            "openai/gpt-3.5-turbo",
		AppTitle:                   "Job Portal",
		ServerPort:                 5000,
		AllowedOrigins:             []string{"http://localhost:3000"},
		MaxBodySizeMB:              50,
		AuditLogPath:               filepath.Join(s.T.TempDir(), "audit.log"),
		BootstrapRetryAttempts:     5,
		BootstrapRetryDelaySeconds: 1,
	}
}

func (s *IntegrationSuite) Teardown() {
	ctx := context.Background()
	if s.NSQ != nil {
		s.NSQ.Stop()
	}
	if s.DB != nil {
		s.DB.Close()
	}
	if s.pgContainer != nil {
		s.pgContainer.Terminate(ctx)
	}
	if s.nsqContainer != nil {
		s.nsqContainer.Terminate(ctx)
	}
}
