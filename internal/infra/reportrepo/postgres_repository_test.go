//go:build integration

package reportrepo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "accessroute",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(90 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Println("cannot start container:", err)
		os.Exit(1)
	}

	host, _ := container.Host(ctx)
	port, _ := container.MappedPort(ctx, "5432/tcp")
	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/accessroute?sslmode=disable", host, port.Port())

	testPool, err = pgxpool.New(ctx, dsn)
	if err == nil {
		err = testPool.Ping(ctx)
	}
	if err == nil {
		err = EnsureSchema(ctx, testPool)
	}
	if err != nil {
		fmt.Println("postgres setup:", err)
		_ = container.Terminate(ctx)
		os.Exit(1)
	}

	code := m.Run()
	testPool.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestPostgresRepositoryContract(t *testing.T) {
	_, err := testPool.Exec(context.Background(), "TRUNCATE issue_reports")
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
	runRepositoryContract(t, NewPostgresRepository(testPool))
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	if err := EnsureSchema(context.Background(), testPool); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}
}
