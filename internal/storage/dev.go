package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	PostgresImage = "postgres:16.4"
	containerName = "respond-db"
)

// StartPostgresContainer starts a PostgreSQL container with persistent storage
// and waits until it answers a ping.
func StartPostgresContainer(ctx context.Context, c DatabaseConfig) error {
	if checkPostgresReady(ctx, c, 0) == nil {
		return nil
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return fmt.Errorf("failed to create Docker client: %w", err)
	}
	defer cli.Close()

	pull, err := cli.ImagePull(ctx, PostgresImage, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull Docker image: %w", err)
	}
	_, _ = io.Copy(io.Discard, pull)
	_ = pull.Close()

	containerConfig := &container.Config{
		Image: PostgresImage,
		Env: []string{
			"POSTGRES_USER=" + c.DatabaseUser,
			"POSTGRES_PASSWORD=" + c.DatabasePass,
			"POSTGRES_DB=" + c.DatabaseName,
		},
		ExposedPorts: nat.PortSet{
			"5432/tcp": struct{}{},
		},
	}

	hostConfig := &container.HostConfig{
		PortBindings: nat.PortMap{
			"5432/tcp": []nat.PortBinding{
				{
					HostIP:   "127.0.0.1",
					HostPort: fmt.Sprint(c.DatabasePort),
				},
			},
		},
		Mounts: []mount.Mount{
			{
				Type:   mount.TypeVolume,
				Source: "respond_postgres_data",
				Target: "/var/lib/postgresql/data",
			},
		},
	}

	// A leftover container from an earlier run is reused.
	id := containerName
	resp, err := cli.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, containerName)
	switch {
	case err == nil:
		id = resp.ID
	case !cerrdefs.IsConflict(err):
		return fmt.Errorf("failed to create container: %w", err)
	}

	if err := cli.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}

	if err := checkPostgresReady(ctx, c, 10); err != nil {
		return fmt.Errorf("PostgreSQL readiness check failed: %w", err)
	}

	slog.InfoContext(ctx, "PostgreSQL container is ready", "container", containerName, "image", PostgresImage)
	return nil
}

// checkPostgresReady pings PostgreSQL, retrying with exponential backoff.
func checkPostgresReady(ctx context.Context, c DatabaseConfig, retries uint64) error {
	pool, err := pgxpool.New(ctx, c.URL())
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 100 * time.Millisecond
	exp.MaxElapsedTime = 0

	notify := func(err error, wait time.Duration) {
		slog.InfoContext(ctx, "PostgreSQL is not ready, retrying", "backoff", wait, "error", err)
	}

	return backoff.RetryNotify(func() error {
		return pool.Ping(ctx)
	}, backoff.WithContext(backoff.WithMaxRetries(exp, retries), ctx), notify)
}
