package main

import (
	"context"
	"fmt"

	"github.com/gobarber/gobarber/internal/client/api"
	"github.com/gobarber/gobarber/internal/client/authsession"
	"github.com/gobarber/gobarber/internal/client/storage"
	"github.com/gobarber/gobarber/internal/config"
	"github.com/gobarber/gobarber/internal/database"
)

// clientSession bundles what every command needs: the API client and the
// session manager restored from storage.
type clientSession struct {
	API     *api.Client
	Manager *authsession.Manager
	close   func() error
}

func (s *clientSession) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// openSession builds the storage backend named by the config, then the API
// client and session manager on top of it.
func openSession(cmdCtx *commandContext) (*clientSession, error) {
	cfg := cmdCtx.Config

	store, closeStore, err := openStore(cmdCtx.Ctx, cfg)
	if err != nil {
		return nil, err
	}

	client, err := api.New(cfg.APIURL, api.WithTimeout(cfg.Timeout))
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	manager, err := authsession.New(cmdCtx.Ctx, store, client,
		authsession.WithNamespace(cfg.Namespace),
		authsession.WithLogger(cmdCtx.Logger),
	)
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	return &clientSession{API: client, Manager: manager, close: closeStore}, nil
}

func openStore(ctx context.Context, cfg *config.ClientConfig) (storage.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage {
	case config.StorageMemory:
		return storage.NewMemory(), noop, nil
	case config.StorageRedis:
		rdb, err := database.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return storage.NewRedis(rdb, ""), rdb.Close, nil
	default:
		return storage.NewFile(cfg.StateFile), noop, nil
	}
}
