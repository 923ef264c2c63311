package app

import (
	"context"
	"time"

	"github.com/shandysiswandi/authflow/internal/pkg/goerror"
	"github.com/shandysiswandi/authflow/internal/pkg/router"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type redisPinger struct {
	ping func(ctx context.Context) error
}

func (r redisPinger) Ping(ctx context.Context) error { return r.ping(ctx) }

type healthResponse struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

func (healthResponse) Message() string { return "OK" }

// checkHealth pings every dependency. Any failure is reported as 504 with
// the per dependency status in data.
func checkHealth(ctx context.Context, db, cache pinger) (healthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	resp := healthResponse{Database: "up", Redis: "up"}
	var failed error
	if err := db.Ping(ctx); err != nil {
		resp.Database = "down"
		failed = err
	}
	if err := cache.Ping(ctx); err != nil {
		resp.Redis = "down"
		failed = err
	}

	if failed != nil {
		return resp, goerror.NewBusinessData("Service unhealthy", goerror.CodeTimeout, resp)
	}
	return resp, nil
}

func (a *App) health(r *router.Request) (any, error) {
	cache := redisPinger{ping: func(ctx context.Context) error { return a.cacheConn.Ping(ctx).Err() }}
	resp, err := checkHealth(r.Context(), a.dbConn, cache)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
