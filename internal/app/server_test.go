package app

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"testing"

	"github.com/shandysiswandi/authflow/internal/pkg/goroutine"
)

func TestApp_Stop(t *testing.T) {
	// Arrange
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{ctx: ctx, cancel: cancel, httpServer: &http.Server{}, goroutine: goroutine.NewManager(2)}

	var order []string
	consumerDone := false
	a.goroutine.Go(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		consumerDone = true
		return nil
	})

	errRedis := errors.New("redis already closed")
	for _, c := range []struct {
		name string
		err  error
	}{{"Messaging", nil}, {"Redis", errRedis}, {"Database", nil}} {
		a.closers = append(a.closers, struct {
			name string
			fn   func(context.Context) error
		}{c.name, func(context.Context) error {
			order = append(order, c.name)
			return c.err
		}})
	}

	// Act
	err := a.Stop(context.Background())

	// Assert
	if !consumerDone {
		t.Fatal("consumer still running after Stop")
	}
	if want := []string{"Messaging", "Redis", "Database"}; !slices.Equal(order, want) {
		t.Fatalf("close order = %v, want %v", order, want)
	}
	if !errors.Is(err, errRedis) {
		t.Fatalf("Stop() error = %v, want redis error", err)
	}
}
