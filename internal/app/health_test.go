package app

import (
	"context"
	"errors"
	"testing"

	"github.com/shandysiswandi/authflow/internal/pkg/goerror"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		name     string
		db       error
		cache    error
		wantErr  bool
		wantResp healthResponse
	}{
		{name: "all up", wantResp: healthResponse{Database: "up", Redis: "up"}},
		{name: "database down", db: errors.New("refused"), wantErr: true, wantResp: healthResponse{Database: "down", Redis: "up"}},
		{name: "redis down", cache: errors.New("refused"), wantErr: true, wantResp: healthResponse{Database: "up", Redis: "down"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			resp, err := checkHealth(context.Background(), stubPinger{tt.db}, stubPinger{tt.cache})

			// Assert
			if resp != tt.wantResp {
				t.Fatalf("resp = %+v, want %+v", resp, tt.wantResp)
			}
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("error = %v", err)
				}
				return
			}
			var gerr *goerror.Error
			if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeTimeout {
				t.Fatalf("error = %v, want timeout business error", err)
			}
		})
	}
}
