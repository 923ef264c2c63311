package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shandysiswandi/authflow/internal/app"
)

// @title           Authflow API
// @version         1.0
// @description     Authflow provides registration, email verification, OTP login, token refresh and password reset APIs.
// @server          http://localhost:8080
// @securityDefinitions.apikey  BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT.
func main() {
	application := app.New()    // Initialize the application
	wait := application.Start() // Start the application and wait for the termination signal
	<-wait                      // Wait for the application to receive a termination signal
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err := application.Stop(ctx) // Stop the application gracefully
	cancel()
	if err != nil {
		slog.Error("shutdown finished with errors", "error", err)
		os.Exit(1)
	}
}
