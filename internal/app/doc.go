// Package app wires the reqcheck server together: OpenTelemetry providers,
// business metrics, the access gate and session store, the report and health
// services, the chi router with its middleware chain, and the HTTP server.
//
// # Usage
//
//	application, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	return application.Run(ctx)
//
// # Graceful Shutdown
//
// Run returns once ctx is cancelled and the server has drained active
// requests within Server.ShutdownTimeout. Telemetry providers are flushed
// last. The package never calls os.Exit.
package app
