// Package httpserver runs an http.Handler with configured timeouts and a
// graceful shutdown bound to a context, and provides liveness and readiness
// handlers.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Run returns errors wrapped with ErrStart or ErrShutdown; check them with
// errors.Is.
package httpserver
