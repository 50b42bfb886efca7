// Package shutdown runs cleanup hooks when a long-running command is
// interrupted.
//
//	h := shutdown.NewHandler(5 * time.Second)
//	ctx, stop := h.NotifyContext(context.Background())
//	defer stop()
//	h.OnShutdown("realtime", func(context.Context) error { ch.Disconnect(); return nil })
//	<-ctx.Done()
//	err := h.Shutdown()
package shutdown
