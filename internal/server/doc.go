// Package server provides the short-lived HTTP server used to complete the browser OAuth flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] implements it on
// [http.ServeMux] with method patterns. [Middleware] added first wraps outermost; [Logging] and
// [Recover] are provided.
//
// # OAuth Callback Handler
//
// [CallbackHandler] accepts the authorization code redirect. It checks the state parameter and passes
// the code on through [CallbackHandler.Result]. It does not talk to the token endpoint: the caller
// hands the code to auth.NewSession, which performs the one synchronous exchange.
//
// Only the first callback is processed; later requests get a 400.
//
// # Usage
//
//	handler := server.NewCallbackHandler("/callback", state)
//	router := server.NewBasicRouter()
//	router.Use(server.Recover(logger), server.Logging(logger))
//	router.Handler(handler)
//	srv, err := server.Start(cfg.Server.Addr(), router, logger)
//	...
//	code, err := handler.Wait(ctx)
//	srv.Shutdown(shutdownCtx)
package server
