// Package logger expone un logger Zap único para todo el proceso, con scoping
// por contexto.
//
// Inicialización (una vez, en el comando raíz):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
// En services y controllers se usa el logger del contexto, que el middleware
// de logging ya enriqueció con request_id:
//
//	log := logger.From(ctx).With(logger.Op("SendWelcome"))
//	log.Info("email sent", logger.Template("welcome_email"))
package logger
