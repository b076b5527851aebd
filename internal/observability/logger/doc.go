// Package logger expone el logger zap compartido por taskhub.
//
// Un único logger de proceso se inicializa con Init() desde cmd/taskhub y
// cmd/taskhubctl. Cada request HTTP recibe una copia con request_id, method
// y path que los middlewares inyectan en el contexto; services y stores lo
// recuperan con From(ctx).
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "taskhub"})
//	defer logger.Sync()
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Register"))
//	log.Info("user created", logger.UserID(id))
//
// En producción ("prod"/"production") el encoder es JSON, en cualquier otro
// entorno consola con colores.
package logger
