package middleware

import (
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Logging creates middleware that logs every incoming update and its
// handling time
func Logging(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()

			kind := "message"
			if c.Callback() != nil {
				kind = "callback"
			}

			err := next(c)

			fields := []zap.Field{
				zap.String("kind", kind),
				zap.Duration("took", time.Since(start)),
			}
			if sender := c.Sender(); sender != nil {
				fields = append(fields, zap.Int64("telegram_id", sender.ID))
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
				logger.Error("Update failed", fields...)
				return err
			}

			logger.Debug("Update handled", fields...)
			return nil
		}
	}
}

// Recover creates middleware that turns a handler panic into a logged error
// instead of killing the poller goroutine
func Recover(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Handler panic", zap.Any("panic", r))
					err = c.Send("⚠️ Algo salió mal. Escribe /start para intentar de nuevo.")
				}
			}()
			return next(c)
		}
	}
}
