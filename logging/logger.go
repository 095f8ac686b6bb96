// Пакет logging задает структурированный логгер сервера.
// Реализация по умолчанию обертывает log/slog.
package logging

import "context"

// Logger - структурированный логгер с контекстом.
//
// Аргументы args - пары ключ-значение, например:
//
//	log.Info(ctx, "locomotive created", "id", id, "organization", orgID)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}
