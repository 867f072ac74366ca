package middleware

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/jurisgraph/jurisgraph/pkg/pipeline"
)

// App bundles the shared collaborators handlers need.
type App struct {
	DBConn   *pgxpool.Pool
	Queue    *amqp091.Channel
	Pipeline *pipeline.Pipeline
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(
	db *pgxpool.Pool,
	queue *amqp091.Channel,
	pipe *pipeline.Pipeline,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			app := &App{
				DBConn:   db,
				Queue:    queue,
				Pipeline: pipe,
			}
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
