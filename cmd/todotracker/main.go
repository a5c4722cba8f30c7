package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"todo-tracker/internal/config"
	"todo-tracker/internal/handlers"
	"todo-tracker/internal/repository"
	"todo-tracker/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL, cfg.DBDebug)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("db: %v", err)
	}

	categorySvc := service.NewCategoryService(repository.NewCategoryRepository(db))
	todoSvc := service.NewTodoService(repository.NewTodoRepository(db))

	e := handlers.NewRouter(categorySvc, todoSvc, func(ctx context.Context) error {
		return repository.Ping(ctx, db)
	})

	go func() {
		log.Printf("[info] server listening on %s", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(context.Background(), cfg.ShutdownTimeout, shutdownOps(e, sqlDB))

	exitCode := <-wait
	log.Printf("[info] exited with code %d", exitCode)
	os.Exit(exitCode)
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// shutdownOps drains the server before closing the store. The library runs
// each operation in its own goroutine, so both steps share one operation.
func shutdownOps(srv shutdowner, db io.Closer) map[string]gfshutdown.Operation {
	return map[string]gfshutdown.Operation{
		"http": func(ctx context.Context) error {
			log.Println("[info] shutting down http server")
			shutdownErr := srv.Shutdown(ctx)
			if err := db.Close(); err != nil {
				return errors.Join(shutdownErr, fmt.Errorf("close db: %w", err))
			}
			return shutdownErr
		},
	}
}
