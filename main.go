package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iakhil/parlance/game"
	"github.com/iakhil/parlance/leaderboard"
	"github.com/iakhil/parlance/words"
)

const shutdownTimeout = 10 * time.Second

func main() {
	config := MustLoadConfig()
	SetLogLevel(config.LogLevel)

	pool, err := words.Load(config.WordsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load word pool")
	}
	board, err := leaderboard.Open(config.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not open leaderboard database")
	}
	defer board.Close()

	rooms := game.NewRegistry(pool,
		game.WithCleanupGrace(config.CleanupGrace),
		game.WithCleanupHook(LogRoomCleanedUp),
	)
	hub := NewHub()
	gateway := NewGateway(rooms, hub, NewReconnectJWT(config.JwtSecret))
	handler := NewHTTPServer(&HTTPHandler{Gateway: gateway, Hub: hub, Rooms: rooms, Board: board}, config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go gateway.RunSweeper(ctx, config.RoomTTL, config.SweepInterval)

	server := &http.Server{Addr: ":" + config.Port, Handler: handler}
	go func() {
		LogStartedServer(config.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server stopped")
		}
	}()

	<-ctx.Done()
	LogShuttingDown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		LogShutdownError(err)
	}
	hub.CloseAll()
}
