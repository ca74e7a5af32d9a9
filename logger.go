package main

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

// SetLogLevel applies a zerolog level name. Unknown names leave the level at info.
func SetLogLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

type ConnLogger struct {
	zerolog zerolog.Logger
}

func GetConnLogger(ip string, connID string) ConnLogger {
	return ConnLogger{log.With().Str("ip", ip).Str("connection-id", connID).Logger()}
}

func (l ConnLogger) Connected() {
	l.zerolog.Info().Msg("Connected")
}

func (l ConnLogger) Disconnected() {
	l.zerolog.Info().Msg("Disconnected")
}

func (l ConnLogger) CreatedRoom(roomCode string) {
	l.zerolog.Info().Str("room-code", roomCode).Msg("Created room")
}

func (l ConnLogger) JoinedRoom(roomCode string) {
	l.zerolog.Info().Str("room-code", roomCode).Msg("Joined room")
}

func (l ConnLogger) RejoinedRoom(roomCode string) {
	l.zerolog.Info().Str("room-code", roomCode).Msg("Rejoined room")
}

func (l ConnLogger) GameStarted(roomCode string) {
	l.zerolog.Info().Str("room-code", roomCode).Msg("Game started")
}

func (l ConnLogger) GameEnded(roomCode string, winner string, tie bool) {
	l.zerolog.Info().Str("room-code", roomCode).Str("winner", winner).Bool("tie", tie).Msg("Game ended")
}

func (l ConnLogger) RemovingRoom(roomCode string) {
	l.zerolog.Info().Str("room-code", roomCode).Msg("Removing room")
}

func (l ConnLogger) LeftRoom(roomCode string) {
	l.zerolog.Info().Str("room-code", roomCode).Msg("Left room")
}

func (l ConnLogger) Rejected(event string, err error) {
	l.zerolog.Debug().Err(err).Str("event", event).Msg("Rejected message")
}

func (l ConnLogger) RejoinKeyFailed(err error) {
	l.zerolog.Error().Err(err).Msg("Could not sign rejoin key")
}

func LogStartedServer(port string) {
	log.Info().Msgf("Starting server on port %v", port)
}

func LogErrorWhileUpgradingHTTP(err error) {
	log.Error().Err(err).Msg("Error while upgrading HTTP")
}

func LogRoomCleanedUp(roomCode string) {
	log.Info().Str("room-code", roomCode).Msg("Cleaned up finished room")
}

func LogRoomsExpired(count int) {
	log.Info().Int("count", count).Msg("Expired idle rooms")
}

func LogDroppedMessage(connID string, err error) {
	log.Warn().Err(err).Str("connection-id", connID).Msg("Dropped outbound message")
}

func LogDatabaseError(err error) {
	log.Error().Err(err).Msg("Leaderboard query failed")
}

func LogShuttingDown() {
	log.Info().Msg("Shutting down")
}

func LogShutdownError(err error) {
	log.Error().Err(err).Msg("Error while shutting down HTTP server")
}
