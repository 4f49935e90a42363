package delivery

import (
	"context"
	"log/slog"
)

// LogSender logs sends instead of performing them, for local mode and
// development where no chat platform is attached.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a new LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

var _ Sender = (*LogSender)(nil)

func (s *LogSender) SendPhoto(ctx context.Context, userID int64, assetRef, caption string) error {
	s.logger.Info("would send photo", "user_id", userID, "asset", assetRef)
	return nil
}

func (s *LogSender) SendVideo(ctx context.Context, userID int64, assetRef, caption string) error {
	s.logger.Info("would send video", "user_id", userID, "asset", assetRef)
	return nil
}

func (s *LogSender) SendDocument(ctx context.Context, userID int64, assetRef, caption string) error {
	s.logger.Info("would send document", "user_id", userID, "asset", assetRef)
	return nil
}
