package notify

import (
	"context"

	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
)

// LogNotifier stands in for the email/SMS delivery integration: codes are
// written to the log instead of being sent out.
type LogNotifier struct {
	log logger.Log
}

func NewLogNotifier(l logger.Log) *LogNotifier {
	return &LogNotifier{log: l}
}

func (n *LogNotifier) SendCode(ctx context.Context, channel, destination, code string) error {
	n.log.Info("otp code issued", "channel", channel, "destination", destination, "code", code)
	return nil
}
