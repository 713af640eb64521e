package services

import (
	"context"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Notifier delivers best-effort push notifications for new messages. A nil
// Notifier disables push entirely.
type Notifier interface {
	PushMessage(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}

type fcmNotifier struct {
	client *messaging.Client
	logger *zap.SugaredLogger
}

// NewFCMNotifier builds a Firebase Cloud Messaging notifier from a
// credentials file. Returns an error when the file is missing or malformed;
// callers are expected to run without push in that case.
func NewFCMNotifier(ctx context.Context, credentialsFile string, logger *zap.SugaredLogger) (Notifier, error) {
	opt := option.WithCredentialsFile(credentialsFile)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, err
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}
	return &fcmNotifier{client: client, logger: logger}, nil
}

func (n *fcmNotifier) PushMessage(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	var lastErr error
	for _, token := range tokens {
		message := &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: data,
		}
		if _, err := n.client.Send(ctx, message); err != nil {
			n.logger.Warnw("fcm send failed", "error", err)
			lastErr = err
		}
	}
	return lastErr
}
