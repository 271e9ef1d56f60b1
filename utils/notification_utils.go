package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	"firebase.google.com/go/v4/messaging"

	"github.com/pranavxdevops/membership-backend/config"
)

// SendFCMNotification pushes a console notification to a single admin device.
func SendFCMNotification(token, title, message string, data map[string]string) error {
	if token == "" {
		return fmt.Errorf("admin has no FCM token")
	}

	if config.FirebaseApp == nil {
		return fmt.Errorf("firebase app not initialized")
	}

	ctx := context.Background()
	client, err := config.FirebaseApp.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging client: %w", err)
	}

	notificationData := map[string]string{
		"timestamp": time.Now().Format(time.RFC3339),
	}
	for key, value := range data {
		notificationData[key] = value
	}

	fcmMessage := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  message,
		},
		Data: notificationData,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "membership_admin_channel",
			},
		},
	}

	_, err = client.Send(ctx, fcmMessage)
	if err != nil {
		return fmt.Errorf("failed to send FCM notification: %w", err)
	}
	return nil
}

// NotifyAdmins pushes the same message to every registered admin device and
// logs per-device failures. Best-effort only.
func NotifyAdmins(tokens []string, title, message string, data map[string]string) {
	for _, token := range tokens {
		if err := SendFCMNotification(token, title, message, data); err != nil {
			log.Printf("Failed to push admin notification: %v", err)
		}
	}
}
