// services/notify.go - Hunt completion notifications via Amazon SES
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"sidequest/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"gorm.io/gorm"
)

// EmailNotifier sends completion emails through SES and records each delivery
// attempt in the notifications table. When disabled (no from-address
// configured) every send is a logged no-op.
type EmailNotifier struct {
	client    *sesv2.Client
	db        *gorm.DB
	fromEmail string
	fromName  string
	enabled   bool
}

// NewEmailNotifier creates the notifier. An empty fromEmail yields a disabled
// notifier, which is valid for local development.
func NewEmailNotifier(db *gorm.DB, awsRegion, fromEmail, fromName string) (*EmailNotifier, error) {
	if fromEmail == "" {
		log.Println("Email notifications disabled: SES_FROM_EMAIL not configured")
		return &EmailNotifier{db: db, enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email notifications enabled: from=%s, region=%s", fromEmail, awsRegion)
	return &EmailNotifier{
		client:    sesv2.NewFromConfig(cfg),
		db:        db,
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
	}, nil
}

// NotifyRunCompleted emails the player. Errors are returned for the caller to
// log; nothing here blocks or rolls back the attempt that triggered it.
func (n *EmailNotifier) NotifyRunCompleted(ctx context.Context, userID, huntID uint, summary RunSummary) error {
	var user models.User
	if err := n.db.First(&user, userID).Error; err != nil {
		return err
	}
	if user.Email == nil || *user.Email == "" {
		return nil
	}

	if !n.enabled {
		log.Printf("Skipping completion email (service disabled): user=%d hunt=%d", userID, huntID)
		return nil
	}

	subject := fmt.Sprintf("🎉 You completed %q!", summary.HuntTitle)
	duration := formatDuration(summary.TotalTimeSeconds)
	body := fmt.Sprintf("Congrats %s! You completed %q on %s in %s.",
		summary.Username, summary.HuntTitle,
		summary.CompletedAt.Format(time.RFC1123), duration)

	_, err := n.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("%s <%s>", n.fromName, n.fromEmail)),
		Destination: &types.Destination{
			ToAddresses: []string{*user.Email},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})

	n.logNotification(userID, "email", "hunt_completed", err)
	return err
}

// logNotification appends a delivery-log row. Failures here are warned and
// swallowed.
func (n *EmailNotifier) logNotification(userID uint, kind, template string, sendErr error) {
	row := models.Notification{
		UserID:         userID,
		Type:           kind,
		Template:       template,
		DeliveryStatus: "sent",
	}
	if sendErr != nil {
		row.DeliveryStatus = "failed"
		row.ErrorMessage = sendErr.Error()
	} else {
		now := time.Now().UTC()
		row.SentAt = &now
	}

	if err := n.db.Create(&row).Error; err != nil {
		log.Printf("failed to log notification: %v", err)
	}
}

func formatDuration(totalSeconds int) string {
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
