package config

import "time"

const (
	// Rewards
	ResolvedRewardPoints = 10

	// Notifications
	NotificationListLimit = 50

	// Tokens
	TokenTTL    = 72 * time.Hour
	TokenIssuer = "cleancity-service"

	// Blob keys
	EvidenceKeyPrefix  = "actions/"
	ComplaintKeyPrefix = "complaints/"
)
