package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/fincontrol/internal/core/domain"
	portssvc "github.com/SscSPs/fincontrol/internal/core/ports/services"
	"github.com/SscSPs/fincontrol/internal/middleware"
	"github.com/go-redis/redis/v8"
)

const publishTimeout = 2 * time.Second

// ChannelFor returns the pub/sub channel carrying a tenant's approval inbox changes.
func ChannelFor(tenantID string) string {
	return fmt.Sprintf("fincontrol:%s:approvals", tenantID)
}

// Message is published on every inbox change. The payload of the command is not included.
type Message struct {
	PendingID      string               `json:"pendingID"`
	Status         domain.PendingStatus `json:"status"`
	Operation      string               `json:"operation"`
	PermissionCode string               `json:"permissionCode"`
	Maker          string               `json:"maker"`
	Checker        string               `json:"checker,omitempty"`
	OfficeID       string               `json:"officeID,omitempty"`
	SubmittedAt    time.Time            `json:"submittedAt"`
	DecidedAt      *time.Time           `json:"decidedAt,omitempty"`
}

func newMessage(cmd domain.PendingCommand) Message {
	return Message{
		PendingID:      cmd.PendingID,
		Status:         cmd.Status,
		Operation:      cmd.Operation,
		PermissionCode: cmd.PermissionCode,
		Maker:          cmd.Maker,
		Checker:        cmd.Checker,
		OfficeID:       cmd.OfficeID,
		SubmittedAt:    cmd.SubmittedAt,
		DecidedAt:      cmd.DecidedAt,
	}
}

// publisher is the part of *redis.Client the notifier needs.
type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisNotifier publishes approval inbox changes to Redis pub/sub.
type RedisNotifier struct {
	client publisher
}

var _ portssvc.ApprovalNotifier = (*RedisNotifier)(nil)

// NewRedisNotifier connects to redisURL and verifies the connection.
func NewRedisNotifier(ctx context.Context, redisURL string) (*RedisNotifier, func() error, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisNotifier{client: client}, client.Close, nil
}

// NotifyPendingCommand publishes cmd. Failures are logged and never reach the caller.
func (n *RedisNotifier) NotifyPendingCommand(ctx context.Context, tenantID string, cmd domain.PendingCommand) {
	logger := middleware.GetLoggerFromCtx(ctx).With(
		slog.String("pending_id", cmd.PendingID),
		slog.String("channel", ChannelFor(tenantID)),
	)

	body, err := json.Marshal(newMessage(cmd))
	if err != nil {
		logger.Error("Failed to encode approval notification", slog.String("error", err.Error()))
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := n.client.Publish(pubCtx, ChannelFor(tenantID), body).Err(); err != nil {
		logger.Warn("Failed to publish approval notification", slog.String("error", err.Error()))
		return
	}
	logger.Debug("Published approval notification", slog.String("status", string(cmd.Status)))
}

// LogNotifier only logs inbox changes. It is used when no Redis URL is configured.
type LogNotifier struct{}

var _ portssvc.ApprovalNotifier = LogNotifier{}

// NotifyPendingCommand logs cmd at debug level.
func (LogNotifier) NotifyPendingCommand(ctx context.Context, tenantID string, cmd domain.PendingCommand) {
	middleware.GetLoggerFromCtx(ctx).Debug("Approval inbox changed",
		slog.String("tenant_id", tenantID),
		slog.String("pending_id", cmd.PendingID),
		slog.String("status", string(cmd.Status)))
}
