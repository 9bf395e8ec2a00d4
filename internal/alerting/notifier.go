package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"aedash/internal/model"
)

// maxListedRecords bounds how many malformed intervals are spelled out in one message.
const maxListedRecords = 5

// Notification 封装一次计算的结果上下文。
type Notification struct {
	PassID        uuid.UUID
	Tick          time.Time
	Window        model.TimeWindow
	Err           error
	Summary       *model.Summary
	Malformed     []model.ReconciledRecord
	AdditionalMsg string
}

// Failed reports whether the pass aborted.
func (n Notification) Failed() bool {
	return n.Err != nil
}

// Notifier 定义告警输送接口。
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier 通过 Telegram Bot API 推送消息。
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier 构造 Telegram 告警器。
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify 调用 sendMessage API 推送文本。
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    renderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram 响应码异常: %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram 返回 ok=false")
		}
	}

	n.logger.Info().Str("pass_id", note.PassID.String()).
		Bool("failed", note.Failed()).
		Int("malformed", len(note.Malformed)).
		Msg("告警已发送 (Telegram)")
	return nil
}

func renderMessage(note Notification) string {
	builder := strings.Builder{}
	if note.Failed() {
		builder.WriteString("[AE/Spot] pass failed\n")
	} else {
		builder.WriteString("[AE/Spot] malformed AE values\n")
	}
	builder.WriteString(fmt.Sprintf("Pass: %s\n", note.PassID))
	if !note.Tick.IsZero() {
		builder.WriteString(fmt.Sprintf("Tick: %s UTC\n", note.Tick.UTC().Format(time.RFC3339)))
	}
	if !note.Window.Start.IsZero() {
		builder.WriteString(fmt.Sprintf("Window: %s .. %s (%d ms .. %d ms)\n",
			note.Window.StartText(), note.Window.EndText(), note.Window.StartMillis(), note.Window.EndMillis()))
	}
	if note.Err != nil {
		builder.WriteString(fmt.Sprintf("Error: %s\n", note.Err))
	}
	if s := note.Summary; s != nil {
		builder.WriteString(fmt.Sprintf("Intervals: %d valued, %d missing, %d malformed\n", s.Valued, s.Missing, s.Malformed))
		if s.LatestMA.Valid {
			builder.WriteString(fmt.Sprintf("Latest 1h MA: %s EUR/MWh\n", s.LatestMA.Decimal.StringFixed(2)))
		}
	}
	for i, rec := range note.Malformed {
		if i == maxListedRecords {
			builder.WriteString(fmt.Sprintf("... and %d more\n", len(note.Malformed)-maxListedRecords))
			break
		}
		builder.WriteString(fmt.Sprintf("- %s %s: %v\n", rec.IntervalStart.Format(time.RFC3339), rec.Source, rec.Err))
	}
	if note.AdditionalMsg != "" {
		builder.WriteString(note.AdditionalMsg)
	}
	return builder.String()
}

var _ Notifier = (*TelegramNotifier)(nil)
