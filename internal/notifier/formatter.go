package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"VegeNavi/internal/handler"
)

// FormatRunReport formats one handler result for Telegram.
func FormatRunReport(resp handler.Response, at time.Time, elapsed time.Duration) string {
	var b strings.Builder
	icon := "✅"
	if !resp.OK() {
		icon = "❌"
	}
	b.WriteString(fmt.Sprintf("%s <b>野菜価格 集計</b> | %s\n\n", icon, at.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("ステータス: %d\n", resp.StatusCode))
	b.WriteString(fmt.Sprintf("所要時間: %s\n", elapsed.Round(time.Millisecond)))
	b.WriteString(fmt.Sprintf("結果: %s\n", html.EscapeString(resp.Body)))
	return b.String()
}

// FormatStatus describes the last run, if any.
func FormatStatus(last *handler.Response, at time.Time) string {
	if last == nil {
		return "まだ実行されていません"
	}
	return fmt.Sprintf("前回実行: %s\nステータス: %d\n%s",
		at.Format("2006-01-02 15:04"), last.StatusCode, html.EscapeString(last.Body))
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "利用可能なコマンド:\n• /run 今すぐ集計\n• /status 前回の結果"
}
