package services

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramService pushes best-effort alerts to a staff chat. With no token
// configured it degrades to a no-op, so callers never need a nil check.
type TelegramService struct {
	bot         *tgbotapi.BotAPI
	staffChatID int64
}

func NewTelegramService(botToken string, staffChatID int64) *TelegramService {
	s := &TelegramService{staffChatID: staffChatID}
	if botToken == "" {
		return s
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		log.Printf("[tg][init] bot unavailable: %v", err)
		return s
	}
	s.bot = bot
	return s
}

func (s *TelegramService) NotifyStaff(text string) error {
	if s == nil || s.bot == nil || s.staffChatID == 0 {
		return nil
	}
	msg := tgbotapi.NewMessage(s.staffChatID, text)
	if _, err := s.bot.Send(msg); err != nil {
		log.Printf("[tg][send][err] %v", err)
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
