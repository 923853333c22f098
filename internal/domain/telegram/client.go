package telegram

import "gopkg.in/telebot.v3"

// Client defines an interface for talking to users via a Telegram bot.
// This helps in decoupling the application logic from the specific bot library.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
	SendDocument(recipientChatID int64, path, caption string) error
	AnswerCallback(callbackID, text string) error
	DownloadFile(fileID string) ([]byte, error)
}
