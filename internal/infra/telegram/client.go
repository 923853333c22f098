// internal/infra/telegram/client.go
package telegram

import (
	"fmt"
	"io"
	"path/filepath"

	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements the Client interface using the gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends a text message to a user, group or channel chat.
func (tba *TelebotAdapter) SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error {
	if options == nil {
		options = &telebot.SendOptions{}
	}
	_, err := tba.bot.Send(telebot.ChatID(recipientChatID), text, options)
	return err
}

// SendDocument uploads a local file.
func (tba *TelebotAdapter) SendDocument(recipientChatID int64, path, caption string) error {
	doc := &telebot.Document{
		File:     telebot.FromDisk(path),
		FileName: filepath.Base(path),
		Caption:  caption,
	}
	_, err := tba.bot.Send(telebot.ChatID(recipientChatID), doc, &telebot.SendOptions{ParseMode: telebot.ModeHTML})
	return err
}

func (tba *TelebotAdapter) AnswerCallback(callbackID, text string) error {
	return tba.bot.Respond(&telebot.Callback{ID: callbackID}, &telebot.CallbackResponse{Text: text})
}

// DownloadFile reads an uploaded file fully into memory.
func (tba *TelebotAdapter) DownloadFile(fileID string) ([]byte, error) {
	rc, err := tba.bot.File(&telebot.File{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file %s: %w", fileID, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fileID, err)
	}
	return content, nil
}
