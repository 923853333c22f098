package app

import (
	"fmt"

	"gopkg.in/telebot.v3"
)

const buttonsPerRow = 3

// Callback payloads are space separated tokens; the first selects the handler.
const (
	callbackBroadcastChat   = "broadcast_chat"
	callbackBroadcastAll    = "broadcast_all"
	callbackBroadcastCancel = "broadcast_cancel"
	callbackUserStatistic   = "user"
	callbackChatStatistic   = "chat"
)

// Link is a URL button attached to scheduled posts.
type Link struct {
	Title string
	URL   string
}

func choiceKeyboard(choices ...string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	rows := make([]telebot.Row, 0, len(choices))
	for _, c := range choices {
		rows = append(rows, markup.Row(markup.Text(c)))
	}
	markup.Reply(rows...)
	return markup
}

func removeKeyboard() *telebot.ReplyMarkup {
	return &telebot.ReplyMarkup{RemoveKeyboard: true}
}

// dataButton builds an inline button carrying a space separated payload.
func dataButton(text, action string, arg int64) telebot.InlineButton {
	return telebot.InlineButton{Text: text, Data: fmt.Sprintf("%s %d", action, arg)}
}

// inlineRows lays buttons out perRow per row, keeping their order.
func inlineRows(buttons []telebot.InlineButton, perRow int) [][]telebot.InlineButton {
	if len(buttons) == 0 || perRow <= 0 {
		return nil
	}
	rows := make([][]telebot.InlineButton, 0, (len(buttons)+perRow-1)/perRow)
	for start := 0; start < len(buttons); start += perRow {
		end := start + perRow
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, buttons[start:end])
	}
	return rows
}

func linksKeyboard(links []Link) *telebot.ReplyMarkup {
	if len(links) == 0 {
		return nil
	}
	rows := make([][]telebot.InlineButton, 0, len(links))
	for _, l := range links {
		rows = append(rows, []telebot.InlineButton{{Text: l.Title, URL: l.URL}})
	}
	return &telebot.ReplyMarkup{InlineKeyboard: rows}
}
