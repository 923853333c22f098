package telegram

import (
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

var userCommands = []telebot.Command{
	{Text: "start", Description: "Запуск бота"},
	{Text: "help", Description: "Помощь"},
}

var operatorCommands = []telebot.Command{
	{Text: "start", Description: "Запуск бота"},
	{Text: "help", Description: "Помощь"},
	{Text: "sendmessage", Description: "Рассылка сообщения"},
	{Text: "getstatisticbychatid", Description: "Статистика по чату"},
	{Text: "getstatisticbyuserid", Description: "Статистика по пользователю"},
	{Text: "setweeklymessage", Description: "Еженедельное сообщение"},
	{Text: "setdailymessage", Description: "Ежедневное сообщение"},
}

// CommandMenu is the part of the bot API that publishes command lists.
type CommandMenu interface {
	DeleteCommands(opts ...interface{}) error
	SetCommands(opts ...interface{}) error
}

// PublishCommandMenus sets the user menu for private chats and the operator
// menu for each operator chat. Errors are logged, startup continues.
func PublishCommandMenus(menu CommandMenu, operatorIDs []int64, baseLogger *logrus.Entry) {
	logCtx := baseLogger.WithField("handler_group", "command_menu")

	if err := menu.DeleteCommands(); err != nil {
		logCtx.WithError(err).Warn("Failed to clear default commands")
	}
	if err := menu.SetCommands(userCommands, telebot.CommandScope{Type: telebot.CommandScopeAllPrivateChats}); err != nil {
		logCtx.WithError(err).Error("Failed to set user commands")
	}
	for _, id := range operatorIDs {
		scope := telebot.CommandScope{Type: telebot.CommandScopeChat, ChatID: id}
		if err := menu.SetCommands(operatorCommands, scope); err != nil {
			logCtx.WithError(err).WithField("operator_id", id).Error("Failed to set operator commands")
		}
	}
	logCtx.WithField("operators", len(operatorIDs)).Info("Command menus published")
}
