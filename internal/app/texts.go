package app

// Dialog choices. The daily dialog historically uses the shorter "change" label.
const (
	choiceKeepAsIs          = "Оставить как есть"
	choiceChangeWeeklyText  = "Изменить сообщение"
	choiceChangeDailyText   = "Изменить"
	textNotSet              = "Не установлено"
	textChooseAction        = "Выберите действие:"
	textCurrentWeeklyHeader = "Текущее еженедельное сообщение:"
	textCurrentDailyHeader  = "Текущее ежедневное сообщение:"
	textWeeklyKept          = "✅ Еженедельное сообщение осталось без изменений"
	textDailyKept           = "✅ Ежедневное сообщение осталось без изменений"
	textEnterNewText        = "✏️ Введите новый текст сообщения (максимум 4096 символов):"
	textWeeklyEmpty         = "Сообщение не может быть пустым. Введите новое еженедельное сообщение:"
	textDailyEmpty          = "Сообщение не может быть пустым. Введите новое ежедневное сообщение:"
	textWeeklyUpdated       = "Еженедельное сообщение успешно обновлено."
	textDailyUpdated        = "Ежедневное сообщение успешно обновлено."
	textUnknownAction       = "❌ Неизвестное действие. Пожалуйста, выберите из предложенных вариантов."
	textSaveFailed          = "Не удалось сохранить сообщение. Попробуйте ещё раз."
	textWeeklyTextEmpty     = "Текст еженедельного сообщения не может быть пустым."
	textWeeklySet           = "Еженедельное сообщение установлено!"
)

// Broadcast session.
const (
	textChooseBroadcastChat   = "📢 Выберите чат для рассылки:"
	buttonBroadcastAll        = "Отправить всем подписчикам бота"
	buttonBroadcastCancel     = "❌ Отмена"
	textChatSelected          = "✅ Выбран чат: %s\n\n📝 Введите текст сообщения для рассылки:"
	textAllSelected           = "✅ Выбраны все подписчики\n\n📝 Введите текст сообщения для рассылки:"
	textBroadcastCancelled    = "❌ Рассылка отменена"
	textSessionNotFound       = "❌ Сессия рассылки не найдена. Начните заново с /sendmessage"
	textChatNotFound          = "❌ Чат не найден. Начните заново с /sendmessage"
	textSessionStateMismatch  = "❌ Рассылка уже выполняется или чат ещё не выбран. Начните заново с /sendmessage"
	textBroadcastEmpty        = "Текст рассылки не может быть пустым. Введите текст сообщения:"
	textBroadcastStartingChat = "🚀 Начинаем рассылку в чат %s...\nПолучателей: %d"
	textBroadcastStartingAll  = "🚀 Начинаем рассылку всем подписчикам...\nПолучателей: %d"
	textBroadcastDone         = "📊 Рассылка завершена!\n\n✅ Успешно: %d\n❌ Ошибок: %d\n"
	textBroadcastDoneChat     = "📊 Рассылка завершена!\n\n✅ Успешно: %d\n❌ Ошибок: %d\n💬 Чат: %s"
	textBroadcastFailed       = "❌ Произошла ошибка при рассылке"
	textQuickBroadcastDone    = "Рассылка завершена. Успешно отправлено: %d из %d пользователей."
)

// Commands, help and documents.
const (
	textHelp = "С помощью этого бота вы можете загрузить свои предложения о продаже контейнеров для наших администраторов. " +
		"Для этого отправьте Excel документ, заполненный по шаблону, в бота."
	textOperatorHelp = "Команды администратора:\n\n" +
		"/sendmessage - интерактивная рассылка\n" +
		"/broadcast <текст> - рассылка всем подписчикам\n" +
		"/getstatisticbychatid - статистика по чату\n" +
		"/getstatisticbyuserid - статистика по пользователю\n" +
		"/setweeklymessage - еженедельное сообщение подписчикам\n" +
		"/setdailymessage - ежедневное сообщение для группы"
	textGuideUnavailable = "ℹ️ Подробная инструкция временно недоступна. Обратитесь к администратору для получения руководства."
	captionExampleFile   = "📎 Образец предложений о продаже контейнеров"
	textRegistered       = "Привет! Вы подписаны на рассылку бота. Используйте /help, чтобы узнать, как отправить предложение."
	textSheetsWritten    = "Данные записаны в Google Sheets"
	textUnsupportedFile  = "Неподдерживаемый формат файла. Поддерживается только XLSX."
	textExportFailed     = "Не удалось записать данные в Google Sheets."
)

// Statistics.
const (
	textNoChats          = "В базе данных нет чатов для отображения."
	textNoUsers          = "В базе данных нет пользователей для отображения."
	textChatListHeader   = "Список чатов:\n\n"
	textChatListFooter   = "Выберите чат для получения статистики:"
	textUserListHeader   = "Список пользователей:\n\n"
	textUserListFooter   = "Выберите пользователя для получения статистики:"
	textChatHasNoHistory = "Чат с ID %d не содержит сообщений"
	textStatChatNotFound = "Чат с ID %d не найден"
	textStatUserNotFound = "Пользователь с ID %d не найден"
)
