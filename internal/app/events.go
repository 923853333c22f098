package app

// ChatType mirrors the gateway's chat kinds.
type ChatType string

const (
	ChatPrivate    ChatType = "private"
	ChatGroup      ChatType = "group"
	ChatSuperGroup ChatType = "supergroup"
	ChatChannel    ChatType = "channel"
)

type Sender struct {
	ID        int64
	Username  string
	FirstName string
}

type ChatRef struct {
	ID    int64
	Title string
	Type  ChatType
}

type Document struct {
	FileID   string
	FileName string
}

// Callback is a button press. MessageChatID is the chat holding the pressed keyboard.
type Callback struct {
	ID            string
	Data          string
	MessageChatID int64
}

// Event is one inbound update from the messaging gateway.
// Exactly one of Text/Document (a message) or Callback is meaningful.
type Event struct {
	Sender   *Sender
	Chat     *ChatRef
	Text     string
	Document *Document
	Callback *Callback
}

func (e *Event) IsCallback() bool { return e.Callback != nil }

func (e *Event) IsPrivate() bool { return e.Chat != nil && e.Chat.Type == ChatPrivate }

func (e *Event) IsGroup() bool {
	return e.Chat != nil && (e.Chat.Type == ChatGroup || e.Chat.Type == ChatSuperGroup)
}

// ReplyChatID is where answers to this event go.
func (e *Event) ReplyChatID() int64 {
	if e.Callback != nil && e.Callback.MessageChatID != 0 {
		return e.Callback.MessageChatID
	}
	if e.Chat != nil {
		return e.Chat.ID
	}
	return e.Sender.ID
}
