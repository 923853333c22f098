package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	domainTelegram "container_bot/internal/domain/telegram"
	idb "container_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
)

type commandHandler func(ctx context.Context, ev *Event, cmd command) error

type callbackHandler func(ctx context.Context, ev *Event, args []string) error

// route is one row of the precedence table. The first matching route handles the event.
type route struct {
	name   string
	match  func(ev *Event, isOperator bool) bool
	handle func(ctx context.Context, ev *Event, isOperator bool) error
}

// command is a parsed "/name args" message.
type command struct {
	name   string // lower case, without @bot suffix
	arg    string
	hasArg bool // something followed the command name, possibly blank
}

// DispatcherDeps are the collaborators of the Dispatcher.
type DispatcherDeps struct {
	OperatorIDs     []int64
	Dialogs         *DialogService
	Broadcasts      *BroadcastService
	Statistics      *StatisticsService
	Registration    *RegistrationService
	Imports         *ImportService
	Client          domainTelegram.Client
	HelpExampleFile string
}

// Dispatcher is the single entry point for inbound events.
type Dispatcher struct {
	operators       map[int64]struct{}
	dialogs         *DialogService
	broadcasts      *BroadcastService
	stats           *StatisticsService
	registration    *RegistrationService
	imports         *ImportService
	client          domainTelegram.Client
	helpExampleFile string
	logger          *logrus.Entry

	routes           []route
	operatorCommands map[string]commandHandler
	userCommands     map[string]commandHandler
	callbacks        map[string]callbackHandler
}

func NewDispatcher(deps DispatcherDeps, logger *logrus.Entry) *Dispatcher {
	d := &Dispatcher{
		operators:       make(map[int64]struct{}, len(deps.OperatorIDs)),
		dialogs:         deps.Dialogs,
		broadcasts:      deps.Broadcasts,
		stats:           deps.Statistics,
		registration:    deps.Registration,
		imports:         deps.Imports,
		client:          deps.Client,
		helpExampleFile: deps.HelpExampleFile,
		logger:          logger.WithField("component", "dispatcher"),
	}
	for _, id := range deps.OperatorIDs {
		d.operators[id] = struct{}{}
	}

	d.routes = []route{
		{name: "dialog", match: d.matchDialog, handle: d.handleDialog},
		{name: "document", match: matchDocument, handle: d.handleDocument},
		{name: "callback", match: matchCallback, handle: d.handleCallback},
		{name: "broadcast_text", match: d.matchBroadcastText, handle: d.handleBroadcastText},
		{name: "operator_command", match: matchOperatorCommand, handle: d.handleOperatorCommand},
		{name: "user_command", match: matchUserCommand, handle: d.handleUserCommand},
	}

	d.operatorCommands = map[string]commandHandler{
		"/start":                d.cmdOperatorStart,
		"/help":                 d.cmdHelp,
		"/sendmessage":          d.cmdSendMessage,
		"/broadcast":            d.cmdBroadcast,
		"/getstatisticbychatid": d.cmdChatStatistics,
		"/getstatisticbyuserid": d.cmdUserStatistics,
		"/setweeklymessage":     d.cmdSetWeeklyMessage,
		"/setdailymessage":      d.cmdSetDailyMessage,
	}
	d.userCommands = map[string]commandHandler{
		"/start": d.cmdUserStart,
		"/help":  d.cmdHelp,
	}
	d.callbacks = map[string]callbackHandler{
		callbackBroadcastChat:   d.cbBroadcastChat,
		callbackBroadcastAll:    d.cbBroadcastAll,
		callbackBroadcastCancel: d.cbBroadcastCancel,
		callbackChatStatistic:   d.cbChatStatistic,
		callbackUserStatistic:   d.cbUserStatistic,
	}
	return d
}

func (d *Dispatcher) IsOperator(telegramID int64) bool {
	_, ok := d.operators[telegramID]
	return ok
}

// Dispatch routes ev to exactly one handler. It never panics and never returns
// an error: failures are logged here and the event is dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *Event) {
	if ev == nil || ev.Sender == nil {
		return
	}
	logCtx := d.logger.WithField("sender_id", ev.Sender.ID)
	defer func() {
		if p := recover(); p != nil {
			logCtx.WithFields(logrus.Fields{"panic": p, "stack": string(debug.Stack())}).Error("Recovered from panic while handling event")
		}
	}()

	isOperator := d.IsOperator(ev.Sender.ID)
	if !ev.IsCallback() {
		d.recordActivity(ctx, ev, logCtx)
	}

	for _, r := range d.routes {
		if !r.match(ev, isOperator) {
			continue
		}
		if err := r.handle(ctx, ev, isOperator); err != nil {
			d.logHandlerError(logCtx.WithField("handler", r.name), err)
		}
		return
	}
	logCtx.Debug("No route for event")
}

// recordActivity runs the registry bookkeeping once per inbound message.
func (d *Dispatcher) recordActivity(ctx context.Context, ev *Event, logCtx *logrus.Entry) {
	var err error
	switch {
	case ev.IsGroup():
		err = d.registration.RecordGroupMessage(ctx, ev)
	case ev.IsPrivate():
		_, err = d.registration.RegisterSubscriber(ctx, ev.Sender)
	}
	if err != nil {
		logCtx.WithError(err).Error("Failed to record activity")
	}
}

func (d *Dispatcher) logHandlerError(logCtx *logrus.Entry, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrSessionStateMismatch),
		errors.Is(err, ErrDialogNotFound),
		errors.Is(err, ErrEmptyInput),
		errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, idb.ErrChatNotFound):
		logCtx.WithError(err).Info("Event rejected")
	default:
		logCtx.WithError(err).Error("Failed to handle event")
	}
}

func (d *Dispatcher) matchDialog(ev *Event, isOperator bool) bool {
	return isOperator && !ev.IsCallback() && d.dialogs.InDialog(ev.Sender.ID)
}

func (d *Dispatcher) handleDialog(ctx context.Context, ev *Event, _ bool) error {
	return d.dialogs.HandleReply(ctx, ev.Sender.ID, ev.ReplyChatID(), ev.Text)
}

func matchDocument(ev *Event, _ bool) bool { return !ev.IsCallback() && ev.Document != nil }

func (d *Dispatcher) handleDocument(ctx context.Context, ev *Event, isOperator bool) error {
	return d.imports.HandleDocument(ctx, ev, isOperator)
}

func matchCallback(ev *Event, _ bool) bool { return ev.IsCallback() }

// handleCallback always answers the callback so the client stops its spinner.
func (d *Dispatcher) handleCallback(ctx context.Context, ev *Event, isOperator bool) error {
	defer func() {
		if err := d.client.AnswerCallback(ev.Callback.ID, ""); err != nil {
			d.logger.WithError(err).Warn("Failed to answer callback")
		}
	}()

	if !isOperator {
		d.logger.WithField("sender_id", ev.Sender.ID).Info("Ignoring callback from non-operator")
		return nil
	}
	tokens := strings.Fields(ev.Callback.Data)
	if len(tokens) == 0 {
		return nil
	}
	handler, ok := d.callbacks[tokens[0]]
	if !ok {
		d.logger.WithField("data", ev.Callback.Data).Info("Unknown callback payload")
		return nil
	}
	return handler(ctx, ev, tokens[1:])
}

func (d *Dispatcher) matchBroadcastText(ev *Event, isOperator bool) bool {
	return isOperator && ev.IsPrivate() && d.broadcasts.IsAwaitingText(ev.Sender.ID)
}

func (d *Dispatcher) handleBroadcastText(ctx context.Context, ev *Event, _ bool) error {
	return d.broadcasts.HandleMessageText(ctx, ev.Sender.ID, ev.ReplyChatID(), ev.Text)
}

func matchOperatorCommand(ev *Event, isOperator bool) bool {
	return isOperator && ev.IsPrivate()
}

func (d *Dispatcher) handleOperatorCommand(ctx context.Context, ev *Event, _ bool) error {
	return d.runCommand(ctx, ev, d.operatorCommands)
}

func matchUserCommand(ev *Event, isOperator bool) bool {
	return !isOperator && ev.IsPrivate()
}

func (d *Dispatcher) handleUserCommand(ctx context.Context, ev *Event, _ bool) error {
	return d.runCommand(ctx, ev, d.userCommands)
}

func (d *Dispatcher) runCommand(ctx context.Context, ev *Event, table map[string]commandHandler) error {
	cmd, ok := parseCommand(ev.Text)
	if !ok {
		return nil
	}
	handler, ok := table[cmd.name]
	if !ok {
		d.logger.WithFields(logrus.Fields{"sender_id": ev.Sender.ID, "command": cmd.name}).Debug("Unknown command")
		return nil
	}
	return handler(ctx, ev, cmd)
}

// parseCommand splits "/Name@bot rest" into its lower-case name and the rest.
func parseCommand(text string) (command, bool) {
	text = strings.TrimLeft(text, " \t\n")
	if !strings.HasPrefix(text, "/") {
		return command{}, false
	}
	name, rest := text, ""
	hasArg := false
	if i := strings.IndexAny(text, " \t\n"); i >= 0 {
		name, rest = text[:i], text[i+1:]
		hasArg = true
	}
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	return command{name: strings.ToLower(name), arg: strings.TrimSpace(rest), hasArg: hasArg}, true
}

func (d *Dispatcher) cmdUserStart(_ context.Context, ev *Event, _ command) error {
	return d.client.SendMessage(ev.ReplyChatID(), textRegistered, nil)
}

func (d *Dispatcher) cmdOperatorStart(_ context.Context, ev *Event, _ command) error {
	return d.client.SendMessage(ev.ReplyChatID(), textOperatorHelp, nil)
}

func (d *Dispatcher) cmdHelp(_ context.Context, ev *Event, _ command) error {
	chatID := ev.ReplyChatID()
	if err := d.client.SendMessage(chatID, textHelp, nil); err != nil {
		return err
	}
	if d.IsOperator(ev.Sender.ID) {
		if err := d.client.SendMessage(chatID, textOperatorHelp, nil); err != nil {
			return err
		}
	}
	if d.helpExampleFile == "" {
		return d.client.SendMessage(chatID, textGuideUnavailable, nil)
	}
	if _, err := os.Stat(d.helpExampleFile); err != nil {
		d.logger.WithError(err).WithField("path", d.helpExampleFile).Warn("Help example file unavailable")
		return d.client.SendMessage(chatID, textGuideUnavailable, nil)
	}
	return d.client.SendDocument(chatID, d.helpExampleFile, captionExampleFile)
}

func (d *Dispatcher) cmdSendMessage(ctx context.Context, ev *Event, _ command) error {
	return d.broadcasts.StartSession(ctx, ev.Sender.ID, ev.ReplyChatID())
}

func (d *Dispatcher) cmdBroadcast(ctx context.Context, ev *Event, cmd command) error {
	_, err := d.broadcasts.QuickBroadcast(ctx, ev.Sender.ID, ev.ReplyChatID(), cmd.arg)
	return err
}

func (d *Dispatcher) cmdChatStatistics(ctx context.Context, ev *Event, _ command) error {
	return d.stats.ListChats(ctx, ev.ReplyChatID())
}

func (d *Dispatcher) cmdUserStatistics(ctx context.Context, ev *Event, _ command) error {
	return d.stats.ListUsers(ctx, ev.ReplyChatID())
}

func (d *Dispatcher) cmdSetWeeklyMessage(ctx context.Context, ev *Event, cmd command) error {
	if cmd.hasArg {
		return d.dialogs.SetWeeklyText(ctx, ev.ReplyChatID(), cmd.arg)
	}
	return d.dialogs.StartWeeklyDialog(ctx, ev.Sender.ID, ev.ReplyChatID())
}

func (d *Dispatcher) cmdSetDailyMessage(ctx context.Context, ev *Event, _ command) error {
	return d.dialogs.StartDailyDialog(ctx, ev.Sender.ID, ev.ReplyChatID())
}

func (d *Dispatcher) cbBroadcastChat(ctx context.Context, ev *Event, args []string) error {
	chatID, err := idArg(args)
	if err != nil {
		return err
	}
	return d.broadcasts.SelectChat(ctx, ev.Sender.ID, ev.ReplyChatID(), chatID)
}

func (d *Dispatcher) cbBroadcastAll(ctx context.Context, ev *Event, _ []string) error {
	return d.broadcasts.SelectAll(ctx, ev.Sender.ID, ev.ReplyChatID())
}

func (d *Dispatcher) cbBroadcastCancel(ctx context.Context, ev *Event, _ []string) error {
	return d.broadcasts.Cancel(ctx, ev.Sender.ID, ev.ReplyChatID())
}

func (d *Dispatcher) cbChatStatistic(ctx context.Context, ev *Event, args []string) error {
	chatID, err := idArg(args)
	if err != nil {
		return err
	}
	return d.stats.SendChatStatistic(ctx, ev.ReplyChatID(), chatID)
}

func (d *Dispatcher) cbUserStatistic(ctx context.Context, ev *Event, args []string) error {
	userID, err := idArg(args)
	if err != nil {
		return err
	}
	return d.stats.SendUserStatistic(ctx, ev.ReplyChatID(), userID)
}

func idArg(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("callback payload has no id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id in callback payload %q: %w", args[0], err)
	}
	return id, nil
}
