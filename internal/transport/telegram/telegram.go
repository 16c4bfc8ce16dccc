// Package telegram adapts the platform boundary to the Telegram Bot API via
// telebot. It is the only package that imports telebot.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"herald/internal/transport"
	"herald/pkg/logx"
)

type Config struct {
	Token       string
	PollTimeout time.Duration
}

type Adapter struct {
	log logx.Logger
	bot *tele.Bot

	runMu   sync.Mutex
	running bool

	joinMu sync.RWMutex
	onJoin transport.JoinHandler
}

func New(cfg Config, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	a := &Adapter{log: log, bot: b}
	a.registerHandlers()
	return a, nil
}

// OnJoin installs the handler invoked for each member join. Must be set
// before Start.
func (a *Adapter) OnJoin(h transport.JoinHandler) {
	a.joinMu.Lock()
	a.onJoin = h
	a.joinMu.Unlock()
}

func (a *Adapter) registerHandlers() {
	a.bot.Handle(tele.OnUserJoined, func(c tele.Context) error {
		m := c.Message()
		if m == nil || m.Chat == nil {
			return nil
		}
		a.joinMu.RLock()
		h := a.onJoin
		a.joinMu.RUnlock()
		if h == nil {
			return nil
		}
		destID := strconv.FormatInt(m.Chat.ID, 10)
		users := m.UsersJoined
		if len(users) == 0 && m.UserJoined != nil {
			users = []tele.User{*m.UserJoined}
		}
		for _, u := range users {
			h(context.Background(), transport.JoinEvent{DestID: destID, Username: u.Username})
		}
		return nil
	})
}

// Start launches the long-polling loop in the background.
func (a *Adapter) Start(ctx context.Context) {
	a.runMu.Lock()
	defer a.runMu.Unlock()
	if a.running {
		return
	}
	a.running = true
	go a.bot.Start()
	a.log.Info("telegram adapter started")
}

func (a *Adapter) Stop(ctx context.Context) {
	a.runMu.Lock()
	defer a.runMu.Unlock()
	if !a.running {
		return
	}
	a.running = false
	a.bot.Stop()
	a.log.Info("telegram adapter stopped")
}

func (a *Adapter) SendMessage(ctx context.Context, destID string, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chat, err := chatFor(destID)
	if err != nil {
		return err
	}
	_, err = a.bot.Send(chat, text, &tele.SendOptions{ParseMode: tele.ModeMarkdown})
	return err
}

func (a *Adapter) SendPoll(ctx context.Context, destID string, question string, options []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chat, err := chatFor(destID)
	if err != nil {
		return err
	}
	opts := make([]tele.PollOption, 0, len(options))
	for _, o := range options {
		opts = append(opts, tele.PollOption{Text: o})
	}
	poll := &tele.Poll{
		Type:            tele.PollRegular,
		Question:        question,
		Options:         opts,
		Anonymous:       true,
		MultipleAnswers: false,
	}
	_, err = a.bot.Send(chat, poll)
	return err
}

func (a *Adapter) MemberCount(ctx context.Context, destID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	chat, err := chatFor(destID)
	if err != nil {
		return 0, err
	}
	return a.bot.Len(chat)
}

func chatFor(destID string) (*tele.Chat, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(destID), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid destination id %q: %w", destID, err)
	}
	return &tele.Chat{ID: id}, nil
}

var _ transport.Transport = (*Adapter)(nil)
