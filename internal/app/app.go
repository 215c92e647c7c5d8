package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"sealchat/internal/domain"
)

const chatHelp = `commands:
  /dm <peer> <text>         direct message
  /room <room> <text>       room message
  /secret <peer> <text>     one-time secret
  /join <room> <passphrase> join a room
  /leave <room>             leave a room
  /delete <room>            delete a room for everyone
  /rooms                    list joined rooms
  /help                     this text
  /quit                     exit`

var errQuit = errors.New("quit")

// Chat is the line-oriented front end used by `sealchat chat`.
type Chat struct {
	Messages domain.MessageService
	Rooms    domain.RoomService
	Out      io.Writer

	mu sync.Mutex
}

// Run prints inbound messages and executes commands read from in until
// EOF, /quit or ctx is done.
func (c *Chat) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-c.Messages.Inbound():
				c.printf("%s\n", Render(msg))
			}
		}
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			err := c.Exec(ctx, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				c.printf("error: %v\n", err)
			}
		}
	}
}

// Exec runs one input line.
func (c *Chat) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	cmd, rest, _ := strings.Cut(line, " ")
	arg, text, _ := strings.Cut(strings.TrimSpace(rest), " ")
	text = strings.TrimSpace(text)

	need := func(n int) error {
		have := 0
		if arg != "" {
			have++
		}
		if text != "" {
			have++
		}
		if have < n {
			return fmt.Errorf("%s: missing arguments (see /help)", cmd)
		}
		return nil
	}

	switch cmd {
	case "/dm":
		if err := need(2); err != nil {
			return err
		}
		return c.Messages.SendDirect(ctx, domain.Username(arg), []byte(text))
	case "/room":
		if err := need(2); err != nil {
			return err
		}
		return c.Messages.SendRoom(ctx, domain.RoomID(arg), []byte(text))
	case "/secret":
		if err := need(2); err != nil {
			return err
		}
		id, env, err := c.Messages.SendSecret(ctx, domain.Username(arg), []byte(text))
		if err != nil {
			return err
		}
		c.printf("secret %s sent, content hash %s\n", id, env.ContentHash)
		return nil
	case "/join":
		if err := need(2); err != nil {
			return err
		}
		return c.Rooms.Join(ctx, domain.RoomID(arg), text)
	case "/leave":
		if err := need(1); err != nil {
			return err
		}
		return c.Rooms.Leave(ctx, domain.RoomID(arg))
	case "/delete":
		if err := need(1); err != nil {
			return err
		}
		return c.Rooms.Delete(ctx, domain.RoomID(arg))
	case "/rooms":
		rooms, err := c.Rooms.Rooms()
		if err != nil {
			return err
		}
		for _, r := range rooms {
			c.printf("%s\n", r)
		}
		return nil
	case "/help":
		c.printf("%s\n", chatHelp)
		return nil
	case "/quit", "/exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q (see /help)", cmd)
	}
}

// Render formats an inbound message for the terminal. Failed decryptions
// get a placeholder naming the failure; they are never shown as content.
func Render(m domain.DecryptedMessage) string {
	var where string
	switch m.Kind {
	case domain.KindRoom:
		where = fmt.Sprintf("[%s] %s", m.Room, m.From)
	case domain.KindSecret:
		where = fmt.Sprintf("secret from %s", m.From)
	default:
		where = m.From.String()
	}

	switch {
	case errors.Is(m.Err, domain.ErrTampered):
		return fmt.Sprintf("%s: <unreadable: message may have been tampered with>", where)
	case m.Err != nil:
		return fmt.Sprintf("%s: <unreadable: %v>", where, m.Err)
	case m.Kind == domain.KindSecret && !m.HashVerified:
		return fmt.Sprintf("%s: %s (content hash NOT verified)", where, m.Plaintext)
	case m.Kind == domain.KindSecret:
		return fmt.Sprintf("%s: %s (content hash verified)", where, m.Plaintext)
	default:
		return fmt.Sprintf("%s: %s", where, m.Plaintext)
	}
}

func (c *Chat) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.Out, format, args...)
}
