package simulator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hackgods/peer-support-platform/internal/random"
)

var (
	ErrReplyInFlight = errors.New("a reply is already being typed")
	ErrEmptyMessage  = errors.New("message is empty")
	ErrChatClosed    = errors.New("chat session closed")
)

type Author string

const (
	AuthorUser        Author = "user"
	AuthorCounterpart Author = "counterpart"
)

type ChatMessage struct {
	ID     int64
	Author Author
	Text   string
	SentAt time.Time
}

type Category string

const (
	CategoryGreeting   Category = "greeting"
	CategoryAnxiety    Category = "anxiety"
	CategoryDepression Category = "depression"
	CategoryStress     Category = "stress"
	CategoryDefault    Category = "default"
)

const openingLine = "Hello! I'm here to support you today. How are you feeling?"

// Checked in order; the first category with a matching keyword wins.
var keywordTable = []struct {
	category Category
	keywords []string
}{
	{CategoryGreeting, []string{"hello", "hi"}},
	{CategoryAnxiety, []string{"anxiety", "anxious", "worry"}},
	{CategoryDepression, []string{"depression", "sad", "hopeless"}},
	{CategoryStress, []string{"stress", "overwhelmed", "pressure"}},
}

var replyPools = map[Category][]string{
	CategoryGreeting: {
		"I understand you're reaching out. That's a brave first step.",
		"Thank you for sharing that with me. I'm here to listen.",
		"I hear you, and I want you to know that your feelings are valid.",
	},
	CategoryAnxiety: {
		"Anxiety can feel overwhelming. Let's take a moment to breathe together.",
		"It sounds like you're experiencing some anxiety. Can you tell me more about what's triggering these feelings?",
		"Anxiety is your body's way of trying to protect you. Let's work on some coping strategies.",
	},
	CategoryDepression: {
		"Depression can make everything feel heavy and hopeless. You're not alone in this.",
		"I hear the pain in your words. It takes strength to talk about these feelings.",
		"Depression lies to you. It tells you things that aren't true. Let's challenge those thoughts together.",
	},
	CategoryStress: {
		"Stress can be incredibly overwhelming. What's been the most challenging part for you?",
		"It sounds like you're under a lot of pressure. Let's identify what's within your control.",
		"Stress affects us all differently. How has it been impacting your daily life?",
	},
	CategoryDefault: {
		"I'm here to listen. Can you tell me more about what's on your mind?",
		"That sounds really challenging. How long have you been feeling this way?",
		"I want to understand better. What would be most helpful for you right now?",
	},
}

// Classify picks the reply category for a user message.
func Classify(text string) Category {
	lower := strings.ToLower(text)
	for _, row := range keywordTable {
		for _, kw := range row.keywords {
			if strings.Contains(lower, kw) {
				return row.category
			}
		}
	}
	return CategoryDefault
}

// Replies returns the reply pool for a category.
func Replies(c Category) []string {
	return append([]string(nil), replyPools[c]...)
}

// TypingDelay bounds the simulated time the counterpart spends typing.
type TypingDelay struct {
	Min time.Duration
	Max time.Duration
}

// DefaultTypingDelay is one to three seconds.
var DefaultTypingDelay = TypingDelay{Min: time.Second, Max: 3 * time.Second}

// Chat is one mounted chat view: an append-only transcript and a simulated
// counterpart that answers one message at a time.
type Chat struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	rand     random.Source
	delay    TypingDelay
	recorder Recorder

	messages []ChatMessage
	lastID   int64
	busy     bool

	closed chan struct{}
	once   sync.Once
}

// NewChat opens a chat seeded with the counterpart's opening line.
func NewChat(clk clockwork.Clock, src random.Source, delay TypingDelay, recorder Recorder) *Chat {
	c := &Chat{
		clock:    clk,
		rand:     src,
		delay:    delay,
		recorder: recorder,
		closed:   make(chan struct{}),
	}
	c.mu.Lock()
	c.appendLocked(AuthorCounterpart, openingLine)
	c.mu.Unlock()
	return c
}

// Messages returns a copy of the transcript in id order.
func (c *Chat) Messages() []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ChatMessage(nil), c.messages...)
}

// Typing reports whether a reply is in flight.
func (c *Chat) Typing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Send appends the user's message and waits for the simulated reply.
func (c *Chat) Send(ctx context.Context, text string) (ChatMessage, ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatMessage{}, ChatMessage{}, ErrEmptyMessage
	}

	c.mu.Lock()
	if err := c.acquireLocked(); err != nil {
		c.mu.Unlock()
		return ChatMessage{}, ChatMessage{}, err
	}
	sent := c.appendLocked(AuthorUser, text)
	c.mu.Unlock()

	reply, err := c.reply(ctx, text)
	return sent, reply, err
}

// SimulateTypingReply waits a random typing delay and then appends and
// returns a reply chosen for userMessage. Overlapping calls fail with
// ErrReplyInFlight. Closing the chat cancels a pending delay.
func (c *Chat) SimulateTypingReply(ctx context.Context, userMessage string) (ChatMessage, error) {
	c.mu.Lock()
	if err := c.acquireLocked(); err != nil {
		c.mu.Unlock()
		return ChatMessage{}, err
	}
	c.mu.Unlock()

	return c.reply(ctx, userMessage)
}

// Close cancels any pending reply. Safe to call more than once.
func (c *Chat) Close() {
	c.once.Do(func() { close(c.closed) })
}

func (c *Chat) acquireLocked() error {
	select {
	case <-c.closed:
		return ErrChatClosed
	default:
	}
	if c.busy {
		return ErrReplyInFlight
	}
	c.busy = true
	return nil
}

// reply runs with the busy flag held and releases it.
func (c *Chat) reply(ctx context.Context, userMessage string) (ChatMessage, error) {
	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	category := Classify(userMessage)

	c.mu.Lock()
	wait := random.Duration(c.rand, c.delay.Min, c.delay.Max)
	text := random.Pick(c.rand, replyPools[category])
	c.mu.Unlock()

	if wait > 0 {
		timer := c.clock.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ChatMessage{}, ctx.Err()
		case <-c.closed:
			timer.Stop()
			return ChatMessage{}, ErrChatClosed
		case <-timer.Chan():
		}
	}

	c.mu.Lock()
	msg := c.appendLocked(AuthorCounterpart, text)
	c.mu.Unlock()

	if c.recorder != nil {
		c.recorder.ReplySent(string(category))
	}
	return msg, nil
}

func (c *Chat) appendLocked(author Author, text string) ChatMessage {
	now := c.clock.Now()
	id := now.UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}
	c.lastID = id

	msg := ChatMessage{ID: id, Author: author, Text: text, SentAt: now}
	c.messages = append(c.messages, msg)
	return msg
}
