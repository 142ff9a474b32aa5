package dashboard

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// bridgeBuffer is the number of undelivered messages a Bridge holds.
const bridgeBuffer = 16

// Bridge carries messages produced outside the Bubble Tea loop, such as
// cache notifications, into the program.
type Bridge struct {
	ch   chan tea.Msg
	done chan struct{}
	once sync.Once
}

// NewBridge creates a Bridge with a buffered message channel.
func NewBridge() *Bridge {
	return &Bridge{
		ch:   make(chan tea.Msg, bridgeBuffer),
		done: make(chan struct{}),
	}
}

// Send delivers msg to the program. It blocks while the buffer is full and
// reports false once the bridge is closed, dropping msg.
func (b *Bridge) Send(msg tea.Msg) bool {
	select {
	case <-b.done:
		return false
	default:
	}
	select {
	case b.ch <- msg:
		return true
	case <-b.done:
		return false
	}
}

// Listen returns a command that waits for the next message.
// After Close it resolves to nil.
func (b *Bridge) Listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.ch:
			return msg
		case <-b.done:
			return nil
		}
	}
}

// Close stops delivery. Pending and later messages are dropped.
// It is safe to call more than once.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}
