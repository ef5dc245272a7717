// Package bridge listens to cross-window messages from the embedding host
// and distills them into identity assertions. The host broadcasts the
// logged-in member repeatedly; the bridge drops foreign origins and
// duplicate emails so downstream sees each identity exactly once.
package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// TypeUserAuth is the message type discriminator for identity broadcasts.
// Everything else on the channel is unrelated host traffic.
const TypeUserAuth = "CIRCLE_USER_AUTH"

// DefaultOriginTimeout is how long the bridge waits for a message from the
// allowed origin before concluding the embedding is not legitimate.
const DefaultOriginTimeout = 3 * time.Second

// ErrOriginInvalid is returned when the origin gate is active and no
// message from the allowed origin arrived in time. Terminal: the page is
// not embedded where it should be.
var ErrOriginInvalid = errors.New("no message from the allowed origin")

// User is the member identity the host embeds in its broadcasts
type User struct {
	PublicUID string `json:"publicUid"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	IsAdmin   bool   `json:"isAdmin"`
}

// Message is one raw cross-window message
type Message struct {
	Origin string
	Type   string
	User   User
	SentAt time.Time
}

// Identity is the normalized assertion the bridge emits, one per distinct
// email.
type Identity struct {
	PublicUID string
	Email     string
	Name      string
	IsAdmin   bool
}

// Source yields raw host messages. The channel closes when the host side
// goes away.
type Source interface {
	Messages() <-chan Message
}

// Options configures a bridge
type Options struct {
	// RequireOrigin enables the origin gate
	RequireOrigin bool
	// AllowedOrigin is the exact origin messages must carry when the
	// origin gate is active
	AllowedOrigin string
	// OriginTimeout overrides DefaultOriginTimeout
	OriginTimeout time.Duration
	Log           *logrus.Logger
}

// Bridge filters host messages into identity assertions
type Bridge struct {
	src   Source
	store StateStore
	opts  Options
	out   chan Identity
	log   *logrus.Entry
}

// New creates a bridge over a message source. State survives restarts
// through the store: a host that re-broadcasts the same member after a
// reload does not produce a second identity.
func New(src Source, store StateStore, opts Options) *Bridge {
	if opts.OriginTimeout <= 0 {
		opts.OriginTimeout = DefaultOriginTimeout
	}
	log := opts.Log
	if log == nil {
		log = logrus.New()
	}
	return &Bridge{
		src:   src,
		store: store,
		opts:  opts,
		out:   make(chan Identity, 1),
		log:   log.WithField("component", "bridge"),
	}
}

// Identities is the bridge output, one assertion per distinct email
func (b *Bridge) Identities() <-chan Identity {
	return b.out
}

// Run consumes the source until the context ends or the source closes.
// With the origin gate active it returns ErrOriginInvalid if no
// matching-origin message arrives within the origin timeout.
func (b *Bridge) Run(ctx context.Context) error {
	defer close(b.out)

	state, err := b.store.Load()
	if err != nil {
		return err
	}

	var deadline <-chan time.Time
	if b.opts.RequireOrigin && !state.OriginValidated {
		timer := time.NewTimer(b.opts.OriginTimeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return ErrOriginInvalid
		case msg, ok := <-b.src.Messages():
			if !ok {
				return nil
			}
			if msg.Type != TypeUserAuth {
				continue
			}
			if b.opts.RequireOrigin && msg.Origin != b.opts.AllowedOrigin {
				b.log.WithField("origin", msg.Origin).Debug("dropping message from foreign origin")
				continue
			}
			if !state.OriginValidated {
				state.OriginValidated = true
				deadline = nil
				if err := b.store.Save(state); err != nil {
					return err
				}
			}

			// The host rebroadcasts the same member while the page loads
			if msg.User.Email == "" || msg.User.Email == state.LastEmail {
				continue
			}
			state.LastEmail = msg.User.Email
			state.IsAdmin = msg.User.IsAdmin
			if err := b.store.Save(state); err != nil {
				return err
			}

			b.log.WithField("email", msg.User.Email).Info("identity received from host")
			select {
			case b.out <- Identity(msg.User):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
