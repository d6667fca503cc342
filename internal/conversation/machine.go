package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"review-collector/internal/review"
	"review-collector/internal/text"
)

// Reply templates. Every outcome of a transition maps to exactly one of these;
// internal errors are never surfaced verbatim.
const (
	replyCancelled   = "Conversation cancelled. Send any message to start again."
	replyAskProduct  = "Which product is this review for?"
	replyNeedProduct = "Please send the product name."
	replyAskName     = "What's your name?"
	replyNeedName    = "Please send your name."
	replyNeedReview  = "Please send your review text."
	replyDuplicate   = "Duplicate review detected — we've already recorded this. Thank you."
	replySaveFailed  = "Failed to save your review. Please try again later."
	replyFallback    = "Sorry, something went wrong. Send any message to start again."
)

// Result is what a transition hands back to the transport: the reply text for
// the end user and whether the attempt failed on the persistence side (the
// only case the caller should map to an error status).
type Result struct {
	Reply  string
	Failed bool
}

// Machine drives the per-contact review conversation. It owns no I/O of its
// own beyond what it requests from the Store and the review Repository.
type Machine struct {
	store     *Store
	reviews   review.Repository
	dupWindow time.Duration
	now       func() time.Time
}

func NewMachine(store *Store, reviews review.Repository, dupWindow time.Duration, now func() time.Time) *Machine {
	if now == nil {
		now = time.Now
	}
	return &Machine{
		store:     store,
		reviews:   reviews,
		dupWindow: dupWindow,
		now:       now,
	}
}

// Handle consumes one inbound message for a contact and returns the reply.
// The whole transition, including the duplicate check and the insert, runs
// under the contact's lock; messages from other contacts are not blocked.
func (m *Machine) Handle(ctx context.Context, contact, rawBody string) Result {
	body := text.Sanitize(rawBody)

	unlock := m.store.LockContact(contact)
	defer unlock()

	// Cancellation wins over everything, active conversation or not.
	if strings.EqualFold(body, "cancel") {
		m.store.Clear(contact)
		return Result{Reply: replyCancelled}
	}

	rec, ok := m.store.Get(contact)
	if !ok {
		m.store.Put(contact, Record{Phase: AwaitingProduct})
		return Result{Reply: replyAskProduct}
	}

	switch rec.Phase {
	case AwaitingProduct:
		if body == "" {
			return Result{Reply: replyNeedProduct}
		}
		rec.ProductName = body
		rec.Phase = AwaitingName
		m.store.Put(contact, rec)
		return Result{Reply: replyAskName}

	case AwaitingName:
		if body == "" {
			return Result{Reply: replyNeedName}
		}
		rec.UserName = body
		rec.Phase = AwaitingReview
		m.store.Put(contact, rec)
		return Result{Reply: fmt.Sprintf("Please send your review for %s.", rec.ProductName)}

	case AwaitingReview:
		if body == "" {
			return Result{Reply: replyNeedReview}
		}
		return m.finish(ctx, contact, rec, body)
	}

	// Unreachable with the phases above; kept so the transition is total.
	m.store.Clear(contact)
	return Result{Reply: replyFallback}
}

// finish validates the completed submission, absorbs provider double-delivery
// via the duplicate guard and attempts the insert. The record is cleared after
// every terminal attempt, success or not; only validation failures leave it in
// place so the user can resend the review text.
func (m *Machine) finish(ctx context.Context, contact string, rec Record, reviewText string) Result {
	if err := text.ValidateLengths(rec.ProductName, rec.UserName, reviewText); err != nil {
		return Result{Reply: "Validation error: " + err.Error()}
	}

	if m.isDuplicate(ctx, contact, rec.ProductName, reviewText) {
		m.store.Clear(contact)
		return Result{Reply: replyDuplicate}
	}

	rev := review.Review{
		Contact:     contact,
		UserName:    rec.UserName,
		ProductName: rec.ProductName,
		Text:        reviewText,
		CreatedAt:   m.now().UTC(),
	}
	if err := m.reviews.Insert(ctx, rev); err != nil {
		log.Error().Err(err).Str("contact", contact).Msg("review insert failed")
		m.store.Clear(contact)
		return Result{Reply: replySaveFailed, Failed: true}
	}

	m.store.Clear(contact)
	return Result{Reply: fmt.Sprintf("Thanks %s — your review for %s has been recorded.", rec.UserName, rec.ProductName)}
}

// isDuplicate fails open: a repository error must not block the conversation,
// the insert is still attempted.
func (m *Machine) isDuplicate(ctx context.Context, contact, productName, reviewText string) bool {
	createdAt, found, err := m.reviews.FindLatest(ctx, contact, productName, reviewText)
	if err != nil {
		log.Warn().Err(err).Str("contact", contact).Msg("duplicate check failed, continuing")
		return false
	}
	if !found {
		return false
	}
	return m.now().UTC().Sub(createdAt) < m.dupWindow
}
