// Package payment tracks the confirmation lifecycle of a booking payment.
//
// A payment moves through None → Proposed → Confirmed → Settled. Proposing
// while an offer is live expires the old offer. An explicit cancel rejects
// the live offer and returns the machine to None. Settlement here means
// the unsigned transaction was handed off to the room for signing, not
// that funds moved.
//
// The Settlement value returned by Settle is the only way to obtain the
// handoff artifact, so nothing can broadcast a payment that was never
// confirmed out loud.
package payment

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-nomad/internal/log"
)

// Status is the lifecycle state of a payment offer.
type Status string

const (
	StatusNone      Status = "none"
	StatusProposed  Status = "proposed"
	StatusConfirmed Status = "confirmed"
	StatusSettled   Status = "settled"
	StatusRejected  Status = "rejected"
	StatusExpired   Status = "expired"
)

// Typed errors for invalid transitions.
var (
	// ErrNothingToConfirm is returned when Confirm is called with no live proposal.
	ErrNothingToConfirm = errors.New("payment: no proposed offer to confirm")

	// ErrNothingToCancel is returned when Reject is called with no live offer.
	ErrNothingToCancel = errors.New("payment: no offer to cancel")

	// ErrNotConfirmed is returned when Settle is called before confirmation.
	ErrNotConfirmed = errors.New("payment: offer not confirmed")

	// ErrInvalidAmount is returned for a non-positive proposal amount.
	ErrInvalidAmount = errors.New("payment: amount must be positive")

	// ErrInvalidRate is returned for a non-positive exchange rate.
	ErrInvalidRate = errors.New("payment: exchange rate must be positive")
)

// Offer is one payment proposal. The SOL amount is computed once at
// proposal time from the rate in force; confirmation never re-quotes.
type Offer struct {
	ID          string
	AmountUSD   float64
	AmountSOL   float64
	RateUSD     float64 // USD per SOL captured at proposal
	Recipient   string
	Description string
	ProposedAt  time.Time
	Status      Status
}

// Machine is the payment confirmation state machine for one conversation.
// Transitions are driven only by the turn loop; the mutex exists so the
// status surface can read state from other goroutines.
type Machine struct {
	mu      sync.RWMutex
	current *Offer
}

// NewMachine creates a machine in the None state.
func NewMachine() *Machine {
	return &Machine{}
}

// Status returns the current state.
func (m *Machine) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return StatusNone
	}
	return m.current.Status
}

// Current returns a copy of the live offer, or nil when the machine is
// in the None state.
func (m *Machine) Current() *Offer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentLocked()
}

func (m *Machine) currentLocked() *Offer {
	if m.current == nil {
		return nil
	}
	o := *m.current
	return &o
}

// Live reports whether an offer is awaiting confirmation or settlement.
func (m *Machine) Live() bool {
	s := m.Status()
	return s == StatusProposed || s == StatusConfirmed
}

// Propose records a new offer, converting the USD amount at the given
// rate (USD per SOL). A live unsettled offer is expired and superseded.
func (m *Machine) Propose(amountUSD, rateUSD float64, recipient, description string) (*Offer, error) {
	if amountUSD <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, amountUSD)
	}
	if rateUSD <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRate, rateUSD)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil && m.current.Status != StatusSettled {
		log.Info("superseding live payment offer",
			"old_offer", m.current.ID, "old_status", m.current.Status)
		m.current.Status = StatusExpired
	}

	m.current = &Offer{
		ID:          uuid.NewString(),
		AmountUSD:   amountUSD,
		AmountSOL:   amountUSD / rateUSD,
		RateUSD:     rateUSD,
		Recipient:   recipient,
		Description: description,
		ProposedAt:  time.Now(),
		Status:      StatusProposed,
	}
	log.Info("payment proposed",
		"offer", m.current.ID, "amount_usd", amountUSD,
		"amount_sol", m.current.AmountSOL, "recipient", recipient)
	return m.currentLocked(), nil
}

// Confirm marks the proposed offer confirmed. Only valid from Proposed.
func (m *Machine) Confirm() (*Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || m.current.Status != StatusProposed {
		return nil, ErrNothingToConfirm
	}
	m.current.Status = StatusConfirmed
	log.Info("payment confirmed", "offer", m.current.ID)
	return m.currentLocked(), nil
}

// Reject cancels the live offer and returns the machine to None.
func (m *Machine) Reject() (*Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || (m.current.Status != StatusProposed && m.current.Status != StatusConfirmed) {
		return nil, ErrNothingToCancel
	}
	m.current.Status = StatusRejected
	rejected := m.currentLocked()
	log.Info("payment rejected", "offer", rejected.ID)
	m.current = nil
	return rejected, nil
}

// Settlement is proof that an offer passed through explicit confirmation.
// It can only be constructed by Settle, which makes it the required
// credential for emitting a payment broadcast.
type Settlement struct {
	offer Offer
}

// Offer returns the settled offer.
func (s Settlement) Offer() Offer {
	return s.offer
}

// Settle marks the confirmed offer settled and returns the settlement
// proof. Only valid from Confirmed.
func (m *Machine) Settle() (Settlement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || m.current.Status != StatusConfirmed {
		return Settlement{}, ErrNotConfirmed
	}
	m.current.Status = StatusSettled
	log.Info("payment settled", "offer", m.current.ID,
		"amount_sol", m.current.AmountSOL)
	return Settlement{offer: *m.current}, nil
}

// Reset clears the machine at session end.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
}
