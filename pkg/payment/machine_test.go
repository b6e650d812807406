package payment

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

const wallet = "G2x4qkaSMXUweDDwLYYzC8HzfYZjvZQ1qXvCNP6rVa8o"

func TestMachineHappyPath(t *testing.T) {
	m := NewMachine()
	if m.Status() != StatusNone {
		t.Fatalf("initial status = %s", m.Status())
	}

	offer, err := m.Propose(150.0, 150.0, wallet, "Hotel deposit")
	if err != nil {
		t.Fatalf("Propose failed: %v", err)
	}
	if m.Status() != StatusProposed {
		t.Errorf("status = %s, want proposed", m.Status())
	}
	if offer.AmountSOL != 1.0 {
		t.Errorf("amount SOL = %v, want 1.0", offer.AmountSOL)
	}
	if offer.ID == "" {
		t.Error("offer missing ID")
	}

	if _, err := m.Confirm(); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if m.Status() != StatusConfirmed {
		t.Errorf("status = %s, want confirmed", m.Status())
	}

	settlement, err := m.Settle()
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if m.Status() != StatusSettled {
		t.Errorf("status = %s, want settled", m.Status())
	}
	if settlement.Offer().ID != offer.ID {
		t.Error("settlement carries wrong offer")
	}
}

func TestMachineRateCapturedAtProposal(t *testing.T) {
	m := NewMachine()
	offer, err := m.Propose(100.0, 200.0, wallet, "")
	if err != nil {
		t.Fatal(err)
	}
	if offer.AmountSOL != 0.5 {
		t.Errorf("amount SOL = %v, want 0.5", offer.AmountSOL)
	}

	// The recorded conversion must survive to settlement untouched.
	if _, err := m.Confirm(); err != nil {
		t.Fatal(err)
	}
	settlement, err := m.Settle()
	if err != nil {
		t.Fatal(err)
	}
	got := settlement.Offer()
	if got.AmountSOL != 0.5 || got.RateUSD != 200.0 {
		t.Errorf("settled offer = %+v, conversion drifted", got)
	}
}

func TestMachineSupersede(t *testing.T) {
	m := NewMachine()
	first, err := m.Propose(50, 100, wallet, "first")
	if err != nil {
		t.Fatal(err)
	}

	second, err := m.Propose(75, 100, wallet, "second")
	if err != nil {
		t.Fatal(err)
	}
	if second.ID == first.ID {
		t.Error("superseding proposal reused offer ID")
	}
	if m.Current().Description != "second" {
		t.Errorf("live offer = %q, want second", m.Current().Description)
	}

	// Confirming now confirms the second offer, never the expired first.
	confirmed, err := m.Confirm()
	if err != nil {
		t.Fatal(err)
	}
	if confirmed.ID != second.ID {
		t.Error("confirmed the superseded offer")
	}
}

func TestMachineReject(t *testing.T) {
	m := NewMachine()
	if _, err := m.Reject(); !errors.Is(err, ErrNothingToCancel) {
		t.Errorf("Reject with no offer = %v, want ErrNothingToCancel", err)
	}

	if _, err := m.Propose(50, 100, wallet, ""); err != nil {
		t.Fatal(err)
	}
	rejected, err := m.Reject()
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if rejected.Status != StatusRejected {
		t.Errorf("rejected status = %s", rejected.Status)
	}
	if m.Status() != StatusNone {
		t.Errorf("status after reject = %s, want none", m.Status())
	}

	// Rejection also works from Confirmed.
	if _, err := m.Propose(50, 100, wallet, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Confirm(); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Reject(); err != nil {
		t.Errorf("Reject from confirmed failed: %v", err)
	}
}

func TestMachineInvalidTransitions(t *testing.T) {
	m := NewMachine()

	if _, err := m.Confirm(); !errors.Is(err, ErrNothingToConfirm) {
		t.Errorf("Confirm from none = %v, want ErrNothingToConfirm", err)
	}
	if _, err := m.Settle(); !errors.Is(err, ErrNotConfirmed) {
		t.Errorf("Settle from none = %v, want ErrNotConfirmed", err)
	}

	if _, err := m.Propose(50, 100, wallet, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Settle(); !errors.Is(err, ErrNotConfirmed) {
		t.Errorf("Settle from proposed = %v, want ErrNotConfirmed", err)
	}

	if _, err := m.Confirm(); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Confirm(); !errors.Is(err, ErrNothingToConfirm) {
		t.Errorf("double Confirm = %v, want ErrNothingToConfirm", err)
	}
}

func TestMachineProposeValidation(t *testing.T) {
	m := NewMachine()
	if _, err := m.Propose(0, 100, wallet, ""); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount = %v, want ErrInvalidAmount", err)
	}
	if _, err := m.Propose(-5, 100, wallet, ""); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative amount = %v, want ErrInvalidAmount", err)
	}
	if _, err := m.Propose(50, 0, wallet, ""); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("zero rate = %v, want ErrInvalidRate", err)
	}
	if m.Status() != StatusNone {
		t.Errorf("failed proposal changed state to %s", m.Status())
	}
}

func TestBuildTransaction(t *testing.T) {
	m := NewMachine()
	if _, err := m.Propose(142.35, 142.35, wallet, "Dinner"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Confirm(); err != nil {
		t.Fatal(err)
	}
	settlement, err := m.Settle()
	if err != nil {
		t.Fatal(err)
	}

	tx := BuildTransaction(settlement)
	if tx.Type != "transfer" {
		t.Errorf("type = %q", tx.Type)
	}
	if tx.To != wallet {
		t.Errorf("to = %q", tx.To)
	}
	if tx.AmountLamports != LamportsPerSOL {
		t.Errorf("lamports = %d, want %d", tx.AmountLamports, LamportsPerSOL)
	}
	if math.Abs(tx.AmountSOL-1.0) > 1e-9 {
		t.Errorf("amount SOL = %v, want 1.0", tx.AmountSOL)
	}
	if tx.Instruction.ProgramID != SystemProgramID {
		t.Errorf("program id = %q", tx.Instruction.ProgramID)
	}
	if len(tx.Instruction.Accounts) != 2 {
		t.Fatalf("accounts = %d, want 2", len(tx.Instruction.Accounts))
	}
	sender, recipient := tx.Instruction.Accounts[0], tx.Instruction.Accounts[1]
	if !sender.IsSigner || !sender.IsWritable || sender.Pubkey != "" {
		t.Errorf("sender meta = %+v", sender)
	}
	if recipient.IsSigner || !recipient.IsWritable || recipient.Pubkey != wallet {
		t.Errorf("recipient meta = %+v", recipient)
	}

	data, err := base64.StdEncoding.DecodeString(tx.Instruction.Data)
	if err != nil {
		t.Fatalf("decode instruction data: %v", err)
	}
	if len(data) != 12 {
		t.Fatalf("instruction data = %d bytes, want 12", len(data))
	}
	if idx := binary.LittleEndian.Uint32(data[0:4]); idx != 2 {
		t.Errorf("instruction index = %d, want 2", idx)
	}
	if lamports := binary.LittleEndian.Uint64(data[4:12]); lamports != tx.AmountLamports {
		t.Errorf("encoded lamports = %d, want %d", lamports, tx.AmountLamports)
	}
}

func TestSettlementRequiresConfirmedOffer(t *testing.T) {
	// A zero Settlement is the only value obtainable outside Settle,
	// and it carries no recipient or amount worth broadcasting.
	var s Settlement
	if got := s.Offer(); got.Recipient != "" || got.AmountUSD != 0 {
		t.Errorf("zero settlement carries data: %+v", got)
	}
}
