package payment

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

const (
	// LamportsPerSOL is the smallest-unit denomination of SOL.
	LamportsPerSOL = 1_000_000_000

	// SystemProgramID is the Solana system program address.
	SystemProgramID = "11111111111111111111111111111111"

	// transferInstructionIndex is the system program's Transfer variant.
	transferInstructionIndex = 2
)

// AccountMeta describes one account referenced by an instruction.
type AccountMeta struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"is_signer"`
	IsWritable bool   `json:"is_writable"`
}

// Instruction is an unsigned system-program transfer instruction. The
// sender pubkey is blank; the signing wallet fills it in on the frontend.
type Instruction struct {
	ProgramID string        `json:"program_id"`
	Accounts  []AccountMeta `json:"accounts"`
	Data      string        `json:"data"` // base64
}

// Transaction is the unsigned transfer artifact handed to the room for
// signing. The service never holds a key and never signs.
type Transaction struct {
	Type           string      `json:"type"`
	To             string      `json:"to"`
	AmountLamports uint64      `json:"amount_lamports"`
	AmountSOL      float64     `json:"amount_sol"`
	AmountUSD      float64     `json:"amount_usd"`
	SOLPriceUSD    float64     `json:"sol_price_usd"`
	Instruction    Instruction `json:"instruction"`
	Message        string      `json:"message"`
}

// BuildTransaction constructs the unsigned transfer for a settled offer.
func BuildTransaction(s Settlement) Transaction {
	offer := s.Offer()
	lamports := uint64(offer.AmountSOL * LamportsPerSOL)

	// System transfer data: u32 LE instruction index, u64 LE lamports.
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], transferInstructionIndex)
	binary.LittleEndian.PutUint64(data[4:12], lamports)

	return Transaction{
		Type:           "transfer",
		To:             offer.Recipient,
		AmountLamports: lamports,
		AmountSOL:      offer.AmountSOL,
		AmountUSD:      offer.AmountUSD,
		SOLPriceUSD:    offer.RateUSD,
		Instruction: Instruction{
			ProgramID: SystemProgramID,
			Accounts: []AccountMeta{
				{Pubkey: "", IsSigner: true, IsWritable: true},
				{Pubkey: offer.Recipient, IsSigner: false, IsWritable: true},
			},
			Data: base64.StdEncoding.EncodeToString(data),
		},
		Message: fmt.Sprintf("Payment transaction ready: %.4f SOL ($%.2f USD)", offer.AmountSOL, offer.AmountUSD),
	}
}
