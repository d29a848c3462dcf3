package stackmate

import "fmt"

// CallRequest describes a contract call the orchestrator should shepherd
// through signing and confirmation. Run performs the actual wallet
// interaction and returns either the resulting transaction ID (as a string or
// a TxIDer) or an error.
type CallRequest struct {
	// Contract is the fully qualified contract identifier,
	// e.g. "SP2...ABC.chess-wager".
	Contract string
	// Function is the public contract function being invoked.
	Function string
	// Sender is the address expected to sign the transaction.
	Sender string
	// Label is the human-readable description recorded in the transaction
	// log, e.g. "Enter puzzle #42".
	Label string
	// Network selects which chain the call targets. Empty defaults to the
	// orchestrator's network.
	Network Network
	// Run executes the signing flow. It must honor ctx cancellation.
	Run RunFunc
	// OnStatus, when set, receives every lifecycle transition the call goes
	// through, from requesting_signature to a terminal state.
	OnStatus StatusFunc
}

// Validate fails fast on requests that could never produce a signable
// transaction, so callers surface configuration mistakes before any wallet
// prompt appears.
func (r *CallRequest) Validate() error {
	if r.Contract == "" {
		return ErrMissingContract
	}
	if r.Function == "" {
		return ErrMissingFunction
	}
	if r.Sender == "" {
		return ErrMissingSender
	}
	return nil
}

// EnterPuzzleLabel names the wager-entry call for a puzzle.
func EnterPuzzleLabel(puzzleID uint64) string {
	return fmt.Sprintf("Enter puzzle #%d", puzzleID)
}

// SubmitSolutionLabel names the solution-submission call for a puzzle.
func SubmitSolutionLabel(puzzleID uint64) string {
	return fmt.Sprintf("Submit solution for puzzle #%d", puzzleID)
}

// ClaimPrizeLabel names the prize-claim call for a puzzle.
func ClaimPrizeLabel(puzzleID uint64) string {
	return fmt.Sprintf("Claim prize for puzzle #%d", puzzleID)
}
