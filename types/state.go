package types

// TxState is the lifecycle state of a shielded transaction.
type TxState uint8

const (
	// TxStateBuilding is the state of a transaction whose fields are still being set.
	TxStateBuilding TxState = iota
	// TxStateEncrypted is the state of a transaction whose input has been shielded.
	TxStateEncrypted
	// TxStateSigned is the state of a signed transaction.
	TxStateSigned
	// TxStateSubmitted is the state of a transaction handed to the network.
	TxStateSubmitted
	// TxStateAccepted is the terminal state of an executed transaction.
	TxStateAccepted
	// TxStateRejected is the terminal state of a transaction the network refused or reverted.
	TxStateRejected
	// TxStateExpired is the terminal state of a transaction that failed freshness validation.
	TxStateExpired
)

// String returns a string representation of the state.
func (s TxState) String() string {
	switch s {
	case TxStateBuilding:
		return "building"
	case TxStateEncrypted:
		return "encrypted"
	case TxStateSigned:
		return "signed"
	case TxStateSubmitted:
		return "submitted"
	case TxStateAccepted:
		return "accepted"
	case TxStateRejected:
		return "rejected"
	case TxStateExpired:
		return "expired"
	default:
		return "[unknown]"
	}
}

// IsTerminal returns true iff no further transitions are possible from the state.
func (s TxState) IsTerminal() bool {
	return s >= TxStateAccepted
}
