package domain

// Transaction carries the fields needed to decide whether a call matches.
// From and To are lower-case hex; To is empty for contract creation.
type Transaction struct {
	Hash        string
	BlockNumber uint64
	From        string
	To          string
	Input       []byte
}
