package domain

// Block is a block fetched with its full transaction list.
type Block struct {
	ChainID      ChainID
	Number       uint64
	Hash         string
	Timestamp    uint64
	Transactions []*Transaction
}
