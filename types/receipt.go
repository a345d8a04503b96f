package types

// VoteReceipt tracks one member's lifetime participation across proposals.
type VoteReceipt struct {
	IsAuthorized bool
	TotalVotes   uint64
	Bump         uint8
}
