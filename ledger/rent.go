package ledger

import "github.com/holiman/uint256"

// Rent is the rent-exemption schedule applied when the runtime allocates
// an account.
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  uint64
	StorageOverhead     uint64
}

func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: 3480,
		ExemptionThreshold:  2,
		StorageOverhead:     128,
	}
}

// MinimumBalance is (overhead + space) * lamportsPerByteYear * exemptionThreshold.
func (r Rent) MinimumBalance(space uint64) *uint256.Int {
	out := uint256.NewInt(r.StorageOverhead)
	out.Add(out, uint256.NewInt(space))
	out.Mul(out, uint256.NewInt(r.LamportsPerByteYear))
	out.Mul(out, uint256.NewInt(r.ExemptionThreshold))
	return out
}
