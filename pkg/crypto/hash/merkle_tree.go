package hash

import (
	"github.com/localnet-dev/localnet/pkg/util"
)

// CalcMerkleRoot calculates the Merkle root hash value for the given slice
// of hashes. It doesn't create a complete Merkle tree structure, given that
// we only need the root value. The root for an empty slice is a zero hash.
func CalcMerkleRoot(hashes []util.Uint256) util.Uint256 {
	if len(hashes) == 0 {
		return util.Uint256{}
	}

	scratch := make([]byte, 2*util.Uint256Size)
	for len(hashes) != 1 {
		next := make([]util.Uint256, 0, (len(hashes)+1)/2)
		for i := 0; i < len(hashes); i += 2 {
			copy(scratch, hashes[i].BytesBE())
			if i+1 < len(hashes) {
				copy(scratch[util.Uint256Size:], hashes[i+1].BytesBE())
			} else {
				// An odd tail is paired with itself.
				copy(scratch[util.Uint256Size:], hashes[i].BytesBE())
			}
			next = append(next, DoubleSha256(scratch))
		}
		hashes = next
	}
	return hashes[0]
}
