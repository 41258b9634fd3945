// Package chaindump contains the code to dump a simulator chain into a
// compressed file and replay such a file into a fresh chain. Dumps make
// chain states portable between runs and machines.
package chaindump

import (
	"errors"
	"fmt"
	stdio "io"

	"github.com/localnet-dev/localnet/pkg/config"
	"github.com/localnet-dev/localnet/pkg/core/block"
	"github.com/localnet-dev/localnet/pkg/io"
	"github.com/pierrec/lz4"
)

// dumpMagic marks chain dump files.
const dumpMagic uint32 = 0x444e4c31 // "1LND"

// DumperRestorer is the interface chaindump needs from the chain.
type DumperRestorer interface {
	AddBlock(b *block.Block) error
	BlockHeight() uint32
	GetBlockByIndex(index uint32) (*block.Block, error)
	GetConfig() config.ProtocolConfiguration
}

// Dump writes count blocks starting from start into out. The output is
// lz4-compressed. The genesis block is never dumped, it's recreated from
// the configuration on restore.
func Dump(bc DumperRestorer, out stdio.Writer, start, count uint32) error {
	if start == 0 {
		start = 1
	}
	if start+count-1 > bc.BlockHeight() {
		return errors.New("chain is not that high")
	}

	zw := lz4.NewWriter(out)
	w := io.NewBinWriterFromIO(zw)
	w.WriteU32LE(dumpMagic)
	w.WriteU32LE(bc.GetConfig().Magic)
	w.WriteU32LE(start)
	w.WriteU32LE(count)
	for i := start; i < start+count; i++ {
		b, err := bc.GetBlockByIndex(i)
		if err != nil {
			return err
		}
		buf, err := io.ToByteArray(b)
		if err != nil {
			return err
		}
		w.WriteVarBytes(buf)
	}
	if w.Err != nil {
		return w.Err
	}
	return zw.Close()
}

// Reader decodes a dump file block by block.
type Reader struct {
	// Network is the magic of the chain the dump was taken from.
	Network uint32
	// Start is the index of the first dumped block.
	Start uint32
	// Count is the number of dumped blocks.
	Count uint32

	r   *io.BinReader
	pos uint32
}

// NewReader opens a dump stream and decodes its header.
func NewReader(in stdio.Reader) (*Reader, error) {
	r := io.NewBinReaderFromIO(lz4.NewReader(in))
	if magic := r.ReadU32LE(); magic != dumpMagic {
		if r.Err != nil {
			return nil, r.Err
		}
		return nil, fmt.Errorf("not a chain dump: magic %#x", magic)
	}
	dr := &Reader{
		Network: r.ReadU32LE(),
		Start:   r.ReadU32LE(),
		Count:   r.ReadU32LE(),
		r:       r,
	}
	if r.Err != nil {
		return nil, r.Err
	}
	return dr, nil
}

// Next returns the next block of the dump or io.EOF after the last one.
func (dr *Reader) Next() (*block.Block, error) {
	if dr.pos >= dr.Count {
		return nil, stdio.EOF
	}
	buf := dr.r.ReadVarBytes()
	if dr.r.Err != nil {
		return nil, dr.r.Err
	}
	b := new(block.Block)
	if err := io.FromByteArray(b, buf); err != nil {
		return nil, err
	}
	if want := dr.Start + dr.pos; b.Index != want {
		return nil, fmt.Errorf("dump is corrupted: expected block %d, got %d", want, b.Index)
	}
	dr.pos++
	return b, nil
}

// Restore replays a dump from in into the chain. Blocks the chain already
// has are skipped, the rest are verified and executed as usual. The
// callback, when given, runs after every accepted block.
func Restore(bc DumperRestorer, in stdio.Reader, f func(b *block.Block) error) error {
	dr, err := NewReader(in)
	if err != nil {
		return err
	}
	if dr.Network != bc.GetConfig().Magic {
		return fmt.Errorf("dump is for another network: %#x", dr.Network)
	}

	for {
		b, err := dr.Next()
		if err == stdio.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if b.Index <= bc.BlockHeight() {
			continue
		}
		if err := bc.AddBlock(b); err != nil {
			return err
		}
		if f != nil {
			if err := f(b); err != nil {
				return err
			}
		}
	}
}
