package chain

import (
	"bytes"
	"fmt"
	stdio "io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/localnet-dev/localnet/pkg/chaindump"
	"github.com/localnet-dev/localnet/pkg/core/block"
	"github.com/localnet-dev/localnet/pkg/io"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/urfave/cli"
)

// compareDumps reads two dump files in parallel and reports the first
// block where they diverge, with a readable diff of the decoded blocks.
func compareDumps(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) != 2 {
		return cli.NewExitError("two dump files are required", 1)
	}
	ra, fa, err := openDump(args[0])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer fa.Close()
	rb, fb, err := openDump(args[1])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer fb.Close()
	if ra.Network != rb.Network {
		return cli.NewExitError(fmt.Errorf("dumps belong to different networks: %#x vs %#x",
			ra.Network, rb.Network), 1)
	}
	if ra.Start != rb.Start || ra.Count != rb.Count {
		fmt.Fprintf(ctx.App.Writer, "dump ranges differ: %d+%d vs %d+%d, comparing the overlap\n",
			ra.Start, ra.Count, rb.Start, rb.Count)
	}

	for {
		ba, errA := ra.Next()
		bb, errB := rb.Next()
		if errA == stdio.EOF || errB == stdio.EOF {
			break
		}
		if errA != nil {
			return cli.NewExitError(fmt.Errorf("bad block in %s: %w", args[0], errA), 1)
		}
		if errB != nil {
			return cli.NewExitError(fmt.Errorf("bad block in %s: %w", args[1], errB), 1)
		}
		same, err := blocksEqual(ba, bb)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		if !same {
			diff, err := blockDiff(ba, bb)
			if err != nil {
				return cli.NewExitError(err, 1)
			}
			fmt.Fprintf(ctx.App.Writer, "block %d differs:\n%s", ba.Index, diff)
			return cli.NewExitError(fmt.Errorf("dumps diverge at block %d", ba.Index), 1)
		}
	}
	fmt.Fprintln(ctx.App.Writer, "dumps are identical")
	return nil
}

func openDump(path string) (*chaindump.Reader, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	r, err := chaindump.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return r, f, nil
}

func blocksEqual(a, b *block.Block) (bool, error) {
	rawA, err := io.ToByteArray(a)
	if err != nil {
		return false, err
	}
	rawB, err := io.ToByteArray(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(rawA, rawB), nil
}

func blockDiff(a, b *block.Block) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(spew.Sdump(a)),
		B:        difflib.SplitLines(spew.Sdump(b)),
		FromFile: "dump A",
		ToFile:   "dump B",
		Context:  2,
	})
}
