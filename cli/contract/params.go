package contract

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/localnet-dev/localnet/cli/flags"
	"github.com/localnet-dev/localnet/pkg/smartcontract"
)

// parseParam turns a command line argument into a contract parameter. The
// type may be forced with a "type:value" prefix, otherwise booleans and
// integers are recognized and everything else stays a string.
func parseParam(s string) (smartcontract.Parameter, error) {
	if typ, value, ok := strings.Cut(s, ":"); ok {
		switch typ {
		case "bool":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return smartcontract.Parameter{}, fmt.Errorf("bad boolean %q: %w", value, err)
			}
			return smartcontract.Make(b), nil
		case "int":
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return smartcontract.Parameter{}, fmt.Errorf("bad integer %q: %w", value, err)
			}
			return smartcontract.Make(i), nil
		case "bytes":
			b, err := hex.DecodeString(value)
			if err != nil {
				return smartcontract.Parameter{}, fmt.Errorf("bad hex %q: %w", value, err)
			}
			return smartcontract.Make(b), nil
		case "hash160", "address":
			u, err := flags.ParseAddress(value)
			if err != nil {
				return smartcontract.Parameter{}, fmt.Errorf("bad address %q: %w", value, err)
			}
			return smartcontract.Make(u), nil
		case "string":
			return smartcontract.Make(value), nil
		}
	}
	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return smartcontract.Make(b), nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return smartcontract.Make(i), nil
	}
	return smartcontract.Make(s), nil
}

func parseParams(args []string) ([]smartcontract.Parameter, error) {
	params := make([]smartcontract.Parameter, 0, len(args))
	for _, arg := range args {
		p, err := parseParam(arg)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}
