package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/client/models"
)

// getPassword is an indirection used to facilitate testing.
var getPassword = GetPassword

// promptApprover asks on the terminal before the wallet connects or signs.
// With autoApprove set only passwords are asked for.
type promptApprover struct {
	reader      *bufio.Reader
	out         io.Writer
	autoApprove bool
}

func (p *promptApprover) ApproveConnect(ctx context.Context, k *models.StoredKey) (bool, error) {
	if p.autoApprove {
		fmt.Fprintf(p.out, "Connecting account %q (%s)\n", k.Label, k.Address.Hex())
		return true, nil
	}
	return confirm(p.reader, fmt.Sprintf("Connect account %q (%s) to the node?", k.Label, k.Address.Hex()), p.out)
}

func (p *promptApprover) ApproveTransaction(ctx context.Context, tx *chain.Transaction) (bool, error) {
	fmt.Fprintf(p.out, "Transaction request\n"+
		"  from:    %s\n"+
		"  to:      %s (record store)\n"+
		"  call:    %s(name=%q, age=%d, profession=%q, bio=%d chars)\n"+
		"  nonce:   %d\n"+
		"  fee:     %d\n",
		tx.From.Hex(), tx.To.Hex(), tx.Method,
		tx.Args.Name, tx.Args.Age, tx.Args.Profession, utf8.RuneCountInString(tx.Args.Bio),
		tx.Nonce, tx.Fee)
	if p.autoApprove {
		return true, nil
	}
	return confirm(p.reader, "Sign and send?", p.out)
}

func (p *promptApprover) Password(ctx context.Context, account chain.Address) ([]byte, error) {
	return getPassword(p.out, "Password for "+account.Short())
}
