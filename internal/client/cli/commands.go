package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/dmitrijs2005/chainprofile/internal/client/state"
	"github.com/dmitrijs2005/chainprofile/internal/common"
)

// getSimpleText and getMultiline are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getMultiline  = GetMultiline
)

var errPasswordMismatch = errors.New("passwords do not match")

// WalletNew creates a keystore account sealed under a new password.
func (a *App) WalletNew(ctx context.Context) error {
	label, err := getSimpleText(a.reader, "Account label", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "New password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	again, err := getPassword(a.out, "Repeat password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(again)

	if !bytes.Equal(password, again) {
		printlnFn("Passwords do not match")
		return errPasswordMismatch
	}

	addr, err := a.keystore.Create(ctx, strings.TrimSpace(label), password)
	if err != nil {
		printlnFn("Error creating account:", err.Error())
		return err
	}
	printlnFn("Created account", addr.Hex())
	return nil
}

// WalletList prints keystore accounts, marking the default one.
func (a *App) WalletList(ctx context.Context) error {
	keys, err := a.keystore.List(ctx)
	if err != nil {
		printlnFn("Error listing accounts:", err.Error())
		return err
	}
	if len(keys) == 0 {
		printlnFn("No accounts yet, create one with 'wallet new'")
		return nil
	}

	def, err := a.keystore.Default(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		mark := " "
		if k.Address == def.Address {
			mark = "*"
		}
		printlnFn(fmt.Sprintf("%s %s  %-16s created %s", mark, k.Address.Hex(), k.Label, k.CreatedAt.Format("2006-01-02 15:04")))
	}
	return nil
}

// WalletUse makes address the account offered on connect.
func (a *App) WalletUse(ctx context.Context, arg string) error {
	addr, err := chain.ParseAddress(strings.TrimSpace(arg))
	if err != nil {
		printlnFn("Usage: wallet use <address>")
		return err
	}
	if err := a.keystore.SetDefault(ctx, addr); err != nil {
		printlnFn("Error:", err.Error())
		return err
	}
	printlnFn("Default account is now", addr.Hex())
	return nil
}

func (a *App) Connect(ctx context.Context) error {
	return a.controller.Connect(ctx)
}

func (a *App) Disconnect(ctx context.Context) error {
	a.controller.Disconnect(ctx)
	return nil
}

// Submit prompts for the four profile fields and upserts them.
func (a *App) Submit(ctx context.Context) error {
	var f state.Fields
	var err error

	if f.Name, err = getSimpleText(a.reader, "Name", a.out); err != nil {
		return err
	}
	if f.Age, err = getSimpleText(a.reader, "Age", a.out); err != nil {
		return err
	}
	if f.Profession, err = getSimpleText(a.reader, "Profession", a.out); err != nil {
		return err
	}
	if f.Bio, err = getMultiline(a.reader, "Bio", a.out); err != nil {
		return err
	}

	return a.controller.Submit(ctx, f)
}

// Me reads and prints the connected account's profile.
func (a *App) Me(ctx context.Context) error {
	if err := a.controller.RefreshOwn(ctx); err != nil {
		return err
	}
	printView(a.controller.Snapshot().Own)
	return nil
}

func (a *App) Search(ctx context.Context, arg string) error {
	if strings.TrimSpace(arg) == "" {
		printlnFn("Usage: search <address>")
		return nil
	}
	if _, err := a.controller.Search(ctx, arg); err != nil {
		return err
	}
	printView(a.controller.Snapshot().Search)
	return nil
}

func (a *App) Balance(ctx context.Context) error {
	addr, b, err := a.controller.Balance(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("%s balance: %d", addr.Hex(), b))
	return nil
}

// Status prints the live banner, if any.
func (a *App) Status(ctx context.Context) error {
	m, ok := a.controller.Status()
	if !ok {
		printlnFn("No status")
		return nil
	}
	printStatus(&m)
	return nil
}

func printView(v state.ProfileView) {
	if !v.Found {
		printlnFn("No profile found for", v.Address.Hex())
		return
	}
	printlnFn("Address:   ", v.Address.Hex())
	printlnFn("Name:      ", v.Profile.Name)
	printlnFn("Age:       ", v.Profile.Age)
	printlnFn("Profession:", v.Profile.Profession)
	printlnFn("Bio:       ", v.Profile.Bio)
}
