package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atinyakov/seedkeeper/internal/client"
	"github.com/atinyakov/seedkeeper/internal/mnemonic"
	"github.com/atinyakov/seedkeeper/internal/models"
	"github.com/atinyakov/seedkeeper/internal/seedstore"
)

// walletAPI is the part of the credential store the CLI drives. Both
// client.Client and seedstore.Store satisfy it.
type walletAPI interface {
	ImportSeed(ctx context.Context, seed []byte) error
	ExportSeed(ctx context.Context) ([]byte, error)
	DeleteSeed(ctx context.Context) error
	ImportPhrase(ctx context.Context, phrase string) error
	ExportPhrase(ctx context.Context) (string, error)
	DeletePhrase(ctx context.Context) error
	ImportBirthday(ctx context.Context, height models.BlockHeight) error
	ExportBirthday(ctx context.Context) (models.BlockHeight, error)
	DeleteBirthday(ctx context.Context) error
	SaveKeys(ctx context.Context, keys []string) error
	GetKeys(ctx context.Context) ([]string, error)
	DeleteKeys(ctx context.Context) error
	WipeAll(ctx context.Context) (int, error)
	SaveIdentity(ctx context.Context, id, phrase string, height models.BlockHeight, spendingKey string) error
	GetIdentity(ctx context.Context, id string) (models.Identity, bool, error)
	IdentityState(ctx context.Context, id string) (models.IdentityState, error)
	DeleteIdentity(ctx context.Context, id string) error
}

var errUsage = errors.New("usage")

const helpText = `Available commands:
  init <birthday>               create a new wallet and print its phrase
  restore <birthday>            restore a wallet from a phrase
  import-seed                   store a hex seed
  import-phrase                 store a recovery phrase
  export-seed | export-phrase | export-birthday
  import-birthday <height>
  save-keys <key>...            replace the exportable key list
  get-keys
  save-identity <id> <height>   store an identity key bundle
  get-identity <id> | identity-state <id> | delete-identity <id>
  delete-seed | delete-phrase | delete-birthday | delete-keys
  wipe                          delete every stored secret
  help, exit`

type cli struct {
	api    walletAPI
	prompt *client.Prompter
	out    io.Writer
	// assumeYes skips the wipe confirmation.
	assumeYes bool
}

// exec runs one command. args[0] is the command name.
func (c *cli) exec(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return nil
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "help":
		fmt.Fprintln(c.out, helpText)
		return nil
	case "init":
		return c.initWallet(ctx, rest)
	case "restore":
		return c.restore(ctx, rest)
	case "import-seed":
		return c.importSeed(ctx)
	case "import-phrase":
		return c.importPhrase(ctx)
	case "export-seed":
		seed, err := c.api.ExportSeed(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, hex.EncodeToString(seed))
		return nil
	case "export-phrase":
		phrase, err := c.api.ExportPhrase(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, phrase)
		return nil
	case "import-birthday":
		height, err := heightArg(rest, 0)
		if err != nil {
			return err
		}
		return c.api.ImportBirthday(ctx, height)
	case "export-birthday":
		height, err := c.api.ExportBirthday(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, height)
		return nil
	case "save-keys":
		return c.api.SaveKeys(ctx, rest)
	case "get-keys":
		keys, err := c.api.GetKeys(ctx)
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Fprintln(c.out, k)
		}
		return nil
	case "save-identity":
		return c.saveIdentity(ctx, rest)
	case "get-identity":
		return c.getIdentity(ctx, rest)
	case "identity-state":
		if len(rest) != 1 {
			return fmt.Errorf("%w: identity-state <id>", errUsage)
		}
		state, err := c.api.IdentityState(ctx, rest[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, state)
		return nil
	case "delete-identity":
		if len(rest) != 1 {
			return fmt.Errorf("%w: delete-identity <id>", errUsage)
		}
		return c.api.DeleteIdentity(ctx, rest[0])
	case "delete-seed":
		return c.api.DeleteSeed(ctx)
	case "delete-phrase":
		return c.api.DeletePhrase(ctx)
	case "delete-birthday":
		return c.api.DeleteBirthday(ctx)
	case "delete-keys":
		return c.api.DeleteKeys(ctx)
	case "wipe":
		return c.wipe(ctx)
	default:
		return fmt.Errorf("unknown command %q, type 'help' for a list of commands", cmd)
	}
}

// initWallet generates a new phrase and stores phrase, derived seed and birthday.
func (c *cli) initWallet(ctx context.Context, args []string) error {
	height, err := heightArg(args, 0)
	if err != nil {
		return err
	}
	phrase, err := mnemonic.Generate(mnemonic.DefaultEntropyBits)
	if err != nil {
		return err
	}
	if err := c.storeWallet(ctx, phrase, height); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Write down your recovery phrase and keep it offline:")
	fmt.Fprintln(c.out, phrase)
	return nil
}

func (c *cli) restore(ctx context.Context, args []string) error {
	height, err := heightArg(args, 0)
	if err != nil {
		return err
	}
	phrase, err := c.readPhrase()
	if err != nil {
		return err
	}
	return c.storeWallet(ctx, phrase, height)
}

// storeWallet imports phrase first so an existing wallet stops the sequence
// before anything else is written.
func (c *cli) storeWallet(ctx context.Context, phrase string, height models.BlockHeight) error {
	seed, err := mnemonic.SeedFromPhrase(phrase, "")
	if err != nil {
		return err
	}
	if err := c.api.ImportPhrase(ctx, phrase); err != nil {
		return err
	}
	if err := c.api.ImportSeed(ctx, seed); err != nil {
		return err
	}
	return c.api.ImportBirthday(ctx, height)
}

func (c *cli) importSeed(ctx context.Context) error {
	text, err := c.prompt.Secret("Seed (hex): ")
	if err != nil {
		return err
	}
	seed, err := hex.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return fmt.Errorf("seed is not hex: %w", err)
	}
	return c.api.ImportSeed(ctx, seed)
}

func (c *cli) importPhrase(ctx context.Context) error {
	phrase, err := c.readPhrase()
	if err != nil {
		return err
	}
	return c.api.ImportPhrase(ctx, phrase)
}

// readPhrase prompts for a recovery phrase and rejects it unless it is valid.
func (c *cli) readPhrase() (string, error) {
	phrase, err := c.prompt.Secret("Recovery phrase: ")
	if err != nil {
		return "", err
	}
	phrase = mnemonic.Normalize(phrase)
	if !mnemonic.IsValid(phrase) {
		return "", mnemonic.ErrInvalid
	}
	return phrase, nil
}

func (c *cli) saveIdentity(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: save-identity <id> <height>", errUsage)
	}
	height, err := heightArg(args, 1)
	if err != nil {
		return err
	}
	phrase, err := c.prompt.Secret("Identity phrase: ")
	if err != nil {
		return err
	}
	spendingKey, err := c.prompt.Secret("Spending key: ")
	if err != nil {
		return err
	}
	return c.api.SaveIdentity(ctx, args[0], mnemonic.Normalize(phrase), height, strings.TrimSpace(spendingKey))
}

func (c *cli) getIdentity(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: get-identity <id>", errUsage)
	}
	rec, ok, err := c.api.GetIdentity(ctx, args[0])
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(c.out, "Identity not found")
		return nil
	}
	b, _ := json.MarshalIndent(rec, "", "  ")
	fmt.Fprintln(c.out, string(b))
	return nil
}

func (c *cli) wipe(ctx context.Context) error {
	if !c.assumeYes {
		ok, err := c.prompt.Confirm("This deletes every stored secret. Continue?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(c.out, "Aborted")
			return nil
		}
	}
	removed, err := c.api.WipeAll(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Removed %d entries\n", removed)
	return nil
}

func heightArg(args []string, i int) (models.BlockHeight, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("%w: missing block height", errUsage)
	}
	h, err := strconv.ParseUint(args[i], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid block height %q", args[i])
	}
	return models.BlockHeight(h), nil
}

// describe turns store errors into messages for the terminal.
func describe(err error) string {
	switch {
	case errors.Is(err, seedstore.ErrAlreadyImported):
		return "already imported; delete it first to replace it"
	case errors.Is(err, seedstore.ErrUninitialized):
		return "not initialized"
	case errors.Is(err, seedstore.ErrCorrupt):
		return "stored value is corrupt"
	default:
		return err.Error()
	}
}
