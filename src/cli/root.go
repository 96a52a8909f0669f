// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"bufio"
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/config"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/helper/posix"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/pipeline"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/issuance/store"
	x509chain "github.com/H0llyW00dzZ/tls-cert-issuer/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/tls-cert-issuer/src/logger"
)

// Modes accepted by the root command.
const (
	ModeCA     = "ca"
	ModeClient = "client"
)

// Prompts shown for names not given as flags.
const (
	PromptAuthority = "Enter the authority name (eg. example org): "
	PromptServer    = "Enter the server name (eg. example.org): "
	PromptClient    = "Enter the client name (eg. example): "
)

// ErrUsage indicates a missing or unknown mode.
var ErrUsage = errors.New("cli: invalid usage")

// OperationPerformed reports whether the last Execute call completed an issuance flow.
var OperationPerformed bool

// rootOptions holds the persistent flags.
type rootOptions struct {
	configPath string
	dir        string
	engine     string
	keyType    string
	digest     string
	table      bool
}

// Execute runs the root command with the process arguments.
//
// Parameters:
//   - ctx: Context for cancellation of the issuance flow
//   - version: Version reported by --version
//   - log: Logger receiving per-step progress
//
// Returns:
//   - error: [ErrUsage] for a missing or unknown mode, otherwise the flow error
func Execute(ctx context.Context, version string, log logger.Logger) error {
	OperationPerformed = false

	rootCmd := NewRootCommand(version, log)
	rootCmd.SetArgs(os.Args[1:])
	return rootCmd.ExecuteContext(ctx)
}

// NewRootCommand builds the command tree.
func NewRootCommand(version string, log logger.Logger) *cobra.Command {
	if log == nil {
		log = logger.Nop()
	}
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           posix.GetExecutableName() + " [ca|client]",
		Short:         "Issue a private TLS certificate hierarchy",
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return usageError(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file (.json, .yaml, .toml); defaults to $"+config.EnvFile)
	pf.StringVarP(&opts.dir, "dir", "d", config.DefaultDirectory, "artifact directory")
	pf.StringVarP(&opts.engine, "engine", "e", config.DefaultEngine, "crypto engine: native or openssl")
	pf.StringVarP(&opts.keyType, "key-type", "k", "", "key type: rsa4096, rsa8192, p256, p384")
	pf.StringVar(&opts.digest, "digest", "", "signature digest: sha256, sha384, sha512")
	pf.BoolVar(&opts.table, "table", false, "display the issued chain as a markdown table")

	// Only ca and client are modes; cobra's help and completion verbs are not.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetHelpCommand(&cobra.Command{
		Use:    "help",
		Hidden: true,
		Args:   cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return usageError(cmd)
		},
	})

	rootCmd.AddCommand(newCACommand(opts, log), newClientCommand(opts, log))
	return rootCmd
}

// usageError prints the one-line usage to stderr and returns [ErrUsage].
func usageError(cmd *cobra.Command) error {
	fmt.Fprintln(cmd.ErrOrStderr(), posix.Usage(ModeCA, ModeClient))
	return ErrUsage
}

// noExtraArgs rejects positional arguments after the mode.
func noExtraArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageError(cmd)
	}
	return nil
}

func newCACommand(opts *rootOptions, log logger.Logger) *cobra.Command {
	var authority, server, interSerial, endSerial string

	cmd := &cobra.Command{
		Use:   ModeCA,
		Short: "Issue the root CA, the intermediate CA and the server certificate",
		Args:  noExtraArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			iss, cfg, err := opts.issuer(cmd, log)
			if err != nil {
				return err
			}

			req := pipeline.AuthorityRequest{}
			if req.InterSerial, err = config.OverrideSerial(interSerial); err != nil {
				return err
			}
			if req.EndSerial, err = config.OverrideSerial(endSerial); err != nil {
				return err
			}

			in := bufio.NewReader(cmd.InOrStdin())
			if req.AuthorityName, err = ask(in, cmd.OutOrStdout(), authority, PromptAuthority); err != nil {
				return err
			}
			if req.ServerName, err = ask(in, cmd.OutOrStdout(), server, PromptServer); err != nil {
				return err
			}

			out, err := iss.IssueAuthority(cmd.Context(), req)
			if err != nil {
				return err
			}

			OperationPerformed = true
			log.Printf("Issued %s and %s in %s", store.RoleEnd.Chain(), store.RoleEnd.FullChain(), cfg.Directory)
			return report(cmd.OutOrStdout(), out.Chain(store.RoleEnd.FullChain()), x509.ExtKeyUsageServerAuth, opts.table)
		},
	}

	f := cmd.Flags()
	f.StringVar(&authority, "authority", "", "authority name, e.g. \"Example Org\"")
	f.StringVar(&server, "server", "", "server name, e.g. example.org")
	f.StringVar(&interSerial, "serial-intermediate", "", "intermediate serial (decimal, 0x hex or random)")
	f.StringVar(&endSerial, "serial-end", "", "end certificate serial (decimal, 0x hex or random)")
	return cmd
}

func newClientCommand(opts *rootOptions, log logger.Logger) *cobra.Command {
	var name, clientSerial string

	cmd := &cobra.Command{
		Use:   ModeClient,
		Short: "Issue a client certificate from the existing intermediate CA",
		Args:  noExtraArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			iss, cfg, err := opts.issuer(cmd, log)
			if err != nil {
				return err
			}

			req := pipeline.ClientRequest{}
			if req.Serial, err = config.OverrideSerial(clientSerial); err != nil {
				return err
			}

			in := bufio.NewReader(cmd.InOrStdin())
			if req.ClientName, err = ask(in, cmd.OutOrStdout(), name, PromptClient); err != nil {
				return err
			}

			out, err := iss.IssueClient(cmd.Context(), req)
			if err != nil {
				return err
			}

			OperationPerformed = true
			log.Printf("Issued %s and %s in %s", store.RoleClient.Chain(), store.RoleClient.FullChain(), cfg.Directory)
			return report(cmd.OutOrStdout(), out.Chain(store.RoleClient.FullChain()), x509.ExtKeyUsageClientAuth, opts.table)
		},
	}

	f := cmd.Flags()
	f.StringVar(&name, "name", "", "client name, e.g. example")
	f.StringVar(&clientSerial, "serial", "", "client serial (decimal, 0x hex or random)")
	return cmd
}

// issuer loads the configuration, applies explicitly set flags and builds an
// Issuer over a directory store.
func (o *rootOptions) issuer(cmd *cobra.Command, log logger.Logger) (*pipeline.Issuer, *config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.Directory = o.dir
	}
	if flags.Changed("engine") {
		cfg.Engine.Name = o.engine
	}
	if flags.Changed("key-type") {
		cfg.Keys.Type = o.keyType
	}
	if flags.Changed("digest") {
		cfg.Keys.Digest = o.digest
	}

	issuerOpts, err := cfg.IssuerOptions()
	if err != nil {
		return nil, nil, err
	}

	eng, err := cfg.NewEngine()
	if err != nil {
		return nil, nil, err
	}

	return pipeline.New(store.NewDirStore(cfg.Directory), eng, log, issuerOpts), cfg, nil
}

// ask returns value when set, otherwise prompts and reads one line.
func ask(in *bufio.Reader, out io.Writer, value, prompt string) (string, error) {
	if v := strings.TrimSpace(value); v != "" {
		return v, nil
	}

	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("read %q: %w", strings.TrimSuffix(prompt, ": "), err)
	}
	return strings.TrimSpace(line), nil
}

// report verifies the full chain for the given usage and renders it.
func report(w io.Writer, ch *pipeline.Chain, usage x509.ExtKeyUsage, table bool) error {
	if ch == nil {
		return fmt.Errorf("%w: full chain not built", store.ErrNotFound)
	}

	c := x509chain.New(ch.Certs...)
	if err := c.VerifyChain(usage); err != nil {
		return fmt.Errorf("verify %s: %w", ch.Name, err)
	}

	if table {
		fmt.Fprintln(w, c.RenderTable())
	} else {
		fmt.Fprint(w, c.RenderASCIITree())
	}
	return nil
}
