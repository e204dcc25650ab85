package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"verichain/blockchain"
	"verichain/blockchain/store"
	"verichain/config"
)

// errRejected is returned when verification completes with a negative verdict
var errRejected = errors.New("verification failed")

type app struct {
	out      io.Writer
	logger   *zap.Logger
	verifier *blockchain.Verifier
}

func newRootCmd(out io.Writer) *cobra.Command {
	var (
		configPath string
		logLevel   string
	)
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "verichain",
		Short:         "Verify hash-linked chains and signed transactions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			logger, err := cfg.Logger()
			if err != nil {
				return fmt.Errorf("failed to build logger: %w", err)
			}
			opts, err := cfg.Options(logger)
			if err != nil {
				return err
			}
			verifier, err := blockchain.NewVerifier(opts...)
			if err != nil {
				return err
			}
			a.logger = logger
			a.verifier = verifier
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(newChainCmd(a), newPoolCmd(a), newTxCmd(a))
	return root
}

func newChainCmd(a *app) *cobra.Command {
	var parallel bool

	cmd := &cobra.Command{
		Use:   "chain <document>",
		Short: "Verify linkage and proof of work of every block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := openStore(args[0])
			if err != nil {
				return err
			}
			chain, err := s.GetChain()
			if err != nil {
				return err
			}

			if parallel {
				err = a.verifier.CheckChainParallel(cmd.Context(), chain)
			} else {
				err = a.verifier.CheckChain(chain)
			}

			var chainErr *blockchain.ChainError
			switch {
			case err == nil:
				return a.printTip(s)
			case errors.As(err, &chainErr):
				fmt.Fprint(a.out, pterm.Error.Sprintfln("chain is invalid at block %d: %v", chainErr.Index, chainErr.Reason))
				return errRejected
			default:
				return err
			}
		},
	}
	cmd.Flags().BoolVar(&parallel, "parallel", false, "check proofs concurrently")
	return cmd
}

func newPoolCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pool <document>",
		Short: "Verify signatures of all open transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := openStore(args[0])
			if err != nil {
				return err
			}

			open := s.GetOpenTransactions()
			if !a.verifier.VerifyTransactions(open, s.Balance) {
				fmt.Fprint(a.out, pterm.Error.Sprintfln("open transactions contain an invalid signature"))
				return errRejected
			}
			fmt.Fprint(a.out, pterm.Success.Sprintfln("%d open transactions are valid", len(open)))
			return nil
		},
	}
}

func newTxCmd(a *app) *cobra.Command {
	var checkFunds bool

	cmd := &cobra.Command{
		Use:   "tx <document>",
		Short: "Verify each open transaction against its sender's balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, s, err := openStore(args[0])
			if err != nil {
				return err
			}

			rows := pterm.TableData{{"#", "Sender", "Recipient", "Amount", "Balance", "Valid"}}
			allValid := true
			for i, tx := range s.GetOpenTransactions() {
				balance := doc.PendingBalance(i)
				valid := a.verifier.VerifyTransaction(&tx, balance, checkFunds)
				allValid = allValid && valid
				rows = append(rows, []string{
					strconv.Itoa(i),
					shorten(tx.Sender),
					shorten(tx.Recipient),
					strconv.FormatUint(tx.Amount, 10),
					strconv.FormatUint(balance(tx.Sender), 10),
					strconv.FormatBool(valid),
				})
			}

			table, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
			if err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}
			fmt.Fprintln(a.out, table)
			if !allValid {
				return errRejected
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&checkFunds, "check-funds", true, "require the sender balance to cover the amount")
	return cmd
}

func openStore(path string) (*store.Document, store.LedgerStore, error) {
	doc, err := store.LoadDocument(path)
	if err != nil {
		return nil, nil, err
	}
	s, err := doc.Store()
	if err != nil {
		return nil, nil, err
	}
	return doc, s, nil
}

func (a *app) printTip(s store.LedgerStore) error {
	height, err := s.GetChainHeight()
	if err != nil {
		return err
	}
	head, err := s.GetHeadBlock()
	if err != nil {
		return err
	}

	tip := "none"
	if head != nil {
		tip = blockchain.HashBlock(head)
	}
	fmt.Fprint(a.out, pterm.Success.Sprintfln("chain of %d blocks is valid, tip %s", height, tip))
	return nil
}

func shorten(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + ".." + id[len(id)-6:]
}
