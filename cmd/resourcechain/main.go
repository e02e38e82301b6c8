// Command resourcechain is a single-process CLI driving the resource
// exchange facade: register users, publish and download resources, mine
// pending transactions, and inspect balances and chain status.
//
// Unlike the teacher's cmd/cli/ledger.go, which dials a TCP ledger daemon,
// this CLI embeds one *core.System per invocation — §1's Non-goals exclude
// networked replication, so there is no daemon to dial.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"resourcechain/core"
	"resourcechain/pkg/config"
)

func main() {
	_ = godotenv.Load() // optional .env overrides, silently ignored if absent

	root := &cobra.Command{
		Use:   "resourcechain",
		Short: "peer-to-peer resource exchange backed by a proof-of-work ledger",
	}
	root.PersistentFlags().String("env", "", "environment overlay name (e.g. dev, prod)")
	_ = viper.BindPFlag("env", root.PersistentFlags().Lookup("env"))

	sys := newSystemFromConfig()

	root.AddCommand(registerCmd(sys))
	root.AddCommand(publishCmd(sys))
	root.AddCommand(downloadCmd(sys))
	root.AddCommand(mineCmd(sys))
	root.AddCommand(balanceCmd(sys))
	root.AddCommand(statusCmd(sys))
	root.AddCommand(searchCmd(sys))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newSystemFromConfig loads cmd/config/default.yaml (falling back to the
// built-in literal defaults on any load error, since a missing config file
// is not fatal for a CLI invocation) and constructs the facade.
func newSystemFromConfig() *core.System {
	cfg, err := config.LoadFromEnv()
	chainCfg := core.DefaultChainConfig()
	econ := core.DefaultEconomics()
	if err == nil {
		if cfg.Ledger.Difficulty > 0 {
			chainCfg.Difficulty = cfg.Ledger.Difficulty
		}
		if cfg.Ledger.BaseReward > 0 {
			chainCfg.BaseReward = cfg.Ledger.BaseReward
		}
		if cfg.Ledger.HalvingInterval > 0 {
			chainCfg.HalvingInterval = cfg.Ledger.HalvingInterval
		}
		if cfg.Ledger.Endowment > 0 {
			econ.Endowment = cfg.Ledger.Endowment
		}
		if cfg.Ledger.RatePerGB > 0 {
			econ.RatePerGB = cfg.Ledger.RatePerGB
		}
	}
	return core.NewSystem(chainCfg, econ)
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Println(string(b))
}

func registerCmd(sys *core.System) *cobra.Command {
	return &cobra.Command{
		Use:   "register [handle]",
		Short: "register a new user and mint an initial-credit transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := sys.RegisterUser(args[0])
			if err != nil {
				return err
			}
			printJSON(user)
			return nil
		},
	}
}

func publishCmd(sys *core.System) *cobra.Command {
	var sizeGB float64
	var description, category, contentHash string
	cmd := &cobra.Command{
		Use:   "publish [handle] [name]",
		Short: "publish a resource under handle's registry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := sys.Publish(args[0], core.ResourceFields{
				Name:        args[1],
				SizeGB:      sizeGB,
				Description: description,
				Category:    category,
				ContentHash: contentHash,
			})
			if err != nil {
				return err
			}
			printJSON(rec)
			return nil
		},
	}
	cmd.Flags().Float64Var(&sizeGB, "size-gb", 0, "resource size in gigabytes")
	cmd.Flags().StringVar(&description, "description", "", "resource description")
	cmd.Flags().StringVar(&category, "category", "", "resource category tag")
	cmd.Flags().StringVar(&contentHash, "content-hash", "", "precomputed content hash")
	return cmd
}

func downloadCmd(sys *core.System) *cobra.Command {
	var resourceID uint64
	cmd := &cobra.Command{
		Use:   "download [downloader-handle] [owner-handle]",
		Short: "pay an owner for a resource and bump its seed count",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID := uuid.New().String()
			if err := sys.Download(args[0], args[1], resourceID); err != nil {
				return fmt.Errorf("download %s: %w", jobID, err)
			}
			fmt.Printf("download %s confirmed\n", jobID)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&resourceID, "resource-id", 0, "resource id to download")
	return cmd
}

func mineCmd(sys *core.System) *cobra.Command {
	return &cobra.Command{
		Use:   "mine [handle]",
		Short: "mine the pending pool and claim the block reward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			block, err := sys.Mine(args[0])
			if err != nil {
				return err
			}
			printJSON(block.Serialize())
			return nil
		},
	}
}

func balanceCmd(sys *core.System) *cobra.Command {
	return &cobra.Command{
		Use:   "balance [handle]",
		Short: "print a user's replayed balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bal, err := sys.Balance(args[0])
			if err != nil {
				return err
			}
			fmt.Println(bal)
			return nil
		},
	}
}

func statusCmd(sys *core.System) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "print chain length, pending count, difficulty, reward, validity",
		RunE: func(cmd *cobra.Command, args []string) error {
			printJSON(sys.Info())
			return nil
		},
	}
}

func searchCmd(sys *core.System) *cobra.Command {
	var keyword, category string
	var minSize, maxSize float64
	var minSeeds int
	cmd := &cobra.Command{
		Use:   "search [handle]",
		Short: "search a handle's registry (empty handle searches the community registry)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handle := ""
			if len(args) == 1 {
				handle = args[0]
			}
			params := core.SearchParams{Keyword: keyword, Category: category}
			if minSize > 0 {
				params.MinSize = &minSize
			}
			if maxSize > 0 {
				params.MaxSize = &maxSize
			}
			if minSeeds > 0 {
				params.MinSeeds = &minSeeds
			}
			results, err := sys.SearchResources(handle, params)
			if err != nil {
				return err
			}
			printJSON(results)
			return nil
		},
	}
	cmd.Flags().StringVar(&keyword, "keyword", "", "substring match against name/description")
	cmd.Flags().StringVar(&category, "category", "", "exact category match")
	cmd.Flags().Float64Var(&minSize, "min-size", 0, "inclusive minimum size in GB")
	cmd.Flags().Float64Var(&maxSize, "max-size", 0, "inclusive maximum size in GB")
	cmd.Flags().IntVar(&minSeeds, "min-seeds", 0, "inclusive minimum seed count")
	return cmd
}
